package lookup

import "errors"

// ErrUnknownAttribute and ErrTypeMismatch are the reasons
// get_texture_info's raw-attribute fallback (resolveAttribute) fails;
// GetTextureInfo itself surfaces only a bool, but resolveAttribute
// logs one of these through the engine's logger before returning
// false, for diagnosis.
var (
	ErrUnknownAttribute = errors.New("lookup: unknown attribute")
	ErrTypeMismatch     = errors.New("lookup: attribute type mismatch")
)
