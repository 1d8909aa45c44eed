package lookup

import (
	"encoding/binary"
	"log/slog"
	"math"

	"tiletexcore/internal/mathutil"
	"tiletexcore/internal/texspec"
)

// GetTextureInfo reports texture metadata by key. Supported keys are
// "resolution" (*[2]int), "texturetype"/"textureformat" (*string),
// and "channels" (*int or *float64); any other key is looked up as a
// raw header attribute on the file's level-0 spec. Returns false on
// an unknown or broken file, an unknown key, or a type/arity mismatch
// — it never panics or returns an error.
func (e *Engine) GetTextureInfo(path, key string, out any) bool {
	f := e.registry.Find(path)
	if f.Broken() {
		return false
	}
	spec0 := f.Spec(0)

	switch key {
	case "resolution":
		dst, ok := out.(*[2]int)
		if !ok {
			return false
		}
		*dst = [2]int{spec0.Width, spec0.Height}
		return true

	case "texturetype":
		dst, ok := out.(*string)
		if !ok {
			return false
		}
		*dst = f.Format().TypeName()
		return true

	case "textureformat":
		dst, ok := out.(*string)
		if !ok {
			return false
		}
		*dst = f.Format().String()
		return true

	case "channels":
		switch dst := out.(type) {
		case *int:
			*dst = spec0.Channels
			return true
		case *float64:
			*dst = float64(spec0.Channels)
			return true
		default:
			return false
		}
	}

	return resolveAttribute(e.logger, spec0, key, out)
}

// resolveAttribute implements the "any other key" fallback: a string
// or matrix attribute is copied into a *string or *mathutil.Mat4; a
// single-valued int or float attribute is copied into an *int or
// *float64, and a single-valued float asked as an *int is narrowed,
// mirroring the original gettextureinfo's PT_FLOAT-as-PT_INT branch.
// Int and float attributes with a count other than 1 are not
// supported and fail as a type mismatch. Every failure is logged at
// Debug through logger before returning false.
func resolveAttribute(logger *slog.Logger, spec0 texspec.Spec, key string, out any) bool {
	attr, ok := spec0.FindAttribute(key)
	if !ok {
		logger.Debug("lookup: get_texture_info attribute lookup failed", "key", key, "err", ErrUnknownAttribute)
		return false
	}

	switch attr.Type {
	case texspec.AttrString:
		dst, ok := out.(*string)
		if !ok {
			logger.Debug("lookup: get_texture_info type mismatch", "key", key, "err", ErrTypeMismatch)
			return false
		}
		*dst = string(attr.Data)
		return true

	case texspec.AttrMatrix:
		dst, ok := out.(*mathutil.Mat4)
		if !ok {
			logger.Debug("lookup: get_texture_info type mismatch", "key", key, "err", ErrTypeMismatch)
			return false
		}
		m, ok := decodeAttrMatrix(attr.Data)
		if !ok {
			logger.Debug("lookup: get_texture_info type mismatch", "key", key, "err", ErrTypeMismatch)
			return false
		}
		*dst = m
		return true

	case texspec.AttrInt:
		switch dst := out.(type) {
		case *int:
			if attr.Count != 1 || len(attr.Data) < 4 {
				logger.Debug("lookup: get_texture_info type mismatch", "key", key, "err", ErrTypeMismatch)
				return false
			}
			*dst = int(int32(binary.LittleEndian.Uint32(attr.Data)))
			return true
		default:
			logger.Debug("lookup: get_texture_info type mismatch", "key", key, "err", ErrTypeMismatch)
			return false
		}

	case texspec.AttrFloat:
		switch dst := out.(type) {
		case *float64:
			if attr.Count != 1 || len(attr.Data) < 8 {
				logger.Debug("lookup: get_texture_info type mismatch", "key", key, "err", ErrTypeMismatch)
				return false
			}
			*dst = math.Float64frombits(binary.LittleEndian.Uint64(attr.Data))
			return true
		case *int:
			// Single-valued float attribute narrowed to int — the
			// original's explicit PT_FLOAT-asked-as-PT_INT path.
			if attr.Count != 1 || len(attr.Data) < 8 {
				logger.Debug("lookup: get_texture_info type mismatch", "key", key, "err", ErrTypeMismatch)
				return false
			}
			v := math.Float64frombits(binary.LittleEndian.Uint64(attr.Data))
			*dst = int(v)
			return true
		default:
			logger.Debug("lookup: get_texture_info type mismatch", "key", key, "err", ErrTypeMismatch)
			return false
		}
	}

	logger.Debug("lookup: get_texture_info type mismatch", "key", key, "err", ErrTypeMismatch)
	return false
}

func decodeAttrMatrix(data []byte) (mathutil.Mat4, bool) {
	if len(data) != 16*8 {
		return mathutil.Mat4{}, false
	}
	var m mathutil.Mat4
	for i := 0; i < 16; i++ {
		bits := binary.LittleEndian.Uint64(data[i*8:])
		m[i] = math.Float64frombits(bits)
	}
	return m, true
}
