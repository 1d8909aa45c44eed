package texfile

// Format is the texture's kind, parsed from the "textureformat"
// header attribute. Unknown is never a parse target — TextureFile
// defaults to PlainTexture (the zero value) when the attribute is
// absent or unrecognized, matching the original's TexFormatTexture
// default.
type Format int

const (
	PlainTexture Format = iota
	VolumeTexture
	Shadow
	CubeFaceShadow
	VolumeShadow
	LatLongEnvironment
	CubeFaceEnvironment
	Unknown
)

var formatNames = map[Format]string{
	PlainTexture:         "Plain Texture",
	VolumeTexture:        "Volume Texture",
	Shadow:               "Shadow",
	CubeFaceShadow:       "CubeFace Shadow",
	VolumeShadow:         "Volume Shadow",
	LatLongEnvironment:   "LatLong Environment",
	CubeFaceEnvironment:  "CubeFace Environment",
	Unknown:              "unknown",
}

// String returns the richer "textureformat" name for f.
func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return "unknown"
}

// TypeName returns the coarser "texturetype" name get_texture_info
// reports: Shadow variants collapse to "Shadow", environment variants
// to "Environment".
func (f Format) TypeName() string {
	switch f {
	case PlainTexture:
		return "Plain Texture"
	case VolumeTexture:
		return "Volume Texture"
	case Shadow, CubeFaceShadow, VolumeShadow:
		return "Shadow"
	case LatLongEnvironment, CubeFaceEnvironment:
		return "Environment"
	default:
		return "unknown"
	}
}

func parseFormatName(s string) (Format, bool) {
	for f, n := range formatNames {
		if n == s && f != Unknown {
			return f, true
		}
	}
	return Unknown, false
}

// CubeLayout is the arrangement of six cube faces within one 2D
// image, meaningful only for CubeFaceEnvironment textures.
type CubeLayout int

const (
	NotCube CubeLayout = iota
	ThreeByTwo
	OneBySix
	UnknownLayout
)
