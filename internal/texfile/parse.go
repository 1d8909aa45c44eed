package texfile

import (
	"encoding/binary"
	"math"

	"tiletexcore/internal/mathutil"
	"tiletexcore/internal/texspec"
	"tiletexcore/internal/wrap"
)

// headerInfo is everything parseHeader extracts from a first-open spec
// chain: the file's declared kind, wrap modes, cube layout, Y-up
// convention, and the two world-space matrices. It is computed
// exactly once per TextureFile, on the very first successful open.
type headerInfo struct {
	texformat  Format
	swrap      wrap.Mode
	twrap      wrap.Mode
	cubeLayout CubeLayout
	yUp        bool
	mLocal     mathutil.Mat4
	mProj      mathutil.Mat4
}

// parseHeader derives headerInfo from the level-0 spec of a newly
// opened file, following texfile.cpp's TextureFile::open exactly:
// textureformat and wrapmodes attributes, the cube-layout heuristic
// compared against level-0 dimensions, the OpenEXR-class y_up flag,
// and Mlocal/Mproj composed from the registry's common-to-world
// baseline.
func parseHeader(spec0 texspec.Spec, formatName string, c2w mathutil.Mat4) headerInfo {
	info := headerInfo{
		texformat: PlainTexture,
		swrap:     wrap.Black,
		twrap:     wrap.Black,
	}

	if attr, ok := spec0.FindAttribute("textureformat"); ok && attr.Type == texspec.AttrString {
		if f, ok := parseFormatName(string(attr.Data)); ok {
			info.texformat = f
		}
	}

	if attr, ok := spec0.FindAttribute("wrapmodes"); ok && attr.Type == texspec.AttrString {
		s, t := wrap.Parse(string(attr.Data))
		info.swrap = wrap.Resolve(s, wrap.Black)
		info.twrap = wrap.Resolve(t, wrap.Black)
	}

	info.cubeLayout = NotCube
	if info.texformat == CubeFaceEnvironment {
		if formatName == "openexr" {
			info.yUp = true
		}
		w := max(spec0.FullWidth, spec0.TileWidth)
		h := max(spec0.FullHeight, spec0.TileHeight)
		switch {
		case spec0.Width == 3*w && spec0.Height == 2*h:
			info.cubeLayout = ThreeByTwo
		case spec0.Width == w && spec0.Height == 6*h:
			info.cubeLayout = OneBySix
		default:
			info.cubeLayout = UnknownLayout
		}
	}

	if attr, ok := spec0.FindAttribute("worldtocamera"); ok && attr.Type == texspec.AttrMatrix {
		if m, ok := decodeMatrix(attr.Data); ok {
			info.mLocal = mathutil.Mat4Mul(c2w, m)
		}
	}
	if attr, ok := spec0.FindAttribute("worldtoscreen"); ok && attr.Type == texspec.AttrMatrix {
		if m, ok := decodeMatrix(attr.Data); ok {
			info.mProj = mathutil.Mat4Mul(c2w, m)
		}
	}

	return info
}

func decodeMatrix(data []byte) (mathutil.Mat4, bool) {
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

// EncodeMatrix is the inverse of decodeMatrix, used by test fixtures
// and pyramid-building tools to populate a worldtocamera/worldtoscreen
// attribute's Data.
func EncodeMatrix(m mathutil.Mat4) []byte {
	data := make([]byte, 16*8)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(m[i]))
	}
	return data
}
