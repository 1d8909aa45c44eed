// Package wrap defines the texture wrap-mode enum and the header
// attribute string format used to declare it, matching the
// "wrapmodes" convention of the original texture file format.
package wrap

import "strings"

// Mode is a coordinate wrap policy for texel lookups outside [0,1).
type Mode int

const (
	// Default defers to whatever the file or caller declares; it is
	// never stored as a TextureFile's resolved swrap/twrap.
	Default Mode = iota
	Black
	Clamp
	Periodic
	Mirror
)

var names = [...]string{
	Default:  "default",
	Black:    "black",
	Clamp:    "clamp",
	Periodic: "periodic",
	Mirror:   "mirror",
}

// String returns the header-attribute token for m, or "default" for
// an out-of-range value.
func (m Mode) String() string {
	if int(m) < 0 || int(m) >= len(names) {
		return names[Default]
	}
	return names[m]
}

func decodeToken(tok string) Mode {
	for i, n := range names {
		if n == tok {
			return Mode(i)
		}
	}
	return Default
}

// Parse splits a "wrapmodes" header attribute on the first comma into
// (swrap, twrap). A string with no comma applies the same mode to
// both axes. Unknown tokens decode to Default.
func Parse(wrapmodes string) (s, t Mode) {
	if idx := strings.IndexByte(wrapmodes, ','); idx >= 0 {
		return decodeToken(wrapmodes[:idx]), decodeToken(wrapmodes[idx+1:])
	}
	m := decodeToken(wrapmodes)
	return m, m
}

// Format renders (s, t) back into the "wrapmodes" header attribute
// convention: "a,b" as two tokens, collapsed to a bare "a" when both
// axes match (Parse("a") and Format(a, a) round-trip).
func Format(s, t Mode) string {
	if s == t {
		return s.String()
	}
	return s.String() + "," + t.String()
}

// Resolve returns m unless it is Default, in which case it returns
// fallback. Used to apply a file's declared wrap mode when a caller's
// Options leaves swrap/twrap at Default.
func Resolve(m, fallback Mode) Mode {
	if m == Default {
		return fallback
	}
	return m
}
