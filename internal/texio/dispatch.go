package texio

import "strings"

// DispatchFactory builds a factory that picks a backend constructor
// by file extension, a flat extension-keyed switch extended here to
// the two backends this core actually ships.
func DispatchFactory(byExt map[string]func() Reader, fallback func() Reader) func(path string) (Reader, bool) {
	return func(path string) (Reader, bool) {
		ext := extOf(path)
		if ctor, ok := byExt[ext]; ok {
			return ctor(), true
		}
		if fallback != nil {
			return fallback(), true
		}
		return nil, false
	}
}

func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(path[i:])
}
