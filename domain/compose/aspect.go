package compose

import "strings"

// Aspect enumerates the supported output aspect targets.
type Aspect int

const (
	Aspect3x4 Aspect = iota
	Aspect1x1
	Aspect16x9
)

// Aspects lists every supported target in display order.
var Aspects = []Aspect{Aspect3x4, Aspect1x1, Aspect16x9}

// Size returns the fixed output pixel dimensions.
func (a Aspect) Size() (int, int) {
	switch a {
	case Aspect1x1:
		return 900, 900
	case Aspect16x9:
		return 1280, 720
	default:
		return 900, 1200
	}
}

func (a Aspect) String() string {
	switch a {
	case Aspect1x1:
		return "1:1"
	case Aspect16x9:
		return "16:9"
	default:
		return "3:4"
	}
}

// Key is the file-name friendly form used for overlay assets ("3x4").
func (a Aspect) Key() string { return strings.ReplaceAll(a.String(), ":", "x") }

// ParseAspect accepts "3:4", "1:1", "16:9" and their "x" forms.
func ParseAspect(s string) (Aspect, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "x", ":")
	for _, a := range Aspects {
		if a.String() == s {
			return a, true
		}
	}
	return Aspect3x4, false
}
