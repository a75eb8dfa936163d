package settings

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/soocke/oshicam-go/domain/compose"
)

// Launch holds parameters supplied at startup ("frame=ribbon&aspect=1:1&timer=5").
// Nil fields were absent or invalid.
type Launch struct {
	Frame  *string
	Aspect *compose.Aspect
	Timer  *int
}

// ParseLaunch decodes a query-like string. A leading "?" is ignored. Invalid
// values are dropped; a timer of 0 counts as absent. A malformed pair does
// not discard the pairs around it.
func ParseLaunch(query string) Launch {
	var l Launch
	// ParseQuery keeps every pair it could decode alongside the error.
	q, _ := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(query), "?"))
	if v := q.Get("frame"); v != "" {
		l.Frame = &v
	}
	if a, ok := compose.ParseAspect(q.Get("aspect")); ok {
		l.Aspect = &a
	}
	if n, err := strconv.Atoi(q.Get("timer")); err == nil && n != 0 && ValidTimer(n) {
		l.Timer = &n
	}
	return l
}

// Apply resolves l over base (saved settings, already merged over defaults).
// Parameters win; a frame id not known to overlays is skipped.
func (l Launch) Apply(base Settings, overlays OverlaySet) Settings {
	out := base
	if l.Frame != nil && (overlays == nil || overlays.Has(*l.Frame)) {
		out.OverlayID = *l.Frame
	}
	if l.Aspect != nil {
		out.Aspect = *l.Aspect
	}
	if l.Timer != nil {
		out.CountdownSeconds = *l.Timer
	}
	return out
}
