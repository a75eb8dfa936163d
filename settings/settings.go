// Package settings persists the user's capture preferences and resolves
// launch parameters against them.
package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/soocke/oshicam-go/domain/compose"
	"github.com/soocke/oshicam-go/domain/device"
	"github.com/soocke/oshicam-go/fsx"
)

// Key namespaces the stored record; bump the suffix on incompatible changes.
const Key = "oshi.camera.settings.v1"

// DefaultOverlay is used when no valid overlay id is known.
const DefaultOverlay = "sparkle"

// Timer values accepted for CountdownSeconds.
var timerValues = map[int]bool{0: true, 3: true, 5: true}

// Settings is the flat preference record.
type Settings struct {
	OverlayID        string
	Aspect           compose.Aspect
	Facing           device.Facing
	Guide            bool
	AudioEnabled     bool
	CountdownSeconds int
}

// Defaults returns the hard-coded preferences. overlay is the first
// registered overlay id; empty uses DefaultOverlay.
func Defaults(overlay string) Settings {
	if overlay == "" {
		overlay = DefaultOverlay
	}
	return Settings{
		OverlayID:        overlay,
		Aspect:           compose.Aspect3x4,
		Facing:           device.FacingFront,
		Guide:            false,
		AudioEnabled:     true,
		CountdownSeconds: 3,
	}
}

// ValidTimer reports whether n is an accepted countdown length.
func ValidTimer(n int) bool { return timerValues[n] }

// OverlaySet answers which overlay ids exist (small for DI).
type OverlaySet interface {
	Has(id string) bool
	First() string
}

// record is the stored form; every field is optional so that one bad value
// does not discard the rest.
type record struct {
	ActiveFrame    *string `json:"activeFrame,omitempty"`
	Aspect         *string `json:"aspect,omitempty"`
	Facing         *string `json:"facing,omitempty"`
	GuideOn        *bool   `json:"guideOn,omitempty"`
	ShutterSoundOn *bool   `json:"shutterSoundOn,omitempty"`
	TimerSec       *int    `json:"timerSec,omitempty"`
}

func webFacing(f device.Facing) string {
	if f == device.FacingBack {
		return "environment"
	}
	return "user"
}

func (s Settings) record() record {
	aspect := s.Aspect.String()
	facing := webFacing(s.Facing)
	return record{
		ActiveFrame:    &s.OverlayID,
		Aspect:         &aspect,
		Facing:         &facing,
		GuideOn:        &s.Guide,
		ShutterSoundOn: &s.AudioEnabled,
		TimerSec:       &s.CountdownSeconds,
	}
}

// merge overlays the valid fields of r onto base.
func (r record) merge(base Settings, overlays OverlaySet) Settings {
	out := base
	if r.ActiveFrame != nil && (overlays == nil || overlays.Has(*r.ActiveFrame)) && *r.ActiveFrame != "" {
		out.OverlayID = *r.ActiveFrame
	}
	if r.Aspect != nil {
		if a, ok := compose.ParseAspect(*r.Aspect); ok {
			out.Aspect = a
		}
	}
	if r.Facing != nil {
		if f, ok := device.ParseFacing(*r.Facing); ok {
			out.Facing = f
		}
	}
	if r.GuideOn != nil {
		out.Guide = *r.GuideOn
	}
	if r.ShutterSoundOn != nil {
		out.AudioEnabled = *r.ShutterSoundOn
	}
	if r.TimerSec != nil && ValidTimer(*r.TimerSec) {
		out.CountdownSeconds = *r.TimerSec
	}
	return out
}

// Store reads and writes the record in a directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir; empty uses the xdg state dir.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = filepath.Join(xdg.StateHome, "oshicam")
	}
	return &Store{dir: dir}
}

// Path is the file holding the record.
func (s *Store) Path() string { return filepath.Join(s.dir, Key+".json") }

// Load returns the saved settings merged over defaults. Absent data is not
// an error. Malformed data yields defaults together with the decode error,
// which callers only log.
func (s *Store) Load(overlays OverlaySet) (Settings, error) {
	first := ""
	if overlays != nil {
		first = overlays.First()
	}
	def := Defaults(first)
	b, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return def, nil
		}
		return def, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return def, err
	}
	// Decode field by field so a wrongly typed value drops only itself.
	var r record
	decodeField(fields, "activeFrame", &r.ActiveFrame)
	decodeField(fields, "aspect", &r.Aspect)
	decodeField(fields, "facing", &r.Facing)
	decodeField(fields, "guideOn", &r.GuideOn)
	decodeField(fields, "shutterSoundOn", &r.ShutterSoundOn)
	decodeField(fields, "timerSec", &r.TimerSec)
	return r.merge(def, overlays), nil
}

func decodeField[T any](fields map[string]json.RawMessage, key string, dst **T) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = &v
}

// Save writes s atomically.
func (s *Store) Save(v Settings) error {
	b, err := json.MarshalIndent(v.record(), "", "  ")
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(s.dir, Key+".json", b)
}
