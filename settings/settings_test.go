package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soocke/oshicam-go/domain/compose"
	"github.com/soocke/oshicam-go/domain/device"
)

type overlaySet []string

func (o overlaySet) Has(id string) bool {
	for _, v := range o {
		if v == id {
			return true
		}
	}
	return false
}

func (o overlaySet) First() string {
	if len(o) == 0 {
		return ""
	}
	return o[0]
}

var known = overlaySet{"sparkle", "ribbon", "neon"}

func writeRaw(t *testing.T, s *Store, raw string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_AbsentYieldsDefaults(t *testing.T) {
	s := NewStore(t.TempDir())
	got, err := s.Load(known)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Defaults("sparkle")
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if want.Aspect != compose.Aspect3x4 || want.Facing != device.FacingFront || want.Guide || !want.AudioEnabled || want.CountdownSeconds != 3 {
		t.Fatalf("unexpected defaults %+v", want)
	}
}

func TestLoad_MalformedYieldsDefaultsWithError(t *testing.T) {
	s := NewStore(t.TempDir())
	writeRaw(t, s, "{oops")
	got, err := s.Load(known)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if got != Defaults("sparkle") {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestLoad_FieldLevelFallback(t *testing.T) {
	s := NewStore(t.TempDir())
	writeRaw(t, s, `{"activeFrame":"unknown","aspect":"16:9","facing":"environment","guideOn":"yes","shutterSoundOn":false,"timerSec":4}`)
	got, err := s.Load(known)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.OverlayID != "sparkle" {
		t.Fatalf("unknown overlay should fall back, got %s", got.OverlayID)
	}
	if got.Aspect != compose.Aspect16x9 || got.Facing != device.FacingBack {
		t.Fatalf("valid fields dropped: %+v", got)
	}
	if got.Guide {
		t.Fatalf("mistyped guide should fall back to false")
	}
	if got.AudioEnabled {
		t.Fatalf("audio flag not kept")
	}
	if got.CountdownSeconds != 3 {
		t.Fatalf("invalid timer should fall back, got %d", got.CountdownSeconds)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state"))
	want := Settings{OverlayID: "neon", Aspect: compose.Aspect1x1, Facing: device.FacingBack, Guide: true, AudioEnabled: false, CountdownSeconds: 0}
	if err := s.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(known)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if filepath.Base(s.Path()) != "oshi.camera.settings.v1.json" {
		t.Fatalf("path=%s", s.Path())
	}
}

func TestLaunch_Precedence(t *testing.T) {
	saved := Settings{OverlayID: "neon", Aspect: compose.Aspect16x9, Facing: device.FacingBack, AudioEnabled: true, CountdownSeconds: 5}
	cases := []struct {
		name   string
		query  string
		frame  string
		aspect compose.Aspect
		timer  int
	}{
		{"params win", "frame=ribbon&aspect=1:1&timer=3", "ribbon", compose.Aspect1x1, 3},
		{"absent keeps saved", "", "neon", compose.Aspect16x9, 5},
		{"invalid skipped", "?frame=bogus&aspect=4:3&timer=7", "neon", compose.Aspect16x9, 5},
		{"timer zero is absent", "timer=0", "neon", compose.Aspect16x9, 5},
		{"leading question mark", "?aspect=3:4", "neon", compose.Aspect3x4, 5},
		{"malformed pair keeps the rest", "x=%zz&frame=ribbon&aspect=1:1", "ribbon", compose.Aspect1x1, 5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ParseLaunch(c.query).Apply(saved, known)
			if got.OverlayID != c.frame || got.Aspect != c.aspect || got.CountdownSeconds != c.timer {
				t.Fatalf("got %+v", got)
			}
			if got.Facing != saved.Facing || got.AudioEnabled != saved.AudioEnabled {
				t.Fatalf("launch params must not touch other fields: %+v", got)
			}
		})
	}
}
