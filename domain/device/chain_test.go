package device

import (
	"context"
	"testing"
)

func TestChain_FallsThroughBackends(t *testing.T) {
	first := &fakeBackend{}
	second := &fakeBackend{accept: func(c Constraint) bool { return c.AnyDevice }}
	n := NewNegotiator(Chain{first, second}, 0, 0, discardLogger)
	if err := n.Acquire(context.Background(), FacingFront); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if len(first.tried) != 3 || len(second.tried) != 3 {
		t.Fatalf("tried first=%d second=%d", len(first.tried), len(second.tried))
	}
	if got := (Chain{first, second}).Name(); got != "fake+fake" {
		t.Fatalf("name %q", got)
	}
}

func TestMatchFacing(t *testing.T) {
	if f, ok := MatchFacing("FaceTime HD Camera"); !ok || f != FacingFront {
		t.Fatalf("facetime: %v %v", f, ok)
	}
	if f, ok := MatchFacing("Rear Camera (0x1)"); !ok || f != FacingBack {
		t.Fatalf("rear: %v %v", f, ok)
	}
	if _, ok := MatchFacing("USB2.0 Cam"); ok {
		t.Fatalf("unexpected match")
	}
}
