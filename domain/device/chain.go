package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Chain tries each backend in order for every constraint.
type Chain []Backend

func (c Chain) Name() string {
	names := make([]string, 0, len(c))
	for _, b := range c {
		names = append(names, b.Name())
	}
	return strings.Join(names, "+")
}

func (c Chain) Open(ctx context.Context, con Constraint) (Handle, error) {
	var errs []error
	for _, b := range c {
		h, err := b.Open(ctx, con)
		if err == nil && h != nil {
			return h, nil
		}
		if err == nil {
			err = errors.New("nil handle")
		}
		errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
	}
	if len(errs) == 0 {
		return nil, ErrUnavailable
	}
	return nil, errors.Join(errs...)
}

// MatchFacing guesses a facing direction from a device label.
func MatchFacing(label string) (Facing, bool) {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "front"), strings.Contains(l, "user"), strings.Contains(l, "facetime"), strings.Contains(l, "integrated"):
		return FacingFront, true
	case strings.Contains(l, "back"), strings.Contains(l, "rear"), strings.Contains(l, "environment"):
		return FacingBack, true
	}
	return FacingFront, false
}
