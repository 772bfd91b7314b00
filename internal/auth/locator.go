package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"espnauth/internal/retry"
)

// locator searches the main document and then child frames, in order,
// for a credential input of the requested kind. One full pass covers
// every frame; passes are retried on a bounded schedule because modal
// logins often render the fields a beat after the page settles.
type locator struct {
	cfg Config
	log zerolog.Logger
}

// locate returns the best candidate for kind or errFormNotFound after
// the retry schedule is exhausted.
func (l *locator) locate(ctx context.Context, kind FieldKind) (candidate, error) {
	policy := retry.Policy{Attempts: l.cfg.LocateAttempts, Interval: l.cfg.LocateInterval}

	var found candidate
	err := policy.Do(ctx, func(ctx context.Context) error {
		c, ok, err := l.pass(ctx, kind)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s field: %w", kind, errFormNotFound)
		}
		found = c
		return nil
	})
	if err != nil {
		return candidate{}, err
	}

	l.log.Debug().
		Str("kind", string(kind)).
		Int("frame", found.frame).
		Int("index", found.index).
		Str("heuristic", found.heuristic).
		Msg("credential input located")
	return found, nil
}

// locateOnce runs a single pass with no retries; used where absence is
// an expected answer rather than a failure, such as checking whether
// the password field is already rendered.
func (l *locator) locateOnce(ctx context.Context, kind FieldKind) (candidate, bool, error) {
	return l.pass(ctx, kind)
}

// pass searches the main document first, then frames in index order up
// to the configured bound. Deterministic: the first frame containing a
// match wins.
func (l *locator) pass(ctx context.Context, kind FieldKind) (candidate, bool, error) {
	inputs, err := collectInputs(ctx, mainFrame)
	if err != nil {
		return candidate{}, false, err
	}
	if c, ok := pickInput(kind, inputs, l.cfg); ok {
		c.frame = mainFrame
		return c, true, nil
	}

	n, err := frameCount(ctx, l.cfg.MaxFrames)
	if err != nil {
		return candidate{}, false, err
	}
	for i := 0; i < n; i++ {
		inputs, err := collectInputs(ctx, i)
		if err != nil {
			return candidate{}, false, err
		}
		if c, ok := pickInput(kind, inputs, l.cfg); ok {
			c.frame = i
			return c, true, nil
		}
	}
	return candidate{}, false, nil
}

// anyLoginInput reports whether a login-shaped input (email or
// password) is currently visible anywhere in scope; the revealer uses
// it as its success check.
func (l *locator) anyLoginInput(ctx context.Context) (bool, error) {
	for _, kind := range []FieldKind{FieldEmail, FieldPassword} {
		_, ok, err := l.pass(ctx, kind)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// findControl runs the shared control heuristics in the frame the
// credential inputs were found in.
func (l *locator) findControl(ctx context.Context, frame int, pick func([]controlInfo) (candidate, bool)) (candidate, bool, error) {
	controls, err := collectControls(ctx, frame)
	if err != nil {
		return candidate{}, false, err
	}
	c, ok := pick(controls)
	if !ok {
		return candidate{}, false, nil
	}
	c.frame = frame
	return c, true, nil
}
