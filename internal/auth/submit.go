package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jaytaylor/html2text"
	"github.com/rs/zerolog"

	"espnauth/internal/retry"
)

// submitter drives the located form through a possibly multi-step
// flow: enter email, advance if the site renders the password field on
// a second step, enter password, submit, then verify the outcome.
type submitter struct {
	cfg Config
	loc *locator
	log zerolog.Logger
}

// run executes the state machine for one attempt. The email candidate
// comes from the caller so the locate step is logged once, against the
// attempt.
func (s *submitter) run(ctx context.Context, at *attempt, email candidate) error {
	at.step = stepEnterEmail
	if err := setFieldValue(ctx, email.frame, email.index, at.email); err != nil {
		return err
	}

	// Two-step flows render the password input only after a
	// continue/next control is clicked. Presence is detected, never
	// assumed.
	password, havePassword, err := s.loc.locateOnce(ctx, FieldPassword)
	if err != nil {
		return err
	}
	if !havePassword {
		at.step = stepAdvanceStep
		if err := s.advance(ctx, email.frame); err != nil {
			return err
		}
		password, err = s.loc.locate(ctx, FieldPassword)
		if err != nil {
			return err
		}
	}

	at.step = stepEnterPassword
	if err := setFieldValue(ctx, password.frame, password.index, at.password); err != nil {
		return err
	}

	at.step = stepSubmit
	preSubmitURL, err := pageLocation(ctx)
	if err != nil {
		return err
	}
	if err := s.submit(ctx, password); err != nil {
		return err
	}
	if err := s.awaitOutcome(ctx, preSubmitURL); err != nil {
		return err
	}

	at.step = stepVerify
	return s.verify(ctx)
}

// advance clicks a continue/next control when one exists. Its absence
// is not an error: single-step forms go straight to the password
// field.
func (s *submitter) advance(ctx context.Context, frame int) error {
	c, ok, err := s.loc.findControl(ctx, frame, func(controls []controlInfo) (candidate, bool) {
		return pickControl(controls, s.cfg.AdvancePhrases, nil, s.cfg.DenyTerms)
	})
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug().Msg("no advance control; treating flow as single-step")
		return nil
	}
	s.log.Debug().Int("frame", c.frame).Int("index", c.index).Msg("advancing to password step")
	if err := clickControl(ctx, c.frame, c.index); err != nil {
		return err
	}
	return settle(ctx, s.cfg.SettleDelay)
}

// submit triggers the submit-shaped control in the password field's
// frame, falling back to an Enter key dispatch on the field itself.
func (s *submitter) submit(ctx context.Context, password candidate) error {
	c, ok, err := s.loc.findControl(ctx, password.frame, func(controls []controlInfo) (candidate, bool) {
		return pickSubmit(controls, s.cfg)
	})
	if err != nil {
		return err
	}
	if ok {
		s.log.Debug().Str("heuristic", c.heuristic).Msg("clicking submit control")
		return clickControl(ctx, c.frame, c.index)
	}
	s.log.Debug().Msg("no submit control found; pressing enter")
	return pressEnter(ctx, password.frame, password.index)
}

// awaitOutcome waits for one of the submission's observable effects:
// the page navigates, the session cookies appear, or the bound
// elapses.
func (s *submitter) awaitOutcome(ctx context.Context, preSubmitURL string) error {
	err := retry.Poll(ctx, s.cfg.SubmitPollInterval, s.cfg.SubmitTimeout, func(ctx context.Context, _ time.Duration) (bool, error) {
		url, err := pageLocation(ctx)
		if err != nil {
			return false, err
		}
		if url != preSubmitURL {
			s.log.Debug().Str("url", url).Msg("navigation after submit")
			return true, nil
		}
		cookies, err := readCookies(ctx)
		if err != nil {
			return false, err
		}
		if _, ok := pickSessionCookies(cookies, s.cfg); ok {
			s.log.Debug().Msg("session cookies appeared after submit")
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		// Only deadline expiry is a timeout; engine errors from the
		// page reads keep their own classification.
		if errors.Is(err, retry.ErrDeadline) {
			return fmt.Errorf("submission produced no navigation or cookies: %w: %w", errTimeout, err)
		}
		return err
	}
	return nil
}

// verify downgrades an apparently successful submission when the
// resulting page tells the user their credentials were rejected. The
// page is flattened to text first so phrases split across markup still
// match.
func (s *submitter) verify(ctx context.Context) error {
	html, err := pageHTML(ctx)
	if err != nil {
		return err
	}
	if rejectionText(html, s.cfg.ErrorPhrases) {
		return errInvalidCredentials
	}
	return nil
}

// rejectionText reports whether the rendered page text contains any of
// the rejection phrases.
func rejectionText(html string, phrases []string) bool {
	text, err := html2text.FromString(html)
	if err != nil {
		// Fall back to matching against raw markup.
		text = html
	}
	return containsAny(strings.ToLower(text), phrases)
}
