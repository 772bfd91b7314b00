package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"espnauth/internal/retry"
)

// debugMonitor replaces the automated submit path when a human is
// completing the form in a visible window. It only watches: the cookie
// jar and the page URL are polled until login is detected or the wait
// bound expires.
type debugMonitor struct {
	cfg Config
	ext *extractor
	log zerolog.Logger
}

// wait blocks until the cookie pair appears, the URL leaves the
// identity domain while staying on the target site, or the bound
// elapses. Progress is logged at a fixed cadence so the human knows
// the watcher is alive.
func (d *debugMonitor) wait(ctx context.Context) (Session, error) {
	var (
		captured     Session
		leftIdentity bool
		lastReport   time.Duration
	)

	err := retry.Poll(ctx, d.cfg.DebugPollInterval, d.cfg.DebugTimeout, func(ctx context.Context, elapsed time.Duration) (bool, error) {
		if elapsed-lastReport >= d.cfg.DebugProgressEvery {
			lastReport = elapsed
			d.log.Info().
				Dur("elapsed", elapsed.Round(time.Second)).
				Dur("remaining", (d.cfg.DebugTimeout - elapsed).Round(time.Second)).
				Msg("waiting for manual login")
		}

		cookies, err := readCookies(ctx)
		if err != nil {
			return false, err
		}
		if s, ok := pickSessionCookies(cookies, d.cfg); ok {
			captured = s
			return true, nil
		}

		url, err := pageLocation(ctx)
		if err != nil {
			return false, err
		}
		if !containsAny(url, d.cfg.IdentityHosts) && containsAny(url, d.cfg.TargetHosts) {
			// Off the login surface but still on the target site:
			// treat as login complete and let extraction decide.
			leftIdentity = true
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		if errors.Is(err, retry.ErrDeadline) {
			return Session{}, fmt.Errorf("%w after %s", errDebugTimeout, d.cfg.DebugTimeout)
		}
		return Session{}, err
	}

	if leftIdentity {
		d.log.Debug().Msg("login page left; extracting application cookies")
		return d.ext.extract(ctx)
	}
	return captured, nil
}
