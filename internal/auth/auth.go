package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"espnauth/internal/browser"
)

// Authenticator is the single entry point the rest of the application
// consumes. It owns no browser process itself; it borrows pages from
// the Manager and guarantees each one is released on every exit path.
//
// Concurrent Authenticate calls are serialized: the manager holds one
// browser handle and two in-flight attempts would race on it.
type Authenticator struct {
	mgr *browser.Manager
	cfg Config
	log zerolog.Logger

	mu sync.Mutex
}

// New creates an Authenticator around a browser manager.
func New(mgr *browser.Manager, cfg Config, log zerolog.Logger) *Authenticator {
	return &Authenticator{mgr: mgr, cfg: cfg, log: log}
}

// Authenticate signs in with the given credentials and returns either
// the session cookie pair plus discovered leagues, or a classified
// failure. It never panics and never returns an unclassified error;
// the caller owns user-facing messaging.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string, mode Mode) (res Result) {
	a.mu.Lock()
	defer a.mu.Unlock()

	at := &attempt{
		id:        uuid.NewString(),
		email:     email,
		password:  password,
		mode:      mode,
		step:      stepLocateForm,
		startedAt: time.Now(),
	}
	log := a.log.With().Str("attempt", at.id).Str("mode", string(mode)).Logger()

	// The automation layer can panic on a dying browser; nothing is
	// allowed to escape this boundary.
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("authentication panicked")
			res = failure(KindBrowserInit, fmt.Sprintf("automation engine failure at step %s: %v", at.step, r))
		}
	}()

	session, leagues, err := a.run(ctx, at, log)
	if err != nil {
		kind := classify(err)
		log.Warn().
			Str("kind", string(kind)).
			Str("step", string(at.step)).
			Dur("elapsed", time.Since(at.startedAt)).
			Err(err).
			Msg("authentication failed")
		return failure(kind, err.Error())
	}

	log.Info().
		Int("leagues", len(leagues)).
		Dur("elapsed", time.Since(at.startedAt)).
		Msg("authentication succeeded")
	return success(session, leagues)
}

func (a *Authenticator) run(ctx context.Context, at *attempt, log zerolog.Logger) (Session, []LeagueDescriptor, error) {
	// Debug mode needs a window; otherwise respect a browser the
	// caller already started visibly.
	visible := at.mode == ModeDebug || a.mgr.Visible()
	if err := a.mgr.Start(ctx, visible); err != nil {
		return Session{}, nil, fmt.Errorf("%w: %w", errBrowserInit, err)
	}

	pageCtx, release, err := a.mgr.NewPage(ctx)
	if err != nil {
		return Session{}, nil, fmt.Errorf("%w: %w", errBrowserInit, err)
	}
	defer release()

	// One deadline covers the whole attempt; every step below also
	// carries its own tighter bound.
	pageCtx, cancel := context.WithTimeout(pageCtx, a.cfg.OverallTimeout+a.cfg.DebugTimeout)
	defer cancel()

	loc := &locator{cfg: a.cfg, log: log}
	rev := &revealer{cfg: a.cfg, loc: loc, log: log}
	sub := &submitter{cfg: a.cfg, loc: loc, log: log}
	ext := &extractor{cfg: a.cfg, log: log}

	log.Debug().Str("url", a.cfg.LoginURL).Msg("opening login page")
	navCtx, navCancel := context.WithTimeout(pageCtx, a.cfg.NavTimeout)
	err = chromedp.Run(navCtx,
		chromedp.Navigate(a.cfg.LoginURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	navCancel()
	if err != nil {
		return Session{}, nil, fmt.Errorf("open login page: %w: %w", errTimeout, err)
	}

	var session Session
	if at.mode == ModeDebug {
		// Surface the form for the human, then just watch.
		if err := rev.reveal(pageCtx); err != nil {
			log.Debug().Err(err).Msg("reveal before manual login failed; continuing to watch")
		}
		mon := &debugMonitor{cfg: a.cfg, ext: ext, log: log}
		session, err = mon.wait(pageCtx)
		if err != nil {
			return Session{}, nil, err
		}
	} else {
		at.step = stepLocateForm
		emailField, err := loc.locate(pageCtx, FieldEmail)
		if err != nil {
			// The form may be hidden behind a modal; reveal and retry.
			if revealErr := rev.reveal(pageCtx); revealErr != nil {
				return Session{}, nil, err
			}
			emailField, err = loc.locate(pageCtx, FieldEmail)
			if err != nil {
				return Session{}, nil, err
			}
		}
		if err := sub.run(pageCtx, at, emailField); err != nil {
			return Session{}, nil, err
		}
		session, err = ext.extract(pageCtx)
		if err != nil {
			return Session{}, nil, err
		}
	}

	leagues := discoverLeagues(pageCtx, a.cfg, log)
	return session, leagues, nil
}
