package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// revealStrategy is one independent attempt to force a hidden or
// overlay login form into an interactable state. Strategies are pure
// page operations; the revealer owns ordering and the success check.
type revealStrategy struct {
	name string
	run  func(ctx context.Context) error
}

// revealer runs its strategy chain until a login-shaped input becomes
// visible or every strategy has been tried once.
type revealer struct {
	cfg Config
	loc *locator
	log zerolog.Logger
}

func (r *revealer) strategies() []revealStrategy {
	out := []revealStrategy{
		{name: "global-hooks", run: r.callGlobalHooks},
		{name: "synthetic-events", run: r.dispatchSyntheticEvents},
		{name: "text-click", run: r.clickLoginText},
		{name: "selector-click", run: r.clickLoginSelector},
	}
	if !r.cfg.DisableInjection {
		out = append(out, revealStrategy{name: "inject-form", run: r.injectForm})
	}
	return out
}

// reveal attempts each strategy at most once, checking for a visible
// login-shaped input after a settle delay. Returns nil as soon as one
// strategy succeeds, errFormNotFound when all are exhausted.
func (r *revealer) reveal(ctx context.Context) error {
	// The form may already be interactable; don't disturb the page.
	if visible, err := r.loc.anyLoginInput(ctx); err == nil && visible {
		return nil
	}

	for _, s := range r.strategies() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.run(ctx); err != nil {
			r.log.Debug().Str("strategy", s.name).Err(err).Msg("reveal strategy failed")
			continue
		}
		if err := settle(ctx, r.cfg.SettleDelay); err != nil {
			return err
		}
		visible, err := r.loc.anyLoginInput(ctx)
		if err != nil {
			return err
		}
		if visible {
			r.log.Debug().Str("strategy", s.name).Msg("login form revealed")
			return nil
		}
	}
	return fmt.Errorf("reveal: %w", errFormNotFound)
}

func settle(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// callGlobalHooks feature-detects client-side login entry points the
// site is known to expose and invokes the first one present.
func (r *revealer) callGlobalHooks(ctx context.Context) error {
	const js = `(() => {
		try {
			if (window.DID && window.DID.launchLogin) { window.DID.launchLogin(); return true; }
			if (window.espn && window.espn.login && window.espn.login.show) { window.espn.login.show(); return true; }
			if (window.openLoginModal) { window.openLoginModal(); return true; }
			if (window.showLogin) { window.showLogin(); return true; }
		} catch (e) {}
		return false;
	})()`
	var fired bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &fired)); err != nil {
		return err
	}
	if !fired {
		return fmt.Errorf("no known login hook present")
	}
	return nil
}

// dispatchSyntheticEvents sends the keyboard/click events that commonly
// open account modals: Escape to clear consent overlays, then a click
// on the document body to wake lazy-mounted headers.
func (r *revealer) dispatchSyntheticEvents(ctx context.Context) error {
	const js = `(() => {
		const opts = { key: 'Escape', code: 'Escape', keyCode: 27, bubbles: true };
		document.dispatchEvent(new KeyboardEvent('keydown', opts));
		document.dispatchEvent(new KeyboardEvent('keyup', opts));
		if (document.body) {
			document.body.dispatchEvent(new MouseEvent('click', { bubbles: true }));
		}
		return true;
	})()`
	var ok bool
	return chromedp.Run(ctx, chromedp.Evaluate(js, &ok))
}

// clickLoginText clicks the first visible control whose text matches a
// login phrase, reusing the shared control heuristics.
func (r *revealer) clickLoginText(ctx context.Context) error {
	c, ok, err := r.loc.findControl(ctx, mainFrame, func(controls []controlInfo) (candidate, bool) {
		return pickControl(controls, r.cfg.LoginPhrases, nil, r.cfg.DenyTerms)
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no control with login text")
	}
	return clickControl(ctx, c.frame, c.index)
}

// clickLoginSelector clicks the first element matching one of the
// configured login selector patterns.
func (r *revealer) clickLoginSelector(ctx context.Context) error {
	for _, sel := range r.cfg.RevealSelectors {
		js := fmt.Sprintf(`(() => {
			const el = document.querySelector(%s);
			if (!el) return false;
			el.click();
			return true;
		})()`, jsString(sel))
		var clicked bool
		if err := chromedp.Run(ctx, chromedp.Evaluate(js, &clicked)); err != nil {
			return err
		}
		if clicked {
			return nil
		}
	}
	return fmt.Errorf("no reveal selector matched")
}

// injectForm is the last resort: synthesize a minimal credential form
// in the page so the rest of the pipeline can type into it. Its submit
// posts to the identity-provider URL, the same path a native form
// would take.
func (r *revealer) injectForm(ctx context.Context) error {
	js := fmt.Sprintf(`(() => {
		if (document.getElementById('espnauth-injected')) return true;
		const form = document.createElement('form');
		form.id = 'espnauth-injected';
		form.method = 'post';
		form.action = %s;

		const email = document.createElement('input');
		email.type = 'email';
		email.name = 'email';
		email.placeholder = 'Email';

		const password = document.createElement('input');
		password.type = 'password';
		password.name = 'password';
		password.placeholder = 'Password';

		const submit = document.createElement('button');
		submit.type = 'submit';
		submit.textContent = 'Log In';

		form.appendChild(email);
		form.appendChild(password);
		form.appendChild(submit);
		document.body.appendChild(form);
		return true;
	})()`, jsString(r.cfg.LoginURL))

	var ok bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("form injection failed")
	}
	r.log.Warn().Msg("no native login form found; injected a fallback form")
	return nil
}
