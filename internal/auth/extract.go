package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// cookie is the minimal view of a browser cookie the extractor needs.
type cookie struct {
	Name  string
	Value string
}

// extractor isolates the session cookie pair after a successful
// submission. The login flow sets identity-provider cookies; the pair
// the data API accepts is application-scoped, so the extractor first
// navigates to the application root to force those to be written.
type extractor struct {
	cfg Config
	log zerolog.Logger
}

func (e *extractor) extract(ctx context.Context) (Session, error) {
	navCtx, cancel := context.WithTimeout(ctx, e.cfg.NavTimeout)
	defer cancel()
	err := chromedp.Run(navCtx,
		chromedp.Navigate(e.cfg.AppURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return Session{}, fmt.Errorf("navigate to application root: %w: %w", errTimeout, err)
	}

	cookies, err := readCookies(ctx)
	if err != nil {
		return Session{}, err
	}

	s, ok := pickSessionCookies(cookies, e.cfg)
	if !ok {
		return Session{}, fmt.Errorf("%w (searched %d cookies)", errMissingSessionCookies, len(cookies))
	}
	e.log.Debug().Int("cookies", len(cookies)).Msg("session cookie pair extracted")
	return s, nil
}

// readCookies reads the full jar for the browser context.
func readCookies(ctx context.Context) ([]cookie, error) {
	var out []cookie
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cs, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		out = make([]cookie, 0, len(cs))
		for _, c := range cs {
			out = append(out, cookie{Name: c.Name, Value: c.Value})
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("read cookie jar: %w", err)
	}
	return out, nil
}

// pickSessionCookies selects the credential pair: exact name match
// first, then fuzzy substring fallback for sites that rename the
// cookies between seasons. Both values must be found.
func pickSessionCookies(cookies []cookie, cfg Config) (Session, bool) {
	var s2, swid, s2Name string

	for _, c := range cookies {
		switch {
		case c.Name == cfg.CookieS2 && s2 == "":
			s2 = c.Value
			s2Name = c.Name
		case c.Name == cfg.CookieSWID && swid == "":
			swid = c.Value
		}
	}

	if s2 == "" {
		if c, ok := fuzzyCookie(cookies, cfg.FuzzyS2, ""); ok {
			s2 = c.Value
			s2Name = c.Name
		}
	}
	if swid == "" {
		if c, ok := fuzzyCookie(cookies, cfg.FuzzySWID, s2Name); ok {
			swid = c.Value
		}
	}

	if s2 == "" || swid == "" {
		return Session{}, false
	}
	return Session{EspnS2: s2, SWID: swid}, true
}

// fuzzyCookie returns the first cookie whose name contains one of the
// fragments, skipping the cookie already claimed for the other slot.
// Claims are tracked by name so two distinct cookies sharing a value
// stay eligible.
func fuzzyCookie(cookies []cookie, fragments []string, claimedName string) (cookie, bool) {
	for _, frag := range fragments {
		for _, c := range cookies {
			if claimedName != "" && c.Name == claimedName {
				continue
			}
			if strings.Contains(strings.ToLower(c.Name), strings.ToLower(frag)) {
				return c, true
			}
		}
	}
	return cookie{}, false
}
