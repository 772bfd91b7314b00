package auth

import "time"

// Config carries the pipeline's heuristics and bounds. The selector
// terms and phrase lists are tuned empirically against ESPN's login
// markup; they are configuration, not contract, and callers may
// override any of them when the site drifts.
type Config struct {
	// LoginURL is the identity-provider page the attempt starts on.
	LoginURL string `json:"login_url"`
	// AppURL is the target application's root; navigating here after
	// login forces application-scoped cookies to be set.
	AppURL string `json:"app_url"`

	// IdentityHosts are URL substrings that mark the identity/login
	// surface; TargetHosts mark the target site. Debug mode treats
	// "left IdentityHosts while still on TargetHosts" as a success
	// signal.
	IdentityHosts []string `json:"identity_hosts"`
	TargetHosts   []string `json:"target_hosts"`

	// Canonical cookie names, matched exactly first.
	CookieS2   string `json:"cookie_s2"`
	CookieSWID string `json:"cookie_swid"`
	// Fuzzy name fragments used when the canonical names are absent.
	FuzzyS2   []string `json:"fuzzy_s2"`
	FuzzySWID []string `json:"fuzzy_swid"`

	// Input-field heuristics.
	EmailTerms    []string `json:"email_terms"`
	PasswordTerms []string `json:"password_terms"`
	// DenyTerms excludes unrelated inputs such as the site-search box.
	DenyTerms []string `json:"deny_terms"`

	// Control heuristics for the multi-step flow.
	AdvancePhrases  []string `json:"advance_phrases"`
	SubmitPhrases   []string `json:"submit_phrases"`
	SubmitAttrTerms []string `json:"submit_attr_terms"`

	// Reveal heuristics for modal/overlay logins.
	LoginPhrases     []string `json:"login_phrases"`
	RevealSelectors  []string `json:"reveal_selectors"`
	DisableInjection bool     `json:"disable_injection"`

	// Phrases indicating the page rejected the credentials.
	ErrorPhrases []string `json:"error_phrases"`

	// Selectors tried by the best-effort league scrape.
	LeagueSelectors []string `json:"league_selectors"`

	// Bounds. Every wait in the pipeline derives from one of these.
	MaxFrames          int           `json:"max_frames"`
	LocateAttempts     int           `json:"locate_attempts"`
	LocateInterval     time.Duration `json:"locate_interval"`
	SettleDelay        time.Duration `json:"settle_delay"`
	NavTimeout         time.Duration `json:"nav_timeout"`
	SubmitTimeout      time.Duration `json:"submit_timeout"`
	SubmitPollInterval time.Duration `json:"submit_poll_interval"`
	OverallTimeout     time.Duration `json:"overall_timeout"`
	DebugTimeout       time.Duration `json:"debug_timeout"`
	DebugPollInterval  time.Duration `json:"debug_poll_interval"`
	DebugProgressEvery time.Duration `json:"debug_progress_every"`
}

// DefaultConfig returns the heuristics tuned against ESPN's current
// login flow.
func DefaultConfig() Config {
	return Config{
		LoginURL: "https://www.espn.com/login",
		AppURL:   "https://fantasy.espn.com/",

		IdentityHosts: []string{"espn.com/login", "registerdisney", "disneyid"},
		TargetHosts:   []string{"espn.com"},

		CookieS2:   "espn_s2",
		CookieSWID: "SWID",
		FuzzyS2:    []string{"s2", "session"},
		FuzzySWID:  []string{"swid", "id"},

		EmailTerms:    []string{"email", "username", "login"},
		PasswordTerms: []string{"password"},
		DenyTerms:     []string{"search", "sports", "team"},

		AdvancePhrases:  []string{"continue", "next"},
		SubmitPhrases:   []string{"log in", "login", "sign in", "sign-in", "submit"},
		SubmitAttrTerms: []string{"login", "signin", "sign-in", "submit", "auth"},

		LoginPhrases: []string{"log in", "login", "sign in", "sign-in"},
		RevealSelectors: []string{
			`a[href*="login"]`,
			`a[href*="signin"]`,
			`[data-behavior*="login"]`,
			`.login-btn`,
			`.signin-btn`,
			`#login`,
			`#global-user-trigger`,
		},

		ErrorPhrases: []string{
			"incorrect",
			"invalid",
			"couldn't find",
			"could not find",
			"try again",
			"doesn't match",
		},

		LeagueSelectors: []string{
			`a[href*="leagueId="]`,
			`a[href*="/league/"]`,
		},

		MaxFrames:          5,
		LocateAttempts:     3,
		LocateInterval:     time.Second,
		SettleDelay:        750 * time.Millisecond,
		NavTimeout:         30 * time.Second,
		SubmitTimeout:      15 * time.Second,
		SubmitPollInterval: 500 * time.Millisecond,
		OverallTimeout:     90 * time.Second,
		DebugTimeout:       5 * time.Minute,
		DebugPollInterval:  2 * time.Second,
		DebugProgressEvery: 15 * time.Second,
	}
}
