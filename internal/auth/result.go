// Package auth drives an interactive ESPN sign-in through a real
// browser and captures the two session cookies the rest of the system
// uses as bearer credentials. The target site exposes no public
// authentication API, so everything here operates on heuristics over
// unknown markup and terminates with either extracted credentials or a
// classified failure.
package auth

import "time"

// Mode selects between the fully automated submit path and the
// human-assisted debug path with a visible browser window.
type Mode string

const (
	ModeAutomated Mode = "automated"
	ModeDebug     Mode = "debug"
)

// Session is the pair of opaque tokens that stand in for an
// authenticated identity on the target site. Immutable once returned;
// the browser keeps no reference to it after the call completes.
type Session struct {
	EspnS2 string `json:"espn_s2"`
	SWID   string `json:"swid"`
}

// LeagueDescriptor is best-effort account metadata scraped from the
// post-login page. It may be a placeholder and is never required for a
// successful authentication.
type LeagueDescriptor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Sport  string `json:"sport"`
	Season string `json:"season"`
}

// Failure carries a classified error kind and a human-readable
// message. The caller owns user-facing presentation.
type Failure struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Result is the only value that crosses the package boundary: either a
// Session plus discovered leagues, or a Failure.
type Result struct {
	Session *Session           `json:"session,omitempty"`
	Leagues []LeagueDescriptor `json:"leagues,omitempty"`
	Failure *Failure           `json:"failure,omitempty"`
}

// OK reports whether the result carries a session.
func (r Result) OK() bool {
	return r.Session != nil
}

func success(s Session, leagues []LeagueDescriptor) Result {
	return Result{Session: &s, Leagues: leagues}
}

func failure(kind ErrorKind, msg string) Result {
	return Result{Failure: &Failure{Kind: kind, Message: msg}}
}

// step names the stage a login attempt is in; used only for logging
// and failure messages.
type step string

const (
	stepLocateForm    step = "locate-form"
	stepEnterEmail    step = "enter-email"
	stepAdvanceStep   step = "advance-step"
	stepEnterPassword step = "enter-password"
	stepSubmit        step = "submit"
	stepVerify        step = "verify"
)

// attempt is the transient state of one Authenticate call. It is never
// persisted and never shared across calls.
type attempt struct {
	id        string
	email     string
	password  string
	mode      Mode
	step      step
	startedAt time.Time
}
