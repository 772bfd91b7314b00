package auth

import "strings"

// FieldKind selects which credential input a search is after.
type FieldKind string

const (
	FieldEmail    FieldKind = "email"
	FieldPassword FieldKind = "password"
)

// candidate is a located form-field or control handle: the frame it
// lives in, its index within that frame's snapshot, and the heuristic
// that matched it. Discarded after use.
type candidate struct {
	frame     int
	index     int
	heuristic string
}

// nonTextTypes are input types that can never hold a credential.
var nonTextTypes = map[string]bool{
	"hidden":   true,
	"checkbox": true,
	"radio":    true,
	"submit":   true,
	"button":   true,
	"file":     true,
	"image":    true,
	"range":    true,
	"color":    true,
}

func containsAny(s string, terms []string) bool {
	s = strings.ToLower(s)
	for _, t := range terms {
		if t != "" && strings.Contains(s, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// denied reports whether any attribute of the input matches the
// deny-list; such inputs are skipped even when an allow term also
// matches, to avoid typing credentials into the site-search box.
func (in inputInfo) deniedBy(terms []string) bool {
	return containsAny(in.Name, terms) ||
		containsAny(in.ID, terms) ||
		containsAny(in.Class, terms) ||
		containsAny(in.Placeholder, terms)
}

func (in inputInfo) attrsMatch(terms []string) bool {
	return containsAny(in.Name, terms) ||
		containsAny(in.ID, terms) ||
		containsAny(in.Class, terms) ||
		containsAny(in.Placeholder, terms)
}

// pickInput runs the ordered heuristic chain over one frame's input
// snapshot and returns the first match: exact type first, then
// attribute substring against the allow-list. List order decides;
// there is no scoring.
func pickInput(kind FieldKind, inputs []inputInfo, cfg Config) (candidate, bool) {
	exactType := "email"
	allow := cfg.EmailTerms
	if kind == FieldPassword {
		exactType = "password"
		allow = cfg.PasswordTerms
	}

	for _, in := range inputs {
		if !in.Visible || in.deniedBy(cfg.DenyTerms) {
			continue
		}
		if strings.EqualFold(in.Type, exactType) {
			return candidate{index: in.Index, heuristic: "type=" + exactType}, true
		}
	}

	for _, in := range inputs {
		if !in.Visible || in.deniedBy(cfg.DenyTerms) {
			continue
		}
		if nonTextTypes[strings.ToLower(in.Type)] {
			continue
		}
		// A password field must be type=password; matching a text
		// input named "password" would echo the secret on screen.
		if kind == FieldPassword && !strings.EqualFold(in.Type, "password") {
			continue
		}
		if in.attrsMatch(allow) {
			return candidate{index: in.Index, heuristic: "attr"}, true
		}
	}

	return candidate{}, false
}

func (c controlInfo) deniedBy(terms []string) bool {
	return containsAny(c.Text, terms) ||
		containsAny(c.Name, terms) ||
		containsAny(c.ID, terms) ||
		containsAny(c.Class, terms) ||
		containsAny(c.Href, terms)
}

func (c controlInfo) attrsMatch(terms []string) bool {
	return containsAny(c.Name, terms) ||
		containsAny(c.ID, terms) ||
		containsAny(c.Class, terms) ||
		containsAny(c.Href, terms)
}

// pickControl finds a clickable control by visible text first, then by
// attribute terms, skipping deny-listed candidates. Shared by the
// advance-step detection, the submit search, and the reveal
// text-click strategy.
func pickControl(controls []controlInfo, phrases, attrTerms, deny []string) (candidate, bool) {
	for _, c := range controls {
		if !c.Visible || c.deniedBy(deny) {
			continue
		}
		if containsAny(c.Text, phrases) {
			return candidate{index: c.Index, heuristic: "text"}, true
		}
	}
	for _, c := range controls {
		if !c.Visible || c.deniedBy(deny) {
			continue
		}
		if c.attrsMatch(attrTerms) {
			return candidate{index: c.Index, heuristic: "attr"}, true
		}
	}
	return candidate{}, false
}

// pickSubmit prefers a genuine submit control before falling back to
// the text/attribute chain.
func pickSubmit(controls []controlInfo, cfg Config) (candidate, bool) {
	for _, c := range controls {
		if !c.Visible || c.deniedBy(cfg.DenyTerms) {
			continue
		}
		if strings.EqualFold(c.Type, "submit") {
			return candidate{index: c.Index, heuristic: "type=submit"}, true
		}
	}
	return pickControl(controls, cfg.SubmitPhrases, cfg.SubmitAttrTerms, cfg.DenyTerms)
}
