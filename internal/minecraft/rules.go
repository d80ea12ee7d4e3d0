package minecraft

import "github.com/TheDevelo/minelaunch/internal/platform"

// Rule actions.
const (
	ActionAllow    = "allow"
	ActionDisallow = "disallow"
)

// Rule is an allow/disallow clause gating a library or an argument.
type Rule struct {
	Action   string          `json:"action"`
	OS       *OSRule         `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

// OSRule constrains a rule to an OS name and/or architecture. Version is a
// regular expression over the OS version and is not evaluated.
type OSRule struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	Arch    string `json:"arch,omitempty"`
}

// Matches reports whether the constraint holds on p. Absent fields match.
func (o *OSRule) Matches(p platform.Platform) bool {
	if o.Name != "" && o.Name != p.GameOS() {
		return false
	}
	if o.Arch != "" && o.Arch != p.Arch {
		return false
	}
	return true
}

// RulesSatisfied evaluates rules in order against p. An empty list allows.
//
// Any rule declaring features fails the whole list: feature flags such as
// is_demo_user or has_custom_resolution are never active in this launcher,
// so features is accepted for future use but not consulted.
func RulesSatisfied(rules []Rule, p platform.Platform, features map[string]bool) bool {
	_ = features

	for _, rule := range rules {
		var allow bool
		switch rule.Action {
		case ActionAllow:
			allow = true
		case ActionDisallow:
			allow = false
		default:
			return false
		}

		matched := rule.OS == nil || rule.OS.Matches(p)
		if matched != allow {
			return false
		}

		if rule.Features != nil {
			return false
		}
	}

	return true
}
