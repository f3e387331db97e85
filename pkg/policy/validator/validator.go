package validator

import (
	"net/url"
	"strings"
	"time"

	"mercator-hq/warden/pkg/policy/model"
	"mercator-hq/warden/pkg/policy/override"
	"mercator-hq/warden/pkg/policy/parser"
)

// BlankURL is never evaluated.
const BlankURL = "about:blank"

// EngineCategory is the category of the action produced when evaluation
// cannot run and the fail mode is closed.
const EngineCategory = "policy_engine"

// FailMode selects what evaluation produces when it cannot run.
type FailMode string

const (
	// FailOpen produces no actions on internal errors. This is the default:
	// availability wins over strictness.
	FailOpen FailMode = "open"

	// FailClosed produces a single block_page action on internal errors.
	FailClosed FailMode = "closed"
)

// Options controls a single evaluation.
type Options struct {
	// Now is the time grants are checked against. Zero means time.Now().
	Now time.Time

	// FailMode selects the behavior on malformed URLs or a missing configuration.
	FailMode FailMode
}

// Evaluate resolves the actions that apply to rawURL.
//
// It is pure: it reads summary and the override stores and never mutates
// anything. Actions are returned in the category order of the matching
// domain. The result is never nil.
func Evaluate(rawURL string, summary *model.PolicySummary, disclaimers, sticky override.Reader, opts Options) []model.PolicyAction {
	actions := []model.PolicyAction{}

	if strings.TrimSpace(rawURL) == BlankURL {
		return actions
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	target, host, ok := resolveHost(rawURL)
	if !ok {
		return failure(opts.FailMode, "navigation target could not be parsed")
	}

	if summary == nil {
		return failure(opts.FailMode, "no policy configuration is active")
	}

	rules, ok := summary.Rules(host)
	if !ok {
		return actions
	}

	for _, cr := range rules {
		rule := cr.Rule
		if !rule.Conditions.Matches(target.Scheme, target.EscapedPath()) {
			continue
		}

		groupKey, group, hasGroup := resolveGroup(summary, host, rule)
		scope := []string{host}
		if hasGroup {
			scope = append(scope, group.Members...)
		}

		if rule.NeedsDisclaimer() && grantedAny(disclaimers, scope, now) {
			continue
		}
		if rule.Action.Suppressible() && grantedAny(sticky, scope, now) {
			continue
		}

		action := model.PolicyAction{
			Category:      cr.Category,
			Action:        rule.Action,
			Message:       rule.Message,
			DurationHints: rule.DurationHints,
		}
		if hasGroup {
			action.SourceResourceGroup = groupKey
		}
		actions = append(actions, action)
	}

	return actions
}

// Hostname extracts the normalized host from rawURL.
func Hostname(rawURL string) (string, bool) {
	_, host, ok := resolveHost(rawURL)
	return host, ok
}

func resolveHost(rawURL string) (*url.URL, string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, "", false
	}
	host := parser.NormalizeHost(u.Hostname())
	if host == "" {
		return nil, "", false
	}
	return u, host, true
}

// resolveGroup prefers an explicit group reference on the rule. A reference
// to a missing group counts as no group at all.
func resolveGroup(s *model.PolicySummary, host string, rule model.PolicyMessage) (string, model.ResourceGroup, bool) {
	if rule.ResourceGroup != "" {
		g, ok := s.Group(rule.ResourceGroup)
		return rule.ResourceGroup, g, ok
	}
	key, ok := s.GroupFor(host)
	if !ok {
		return "", model.ResourceGroup{}, false
	}
	g, ok := s.Group(key)
	return key, g, ok
}

func grantedAny(store override.Reader, scope []string, now time.Time) bool {
	if store == nil {
		return false
	}
	for _, h := range scope {
		if store.Active(h, now) {
			return true
		}
	}
	return false
}

func failure(mode FailMode, reason string) []model.PolicyAction {
	if mode != FailClosed {
		return []model.PolicyAction{}
	}
	return []model.PolicyAction{{
		Category: EngineCategory,
		Action:   model.ActionBlockPage,
		Message:  reason,
	}}
}
