package model

import (
	"encoding/json"
	"strings"
)

// Action is the kind of response a policy rule asks for.
// The set is open: unknown actions are carried through to the UI untouched.
type Action string

const (
	// ActionAllow explicitly allows the navigation.
	ActionAllow Action = "allow"

	// ActionWarn shows an in-page warning banner.
	ActionWarn Action = "warn"

	// ActionBlockPage redirects the tab to the local block page.
	ActionBlockPage Action = "block_page"

	// ActionDisclaimer shows a disclaimer the user has to accept.
	ActionDisclaimer Action = "disclaimer"
)

// IsKnown reports whether the action is one the engine understands.
func (a Action) IsKnown() bool {
	switch a {
	case ActionAllow, ActionWarn, ActionBlockPage, ActionDisclaimer:
		return true
	}
	return false
}

// IsBlocking reports whether the action prevents the page from being shown.
func (a Action) IsBlocking() bool {
	return a == ActionBlockPage
}

// Suppressible reports whether a sticky cancellation can suppress the action.
func (a Action) Suppressible() bool {
	return a == ActionBlockPage || a == ActionWarn
}

// Conditions narrows a rule to a subset of URLs on its domain.
// Empty lists match everything.
type Conditions struct {
	// Schemes limits the rule to the given URL schemes (e.g. "https").
	Schemes []string `json:"schemes,omitempty" validate:"omitempty,dive,required"`

	// PathPrefixes limits the rule to paths starting with one of the prefixes.
	PathPrefixes []string `json:"pathPrefixes,omitempty" validate:"omitempty,dive,startswith=/"`
}

// Matches reports whether scheme and path satisfy the conditions.
func (c *Conditions) Matches(scheme, path string) bool {
	if c == nil {
		return true
	}
	if len(c.Schemes) > 0 {
		ok := false
		for _, s := range c.Schemes {
			if strings.EqualFold(s, scheme) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(c.PathPrefixes) > 0 {
		if path == "" {
			path = "/"
		}
		for _, p := range c.PathPrefixes {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}
	return true
}

// DurationHints tells the UI how long a grant should last, in seconds.
type DurationHints struct {
	DisclaimerSeconds int64 `json:"disclaimerSeconds,omitempty" validate:"gte=0"`
	StickySeconds     int64 `json:"stickySeconds,omitempty" validate:"gte=0"`
}

// PolicyMessage is a single rule for a (domain, category) pair.
// It is immutable once parsed.
type PolicyMessage struct {
	// Action is what the rule asks for.
	Action Action `json:"action" validate:"required,max=64"`

	// Message is shown to the user by the UI layer.
	Message string `json:"message" validate:"max=4096"`

	// RequiresDisclaimer marks the rule as suppressible by a disclaimer
	// acceptance regardless of its action.
	RequiresDisclaimer bool `json:"requiresDisclaimer,omitempty"`

	// ResourceGroup explicitly names the group the rule belongs to.
	ResourceGroup string `json:"resourceGroup,omitempty" validate:"max=256"`

	// Conditions optionally narrows the rule.
	Conditions *Conditions `json:"conditions,omitempty" validate:"omitempty"`

	// DurationHints are passed through to the UI.
	DurationHints *DurationHints `json:"durationHints,omitempty" validate:"omitempty"`
}

// NeedsDisclaimer reports whether a disclaimer acceptance suppresses the rule.
func (m PolicyMessage) NeedsDisclaimer() bool {
	return m.RequiresDisclaimer || m.Action == ActionDisclaimer
}

// CategoryRule binds a category key to its rule.
type CategoryRule struct {
	Category string        `json:"category"`
	Rule     PolicyMessage `json:"rule"`
}

// DomainRules are the category rules of a domain in document order.
type DomainRules []CategoryRule

// Get returns the rule for a category.
func (d DomainRules) Get(category string) (PolicyMessage, bool) {
	for _, r := range d {
		if r.Category == category {
			return r.Rule, true
		}
	}
	return PolicyMessage{}, false
}

// PolicyConfiguration maps a domain key to its category rules.
type PolicyConfiguration map[string]DomainRules

// ResourceGroup is a named set of domains sharing override scope.
type ResourceGroup struct {
	Members     []string `json:"members"`
	Description string   `json:"description,omitempty"`
}

// Has reports whether host is a member of the group.
func (g ResourceGroup) Has(host string) bool {
	for _, m := range g.Members {
		if m == host {
			return true
		}
	}
	return false
}

// PolicySummary is the atomic, swappable snapshot of policy and resource groups.
// It must never be mutated once built.
type PolicySummary struct {
	Policy         PolicyConfiguration      `json:"policy"`
	ResourceGroups map[string]ResourceGroup `json:"resourceGroups"`

	// memberIndex maps a member host to the group key that owns it.
	memberIndex map[string]string
}

// NewPolicySummary builds a summary and its membership index. When a host is
// claimed by several groups, the lexically first group key wins.
func NewPolicySummary(policy PolicyConfiguration, groups map[string]ResourceGroup) *PolicySummary {
	if policy == nil {
		policy = PolicyConfiguration{}
	}
	if groups == nil {
		groups = map[string]ResourceGroup{}
	}
	s := &PolicySummary{Policy: policy, ResourceGroups: groups}
	s.buildIndex()
	return s
}

func (s *PolicySummary) buildIndex() {
	s.memberIndex = make(map[string]string)
	for key, group := range s.ResourceGroups {
		for _, m := range group.Members {
			if current, ok := s.memberIndex[m]; ok && current < key {
				continue
			}
			s.memberIndex[m] = key
		}
	}
}

// IsEmpty reports whether the summary has no policy domains. Resource groups
// alone resolve to nothing, so a groups-only summary is empty.
func (s *PolicySummary) IsEmpty() bool {
	return s == nil || len(s.Policy) == 0
}

// Rules returns the category rules of a domain.
func (s *PolicySummary) Rules(domain string) (DomainRules, bool) {
	if s == nil {
		return nil, false
	}
	rules, ok := s.Policy[domain]
	return rules, ok
}

// GroupFor returns the group key owning host.
func (s *PolicySummary) GroupFor(host string) (string, bool) {
	if s == nil {
		return "", false
	}
	if s.memberIndex == nil {
		// Built as a literal; scan without mutating the snapshot.
		found := ""
		for key, group := range s.ResourceGroups {
			if group.Has(host) && (found == "" || key < found) {
				found = key
			}
		}
		return found, found != ""
	}
	key, ok := s.memberIndex[host]
	return key, ok
}

// UnmarshalJSON decodes a persisted summary and rebuilds its membership index.
func (s *PolicySummary) UnmarshalJSON(data []byte) error {
	type wire PolicySummary
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = *NewPolicySummary(w.Policy, w.ResourceGroups)
	return nil
}

// Group returns the group with the given key.
func (s *PolicySummary) Group(key string) (ResourceGroup, bool) {
	if s == nil {
		return ResourceGroup{}, false
	}
	g, ok := s.ResourceGroups[key]
	return g, ok
}

// PolicyAction is a single evaluation result.
type PolicyAction struct {
	Category            string         `json:"category"`
	Action              Action         `json:"action"`
	Message             string         `json:"message"`
	SourceResourceGroup string         `json:"sourceResourceGroup,omitempty"`
	DurationHints       *DurationHints `json:"durationHints,omitempty"`
}

// HasBlock reports whether any action in the list blocks the page.
func HasBlock(actions []PolicyAction) bool {
	for _, a := range actions {
		if a.Action.IsBlocking() {
			return true
		}
	}
	return false
}
