package parser

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"mercator-hq/warden/pkg/policy/document"
	"mercator-hq/warden/pkg/policy/model"
)

// ResourceGroupsKey is the reserved top-level key holding the group table.
const ResourceGroupsKey = "resourceGroups"

// IssueKind classifies a parse diagnostic.
type IssueKind string

const (
	// IssueInvalidDomain is reported when a domain entry is not an object.
	IssueInvalidDomain IssueKind = "invalid_domain"

	// IssueInvalidRule is reported when a category rule has the wrong shape.
	IssueInvalidRule IssueKind = "invalid_rule"

	// IssueUnknownAction is reported for actions the engine does not know.
	// The rule is kept.
	IssueUnknownAction IssueKind = "unknown_action"

	// IssueInvalidGroup is reported when a group entry has the wrong shape.
	IssueInvalidGroup IssueKind = "invalid_group"

	// IssueDanglingMember is reported for group members with no policy entry.
	// The member is kept.
	IssueDanglingMember IssueKind = "dangling_member"

	// IssueDanglingGroupRef is reported when a rule names a missing group.
	IssueDanglingGroupRef IssueKind = "dangling_group_ref"

	// IssueSharedMember is reported when a domain belongs to several groups.
	IssueSharedMember IssueKind = "shared_member"
)

// Issue is a non-fatal problem found while parsing.
type Issue struct {
	Kind     IssueKind
	Domain   string
	Category string
	Group    string
	Message  string
}

// String returns a human-readable description of the issue.
func (i Issue) String() string {
	var parts []string
	if i.Group != "" {
		parts = append(parts, "group="+i.Group)
	}
	if i.Domain != "" {
		parts = append(parts, "domain="+i.Domain)
	}
	if i.Category != "" {
		parts = append(parts, "category="+i.Category)
	}
	return fmt.Sprintf("%s [%s]: %s", i.Kind, strings.Join(parts, " "), i.Message)
}

// Result is the outcome of a parse.
type Result struct {
	Summary *model.PolicySummary
	Issues  []Issue
}

// Parser turns merged policy documents into policy summaries.
// It is safe for concurrent use.
type Parser struct {
	validate *validator.Validate
}

// New creates a parser.
func New() *Parser {
	return &Parser{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Parse normalizes doc into a PolicySummary. It never fails: entries with an
// unexpected shape are dropped and reported in Result.Issues. A nil or
// unusable document yields an empty summary.
func (p *Parser) Parse(doc *document.Object) Result {
	var issues []Issue
	policy := model.PolicyConfiguration{}
	groups := map[string]model.ResourceGroup{}

	if doc == nil {
		return Result{Summary: model.NewPolicySummary(policy, groups)}
	}

	for pair := doc.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == ResourceGroupsKey {
			issues = append(issues, p.parseGroups(pair.Value, groups)...)
			continue
		}

		domain := NormalizeHost(pair.Key)
		if domain == "" {
			issues = append(issues, Issue{Kind: IssueInvalidDomain, Domain: pair.Key, Message: "empty domain key"})
			continue
		}

		categories, ok := pair.Value.(*document.Object)
		if !ok {
			issues = append(issues, Issue{
				Kind:    IssueInvalidDomain,
				Domain:  domain,
				Message: fmt.Sprintf("expected object of categories, got %s", kindOf(pair.Value)),
			})
			continue
		}

		rules, ruleIssues := p.parseRules(domain, categories, policy[domain])
		issues = append(issues, ruleIssues...)
		if len(rules) > 0 {
			policy[domain] = rules
		}
	}

	summary := model.NewPolicySummary(policy, groups)
	issues = append(issues, crossCheck(summary)...)

	return Result{Summary: summary, Issues: issues}
}

// parseRules decodes the category rules of one domain. Keys that only differ
// by case collapse onto the same domain; later categories are appended.
func (p *Parser) parseRules(domain string, categories *document.Object, existing model.DomainRules) (model.DomainRules, []Issue) {
	var issues []Issue
	rules := existing

	for pair := categories.Oldest(); pair != nil; pair = pair.Next() {
		category := strings.TrimSpace(pair.Key)
		if category == "" {
			issues = append(issues, Issue{Kind: IssueInvalidRule, Domain: domain, Message: "empty category key"})
			continue
		}

		msg, err := p.decodeRule(pair.Value)
		if err != nil {
			issues = append(issues, Issue{
				Kind:     IssueInvalidRule,
				Domain:   domain,
				Category: category,
				Message:  err.Error(),
			})
			continue
		}

		if !msg.Action.IsKnown() {
			issues = append(issues, Issue{
				Kind:     IssueUnknownAction,
				Domain:   domain,
				Category: category,
				Message:  fmt.Sprintf("action %q is not recognised, passing through", msg.Action),
			})
		}

		replaced := false
		for i := range rules {
			if rules[i].Category == category {
				rules[i].Rule = msg
				replaced = true
				break
			}
		}
		if !replaced {
			rules = append(rules, model.CategoryRule{Category: category, Rule: msg})
		}
	}

	return rules, issues
}

func (p *Parser) decodeRule(v any) (model.PolicyMessage, error) {
	var msg model.PolicyMessage

	obj, ok := v.(*document.Object)
	if !ok {
		return msg, fmt.Errorf("expected rule object, got %s", kindOf(v))
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return msg, fmt.Errorf("failed to encode rule: %w", err)
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return msg, fmt.Errorf("failed to decode rule: %w", err)
	}

	msg.Action = model.Action(strings.ToLower(strings.TrimSpace(string(msg.Action))))
	msg.ResourceGroup = strings.TrimSpace(msg.ResourceGroup)

	if err := p.validate.Struct(msg); err != nil {
		return msg, fmt.Errorf("invalid rule: %w", err)
	}

	return msg, nil
}

func (p *Parser) parseGroups(v any, groups map[string]model.ResourceGroup) []Issue {
	var issues []Issue

	table, ok := v.(*document.Object)
	if !ok {
		return []Issue{{Kind: IssueInvalidGroup, Message: fmt.Sprintf("expected object of groups, got %s", kindOf(v))}}
	}

	for pair := table.Oldest(); pair != nil; pair = pair.Next() {
		key := strings.TrimSpace(pair.Key)
		entry, ok := pair.Value.(*document.Object)
		if key == "" || !ok {
			issues = append(issues, Issue{Kind: IssueInvalidGroup, Group: pair.Key, Message: "expected group object with a key"})
			continue
		}

		var group model.ResourceGroup
		if desc, ok := entry.Get("description"); ok {
			if s, ok := desc.(string); ok {
				group.Description = s
			}
		}

		rawMembers, _ := entry.Get("members")
		list, ok := rawMembers.([]any)
		if !ok {
			issues = append(issues, Issue{Kind: IssueInvalidGroup, Group: key, Message: "members must be a list"})
			continue
		}

		seen := make(map[string]bool, len(list))
		for _, m := range list {
			s, ok := m.(string)
			host := NormalizeHost(s)
			if !ok || host == "" {
				issues = append(issues, Issue{Kind: IssueInvalidGroup, Group: key, Message: fmt.Sprintf("dropping member %v", m)})
				continue
			}
			if seen[host] {
				continue
			}
			seen[host] = true
			group.Members = append(group.Members, host)
		}

		groups[key] = group
	}

	return issues
}

// crossCheck reports group members without policy, rules referencing missing
// groups and domains claimed by more than one group.
func crossCheck(s *model.PolicySummary) []Issue {
	var issues []Issue

	keys := make([]string, 0, len(s.ResourceGroups))
	for k := range s.ResourceGroups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	owner := make(map[string]string)
	for _, key := range keys {
		for _, m := range s.ResourceGroups[key].Members {
			if _, ok := s.Policy[m]; !ok {
				issues = append(issues, Issue{
					Kind:    IssueDanglingMember,
					Group:   key,
					Domain:  m,
					Message: "member has no policy entry",
				})
			}
			if first, ok := owner[m]; ok {
				issues = append(issues, Issue{
					Kind:    IssueSharedMember,
					Group:   key,
					Domain:  m,
					Message: fmt.Sprintf("domain already belongs to group %q, which takes precedence", first),
				})
				continue
			}
			owner[m] = key
		}
	}

	domains := make([]string, 0, len(s.Policy))
	for d := range s.Policy {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	for _, d := range domains {
		for _, r := range s.Policy[d] {
			if r.Rule.ResourceGroup == "" {
				continue
			}
			if _, ok := s.ResourceGroups[r.Rule.ResourceGroup]; !ok {
				issues = append(issues, Issue{
					Kind:     IssueDanglingGroupRef,
					Domain:   d,
					Category: r.Category,
					Group:    r.Rule.ResourceGroup,
					Message:  "rule references an unknown resource group",
				})
			}
		}
	}

	return issues
}

// NormalizeHost lower-cases a host and trims whitespace and a trailing dot.
func NormalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.TrimSuffix(h, ".")
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case *document.Object:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}
