package app

import (
	"strings"
)

const (
	CategoryImages    = "Images"
	CategoryVideos    = "Videos"
	CategoryDocuments = "Documents"
	CategoryOthers    = "Others"

	// TotalKey is the counter holding the number of files moved in a run.
	TotalKey = "total"
)

type ruleKind int

const (
	kindBuiltin ruleKind = iota
	kindCatchAll
	kindCustom
)

// Rule maps a category (and the folder of the same name) to the file
// extensions it collects. Extensions are lowercase and dot-prefixed.
type Rule struct {
	Name       string
	Extensions []string
	CountKey   string
	kind       ruleKind
}

func hasAnySuffix(lowerName string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(lowerName, ext) {
			return true
		}
	}
	return false
}

// Match is the outcome of classifying one file name.
type Match struct {
	Category string
	CountKey string
	Custom   bool
}

// Enabled holds the per-category toggles of a sort run. A category missing
// from the map counts as enabled.
type Enabled map[string]bool

func (e Enabled) IsEnabled(category string) bool {
	on, ok := e[category]
	return !ok || on
}

func AllEnabled() Enabled {
	return Enabled{
		CategoryImages:    true,
		CategoryVideos:    true,
		CategoryDocuments: true,
		CategoryOthers:    true,
	}
}

func builtinRules() []Rule {
	return []Rule{
		{Name: CategoryImages, CountKey: "images", Extensions: []string{".png", ".jpeg", ".jpg", ".gif"}, kind: kindBuiltin},
		{Name: CategoryVideos, CountKey: "videos", Extensions: []string{".mkv", ".mp4", ".mpeg", ".avi"}, kind: kindBuiltin},
		{Name: CategoryDocuments, CountKey: "docs", Extensions: []string{".pdf", ".docs", ".txt"}, kind: kindBuiltin},
		{Name: CategoryOthers, CountKey: "others", kind: kindCatchAll},
	}
}

// isReservedName reports whether name is the total or a built-in counter key.
// Custom rules count under their name, so the two must not meet in Counts.
func isReservedName(name string) bool {
	if name == TotalKey {
		return true
	}
	for _, r := range builtinRules() {
		if r.CountKey == name {
			return true
		}
	}
	return false
}

// RuleSet is the ordered rule table: the four built-in categories followed by
// custom rules in insertion order.
type RuleSet struct {
	builtins []Rule
	custom   []Rule
}

func NewRuleSet() *RuleSet {
	return &RuleSet{builtins: builtinRules()}
}

// Classify resolves filename to a category.
//
// Built-in categories are tried first, each gated by its toggle. Others
// catches files that match none of the other built-in extension lists, even
// when the category owning that extension is switched off. Custom rules are
// then tried in insertion order and the first one that matches replaces the
// built-in result.
func (rs *RuleSet) Classify(filename string, enabled Enabled) (Match, bool) {
	lower := strings.ToLower(filename)
	var match Match
	found := false

	for _, r := range rs.builtins {
		if !enabled.IsEnabled(r.Name) {
			continue
		}
		hit := false
		switch r.kind {
		case kindCatchAll:
			hit = !hasAnySuffix(lower, rs.builtinExtensions())
		default:
			hit = hasAnySuffix(lower, r.Extensions)
		}
		if hit {
			match = Match{Category: r.Name, CountKey: r.CountKey}
			found = true
			break
		}
	}

	for _, r := range rs.custom {
		if hasAnySuffix(lower, r.Extensions) {
			match = Match{Category: r.Name, CountKey: r.CountKey, Custom: true}
			found = true
			break
		}
	}

	return match, found
}

func (rs *RuleSet) builtinExtensions() []string {
	var exts []string
	for _, r := range rs.builtins {
		exts = append(exts, r.Extensions...)
	}
	return exts
}

// AddRule inserts a custom rule, or replaces the extensions of an existing
// custom rule with the same name while keeping its position. Invalid input
// leaves the set unchanged.
func (rs *RuleSet) AddRule(name string, extensions []string) error {
	if err := NewValidator().ValidateRule(name, extensions); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	rule := Rule{Name: name, CountKey: name, Extensions: normalizeExtensions(extensions), kind: kindCustom}

	for i := range rs.custom {
		if rs.custom[i].Name == name {
			rs.custom[i] = rule
			return nil
		}
	}
	rs.custom = append(rs.custom, rule)
	return nil
}

// RemoveRule deletes a custom rule. It reports whether a rule was removed.
func (rs *RuleSet) RemoveRule(name string) bool {
	for i := range rs.custom {
		if rs.custom[i].Name == name {
			rs.custom = append(rs.custom[:i], rs.custom[i+1:]...)
			return true
		}
	}
	return false
}

func (rs *RuleSet) CustomRules() []Rule {
	return cloneRules(rs.custom)
}

func (rs *RuleSet) Rules() []Rule {
	return append(cloneRules(rs.builtins), cloneRules(rs.custom)...)
}

// Categories lists every category name, built-ins first.
func (rs *RuleSet) Categories() []string {
	names := make([]string, 0, len(rs.builtins)+len(rs.custom))
	for _, r := range rs.Rules() {
		names = append(names, r.Name)
	}
	return names
}

// NewCounts returns zeroed counters for the total, every built-in category
// and every custom rule.
func (rs *RuleSet) NewCounts() Counts {
	counts := Counts{TotalKey: 0}
	for _, r := range rs.Rules() {
		counts[r.CountKey] = 0
	}
	return counts
}

func (rs *RuleSet) Clone() *RuleSet {
	return &RuleSet{builtins: cloneRules(rs.builtins), custom: cloneRules(rs.custom)}
}

func cloneRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		r.Extensions = append([]string(nil), r.Extensions...)
		out[i] = r
	}
	return out
}

// ParseExtensions splits a comma separated list such as "zip, .RAR" into
// normalized extensions.
func ParseExtensions(text string) []string {
	return normalizeExtensions(strings.Split(text, ","))
}

func normalizeExtensions(extensions []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}
