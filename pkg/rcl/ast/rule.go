package ast

// Category classifies a rule's behavioral tier.
// The category is fixed at definition time and determines precedence:
// ALWAYS and NEVER rules are unconditional, IF rules trigger on structured
// conditions, SITUATIONAL rules are advisory and graded.
type Category string

const (
	CategoryAlways      Category = "ALWAYS"      // Mandatory every turn
	CategoryNever       Category = "NEVER"       // Standing prohibition
	CategoryIf          Category = "IF"          // Conditional trigger
	CategorySituational Category = "SITUATIONAL" // Soft, advisory
)

// Categories lists all categories in their fixed precedence order.
// This order is also the governing-set output order.
var Categories = []Category{CategoryAlways, CategoryNever, CategoryIf, CategorySituational}

// IsValid returns true if c is one of the four known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryAlways, CategoryNever, CategoryIf, CategorySituational:
		return true
	}
	return false
}

// Order returns the category's precedence tier (lower = earlier in output).
func (c Category) Order() int {
	for i, cat := range Categories {
		if c == cat {
			return i
		}
	}
	return len(Categories)
}

// Rule represents a single behavioral rule in the catalog.
// A rule's identity and category are immutable once loaded.
type Rule struct {
	ID          string   // Unique id token (e.g. "AL01", "N06", "IF02", "S04")
	Category    Category // Behavioral tier
	Description string   // Human-readable summary
	Action      string   // Behavioral directive passed to the response generator

	// Condition is the trigger predicate for IF rules.
	// ALWAYS and NEVER rules have no condition (their condition is the
	// universal context); SITUATIONAL rules use Cues instead.
	Condition *ConditionNode

	// Cues are the soft signals scored for SITUATIONAL rules.
	Cues []*Cue

	// ConflictsWith links a NEVER rule to ids of ALWAYS/IF rules whose
	// actions it directly contradicts. Conflicts are declared explicitly,
	// never inferred from action text.
	ConflictsWith []string

	Location Location // Source location
}

// HasCondition returns true if the rule has a trigger condition.
func (r *Rule) HasCondition() bool {
	return r.Condition != nil
}

// HasCues returns true if the rule declares at least one soft cue.
func (r *Rule) HasCues() bool {
	return len(r.Cues) > 0
}

// ConflictsWithID returns true if the rule declares a conflict link to id.
func (r *Rule) ConflictsWithID(id string) bool {
	for _, other := range r.ConflictsWith {
		if other == id {
			return true
		}
	}
	return false
}

// Document is the root AST node for an RCL catalog file.
type Document struct {
	CatalogVersion string  // RCL schema version (e.g. "1.0")
	Name           string  // Catalog name (kebab-case)
	Description    string  // Human-readable description
	Rules          []*Rule // Rules in declaration order

	SourceFile string   // Path to the catalog file
	Location   Location // Source location
}

// GetRule returns the rule with the given id, or nil if not found.
func (d *Document) GetRule(id string) *Rule {
	for _, rule := range d.Rules {
		if rule.ID == id {
			return rule
		}
	}
	return nil
}

// RulesByCategory returns all rules of the given category in declaration order.
func (d *Document) RulesByCategory(category Category) []*Rule {
	var result []*Rule
	for _, rule := range d.Rules {
		if rule.Category == category {
			result = append(result, rule)
		}
	}
	return result
}

// RuleCount returns the total number of rules in the document.
func (d *Document) RuleCount() int {
	return len(d.Rules)
}
