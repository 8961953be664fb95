package engine

import (
	"expandev/atena/pkg/rcl/ast"
	rclErrors "expandev/atena/pkg/rcl/errors"
	"expandev/atena/pkg/rcl/validator"
)

// Catalog is an immutable, loaded-once registry of rule definitions.
//
// A Catalog is frozen at construction: rules cannot be added, removed, or
// mutated afterwards. Reloading produces a new Catalog value; in-flight turns
// keep evaluating against the frozen reference they started with.
type Catalog struct {
	doc  *ast.Document
	byID map[string]*ast.Rule

	// Per-category rule slices in declaration order. Precomputed because the
	// resolver walks them every turn.
	byCategory map[ast.Category][]*ast.Rule
}

// NewCatalog validates a parsed catalog document and freezes it into a
// Catalog. It fails with DuplicateIDError if two rules share an id, or
// MalformedRuleError for any other validation defect.
func NewCatalog(doc *ast.Document) (*Catalog, error) {
	if err := validator.NewValidator().Validate(doc); err != nil {
		return nil, classifyLoadError(err)
	}

	c := &Catalog{
		doc:        doc,
		byID:       make(map[string]*ast.Rule, len(doc.Rules)),
		byCategory: make(map[ast.Category][]*ast.Rule, len(ast.Categories)),
	}
	for _, rule := range doc.Rules {
		c.byID[rule.ID] = rule
		c.byCategory[rule.Category] = append(c.byCategory[rule.Category], rule)
	}

	return c, nil
}

// classifyLoadError maps validator output onto the load-time error taxonomy.
func classifyLoadError(err error) error {
	errList, ok := err.(*rclErrors.ErrorList)
	if !ok {
		return &MalformedRuleError{Cause: err}
	}

	if dup := errList.FirstOfType(rclErrors.ErrorTypeDuplicate); dup != nil {
		return &DuplicateIDError{ID: dup.RuleID, Cause: errList}
	}

	ruleID := ""
	for _, e := range errList.Errors {
		if e.RuleID != "" {
			ruleID = e.RuleID
			break
		}
	}
	return &MalformedRuleError{RuleID: ruleID, Cause: errList}
}

// Lookup returns the rule with the given id.
// It fails with UnknownRuleError if the id is absent.
func (c *Catalog) Lookup(id string) (*ast.Rule, error) {
	rule, ok := c.byID[id]
	if !ok {
		return nil, &UnknownRuleError{ID: id}
	}
	return rule, nil
}

// Has returns true if the catalog contains a rule with the given id.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Rules returns all rules in declaration order.
// The returned slice is a copy; the catalog itself stays frozen.
func (c *Catalog) Rules() []*ast.Rule {
	rules := make([]*ast.Rule, len(c.doc.Rules))
	copy(rules, c.doc.Rules)
	return rules
}

// RulesByCategory returns the rules of one category in declaration order.
func (c *Catalog) RulesByCategory(category ast.Category) []*ast.Rule {
	rules := make([]*ast.Rule, len(c.byCategory[category]))
	copy(rules, c.byCategory[category])
	return rules
}

// Name returns the catalog name.
func (c *Catalog) Name() string {
	return c.doc.Name
}

// Version returns the catalog schema version.
func (c *Catalog) Version() string {
	return c.doc.CatalogVersion
}

// RuleCount returns the total number of rules.
func (c *Catalog) RuleCount() int {
	return len(c.doc.Rules)
}
