package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"expandev/atena/pkg/rcl/ast"
	rclErrors "expandev/atena/pkg/rcl/errors"
)

// builder transforms the intermediate YAML structure into the AST.
// Structural problems are accumulated in an error list rather than failing on
// the first defect, so catalog authors see every error at once.
type builder struct {
	sourceFile string
	maxDepth   int
	errors     *rclErrors.ErrorList
}

func newBuilder(sourceFile string, maxDepth int) *builder {
	return &builder{
		sourceFile: sourceFile,
		maxDepth:   maxDepth,
		errors:     rclErrors.NewErrorList(),
	}
}

// buildDocument builds the AST document from the intermediate structure.
func (b *builder) buildDocument(y *yamlDocument) (*ast.Document, error) {
	doc := &ast.Document{
		CatalogVersion: y.RCLVersion,
		Name:           y.Name,
		Description:    y.Description,
		SourceFile:     b.sourceFile,
		Location:       ast.Location{File: b.sourceFile, Line: 1},
	}

	for i := range y.Rules {
		rule := b.buildRule(&y.Rules[i])
		if rule != nil {
			doc.Rules = append(doc.Rules, rule)
		}
	}

	return doc, b.errors.ToError()
}

// buildRule builds a single rule. Returns nil if the rule is too broken to
// represent; the defect is recorded in the error list either way.
func (b *builder) buildRule(y *yamlRule) *ast.Rule {
	loc := b.nodeLocation(y.node)

	rule := &ast.Rule{
		ID:            y.ID,
		Category:      ast.Category(y.Category),
		Description:   y.Description,
		Action:        y.Action,
		ConflictsWith: y.ConflictsWith,
		Location:      loc,
	}

	if y.Condition.Kind != 0 {
		cond, err := b.buildCondition(&y.Condition, 1)
		if err != nil {
			b.errors.AddError(rclErrors.ErrorTypeStructural, y.ID, err.Error(), b.nodeLocation(&y.Condition))
		} else {
			rule.Condition = cond
		}
	}

	if y.Cues.Kind != 0 {
		rule.Cues = b.buildCues(y.ID, &y.Cues)
	}

	return rule
}

// buildCondition recursively builds a condition tree from a YAML node.
// A condition is a mapping with exactly one of the keys: phrase, flag,
// topic_closed, all, any, not.
func (b *builder) buildCondition(node *yaml.Node, depth int) (*ast.ConditionNode, error) {
	if depth > b.maxDepth {
		return nil, fmt.Errorf("condition nesting exceeds maximum depth %d", b.maxDepth)
	}

	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("condition must be a mapping, got %s", yamlKindName(node.Kind))
	}

	loc := b.nodeLocation(node)
	cond := &ast.ConditionNode{Location: loc}

	var value string // Expected flag value, attached after key dispatch
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]

		switch key {
		case "phrase":
			if cond.Type != "" {
				return nil, fmt.Errorf("condition has multiple kinds (%s and phrase)", cond.Type)
			}
			cond.Type = ast.ConditionTypePhrase
			cond.Phrase = val.Value

		case "flag":
			if cond.Type != "" {
				return nil, fmt.Errorf("condition has multiple kinds (%s and flag)", cond.Type)
			}
			cond.Type = ast.ConditionTypeFlag
			cond.Flag = val.Value

		case "value":
			value = val.Value

		case "topic_closed":
			if cond.Type != "" {
				return nil, fmt.Errorf("condition has multiple kinds (%s and topic_closed)", cond.Type)
			}
			cond.Type = ast.ConditionTypeTopicClosed
			// "current" refers to the conversation's current topic.
			if val.Value != "current" {
				cond.Topic = val.Value
			}

		case "all", "any", "not":
			if cond.Type != "" {
				return nil, fmt.Errorf("condition has multiple kinds (%s and %s)", cond.Type, key)
			}
			cond.Type = ast.ConditionType(key)
			children, err := b.buildChildren(val, depth+1)
			if err != nil {
				return nil, err
			}
			if len(children) == 0 {
				return nil, fmt.Errorf("%q condition requires at least one sub-condition", key)
			}
			cond.Children = children

		default:
			return nil, fmt.Errorf("unknown condition key %q", key)
		}
	}

	if cond.Type == "" {
		return nil, fmt.Errorf("condition must declare one of: phrase, flag, topic_closed, all, any, not")
	}
	if cond.Type == ast.ConditionTypeFlag {
		cond.Value = value
	} else if value != "" {
		return nil, fmt.Errorf("\"value\" is only valid on flag conditions")
	}

	return cond, nil
}

// buildChildren builds the sub-conditions of a logical combinator.
func (b *builder) buildChildren(node *yaml.Node, depth int) ([]*ast.ConditionNode, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("combinator value must be a sequence of conditions, got %s", yamlKindName(node.Kind))
	}

	var children []*ast.ConditionNode
	for _, child := range node.Content {
		cond, err := b.buildCondition(child, depth)
		if err != nil {
			return nil, err
		}
		children = append(children, cond)
	}
	return children, nil
}

// buildCues builds the soft cues of a SITUATIONAL rule.
func (b *builder) buildCues(ruleID string, node *yaml.Node) []*ast.Cue {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.SequenceNode {
		b.errors.AddError(rclErrors.ErrorTypeStructural, ruleID,
			fmt.Sprintf("cues must be a sequence, got %s", yamlKindName(node.Kind)),
			b.nodeLocation(node))
		return nil
	}

	var cues []*ast.Cue
	for _, entry := range node.Content {
		cue, err := b.buildCue(entry)
		if err != nil {
			b.errors.AddError(rclErrors.ErrorTypeStructural, ruleID, err.Error(), b.nodeLocation(entry))
			continue
		}
		cues = append(cues, cue)
	}
	return cues
}

// buildCue builds a single cue: a mapping with either a phrase or a flag key.
func (b *builder) buildCue(node *yaml.Node) (*ast.Cue, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("cue must be a mapping, got %s", yamlKindName(node.Kind))
	}

	cue := &ast.Cue{Location: b.nodeLocation(node)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]

		switch key {
		case "phrase":
			cue.Phrase = val.Value
		case "flag":
			cue.Flag = val.Value
		case "value":
			cue.Value = val.Value
		default:
			return nil, fmt.Errorf("unknown cue key %q", key)
		}
	}

	if cue.Phrase == "" && cue.Flag == "" {
		return nil, fmt.Errorf("cue must declare a phrase or a flag")
	}
	if cue.Phrase != "" && cue.Flag != "" {
		return nil, fmt.Errorf("cue cannot declare both a phrase and a flag")
	}

	return cue, nil
}

// nodeLocation extracts the source location from a YAML node.
func (b *builder) nodeLocation(node *yaml.Node) ast.Location {
	if node == nil {
		return ast.Location{File: b.sourceFile}
	}
	return ast.Location{File: b.sourceFile, Line: node.Line, Column: node.Column}
}

// yamlKindName returns a readable name for a YAML node kind.
func yamlKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
