package parser

import (
	"gopkg.in/yaml.v3"
)

// yamlDocument is the intermediate structure for parsing YAML catalogs.
// It matches the YAML schema before transformation to AST.
type yamlDocument struct {
	RCLVersion  string     `yaml:"rcl_version"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Rules       []yamlRule `yaml:"rules"`
}

// yamlRule is the intermediate structure for a single rule entry.
// Condition and cues are decoded as raw YAML nodes so the builder can keep
// line numbers while transforming them into typed AST nodes.
type yamlRule struct {
	ID            string    `yaml:"id"`
	Category      string    `yaml:"category"`
	Description   string    `yaml:"description"`
	Action        string    `yaml:"action"`
	Condition     yaml.Node `yaml:"condition"`
	Cues          yaml.Node `yaml:"cues"`
	ConflictsWith []string  `yaml:"conflicts_with"`

	node *yaml.Node // Original rule node for line numbers
}

// parseYAMLBytes parses catalog YAML into the intermediate structure.
// Rule nodes are re-attached after decoding so locations survive.
func parseYAMLBytes(data []byte) (*yamlDocument, *yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, err
	}

	var doc yamlDocument
	if err := root.Decode(&doc); err != nil {
		return nil, nil, err
	}

	// Attach the original sequence entries to the decoded rules.
	if seq := findMappingValue(&root, "rules"); seq != nil && seq.Kind == yaml.SequenceNode {
		for i := range doc.Rules {
			if i < len(seq.Content) {
				doc.Rules[i].node = seq.Content[i]
			}
		}
	}

	return &doc, &root, nil
}

// findMappingValue returns the value node for a key in the document's
// top-level mapping, or nil if absent.
func findMappingValue(root *yaml.Node, key string) *yaml.Node {
	node := root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
