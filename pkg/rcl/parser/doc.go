// Package parser parses RCL catalog files into Abstract Syntax Trees.
//
// Catalogs are YAML documents. The parser preserves YAML line numbers so that
// validation errors can point at the offending rule, and enforces structural
// limits (file size, condition nesting depth) before handing the document to
// the validator.
//
// Example:
//
//	p := parser.NewParser()
//	doc, err := p.Parse("configs/rules/atena.yaml")
package parser
