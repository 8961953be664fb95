// Package ast defines the abstract syntax tree for RCL (Rule Catalog Language)
// documents.
//
// An RCL document describes the behavioral rule catalog of a conversational
// agent: a flat list of rules, each belonging to one of four categories
// (ALWAYS, NEVER, IF, SITUATIONAL), with trigger conditions for IF rules and
// soft cues for SITUATIONAL rules.
//
// The AST is produced by the parser package and consumed by the validator and
// the rule engine. All nodes carry source locations for error reporting.
package ast
