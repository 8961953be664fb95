// Package validator validates RCL catalog documents after parsing.
//
// Validation runs in two passes. The structural pass checks that every rule
// has the fields its category requires (id, category, action, a condition for
// IF rules, cues for SITUATIONAL rules). The semantic pass checks
// cross-rule properties: unique ids, conflict links that resolve to existing
// ALWAYS/IF rules, and the presence of at least one ALWAYS rule, which is
// what guarantees a non-empty governing set at runtime.
//
// All defects are accumulated and reported together.
package validator
