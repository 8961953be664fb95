// Package source provides catalog sources for the rule engine.
//
// A catalog source loads the RCL catalog document and watches it for changes.
// The file source reads a single YAML file or a directory of YAML files and
// uses fsnotify to report edits, so a catalog can be re-authored without
// restarting the agent (reloads never touch in-flight turns). The in-memory
// source is for tests.
package source
