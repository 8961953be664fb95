// Package errors provides rich error types for RCL parsing and validation.
//
// Errors carry a type, a source location and an optional suggestion, so the
// CLI can report catalog authoring defects the way a compiler would. Multiple
// errors are accumulated in an ErrorList instead of failing on the first.
package errors
