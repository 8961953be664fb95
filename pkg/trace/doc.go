// Package trace renders and verifies the applied-rules annotation.
//
// Every agent response ends with a bracketed audit block listing the ids of
// the rules that governed the turn:
//
//	[Applied Rules: AL01, N06, IF02]
//
// The annotation reproduces the governing set's order verbatim, is appended
// to the response text separated by a single newline, and can be parsed back
// for post-hoc verification that the generator respected the mandate.
package trace
