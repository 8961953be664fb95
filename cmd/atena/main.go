// Atena is a rule-governed business analysis agent.
//
// It runs interactive advisory conversations where every agent response
// is constrained by a declarative rule catalog: mandatory behaviors,
// prohibitions, conditional triggers, and situational guidance. Each
// response carries a trailing trace of the rules that governed it, and
// every turn can be recorded to an auditable evidence store.
//
// Usage:
//
//	# Start an interactive session with default configuration
//	atena run
//
//	# Start with a custom configuration file
//	atena run --config /path/to/config.yaml
//
//	# Validate a rule catalog
//	atena validate --file configs/rules/atena.yaml
//
//	# Show version information
//	atena version
package main

func main() {
	Execute()
}
