// Package config defines the configuration model for the Atena agent
// and its loaders. Configuration is read from a YAML file, defaults are
// applied for omitted fields, and ATENA_* environment variables can
// override individual values.
//
// The loading sequence is:
//  1. Parse YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate the final configuration
package config
