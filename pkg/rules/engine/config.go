package engine

import "fmt"

// Config contains configuration for the rule engine.
type Config struct {
	// SituationalBudget is the maximum number of SITUATIONAL rules included
	// per turn. Advisory guidance beyond the budget is dropped so it does
	// not dilute the response. Default: 2.
	SituationalBudget int

	// MaxRules is the maximum number of rules a catalog may declare.
	// Default: 200.
	MaxRules int

	// MaxConditionDepth is the maximum condition nesting depth accepted
	// from the parser. Default: 8.
	MaxConditionDepth int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		SituationalBudget: 2,
		MaxRules:          200,
		MaxConditionDepth: 8,
	}
}

// Validate validates the engine configuration.
func (c *Config) Validate() error {
	if c.SituationalBudget < 0 {
		return fmt.Errorf("%w: situational budget cannot be negative", ErrInvalidConfig)
	}
	if c.MaxRules <= 0 {
		return fmt.Errorf("%w: max rules must be positive", ErrInvalidConfig)
	}
	if c.MaxConditionDepth <= 0 {
		return fmt.Errorf("%w: max condition depth must be positive", ErrInvalidConfig)
	}
	return nil
}
