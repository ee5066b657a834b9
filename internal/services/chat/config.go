// File: internal/services/chat/config.go
package chat

import "fmt"

const (
	PolicyMask    = "mask"
	PolicySurface = "surface"
)

type Config struct {
	// FailurePolicy decides what happens when the completion backend fails:
	// "mask" stores FallbackText as the reply, "surface" returns an error.
	FailurePolicy string

	// TitleLength is how many characters of the first message become the title.
	TitleLength int
}

func (c *Config) Validate() error {
	if c.FailurePolicy != PolicyMask && c.FailurePolicy != PolicySurface {
		return fmt.Errorf("failure policy must be %q or %q", PolicyMask, PolicySurface)
	}
	if c.TitleLength <= 0 {
		return fmt.Errorf("title length must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		FailurePolicy: PolicyMask,
		TitleLength:   30,
	}
}
