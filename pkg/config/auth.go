package config

import (
	"fmt"
	"strings"
	"time"
)

type AuthConfig struct {
	Secret   string        `koanf:"secret"`
	Issuer   string        `koanf:"issuer"`
	TokenTTL time.Duration `koanf:"tokenttl"`
}

// String returns a string representation of the auth configuration with the secret masked.
func (c *AuthConfig) String() string {
	secret := "<not configured>"
	if c.Secret != "" {
		secret = "****"
	}
	var b strings.Builder
	b.WriteString("\n--- Auth ---\n")
	b.WriteString(fmt.Sprintf("  secret: %s\n", secret))
	b.WriteString(fmt.Sprintf("  issuer: %s\n", c.Issuer))
	b.WriteString(fmt.Sprintf("  tokenttl: %s\n", c.TokenTTL))
	return b.String()
}

func (c *AuthConfig) Validate() error {
	if len(c.Secret) < 32 {
		return fmt.Errorf("auth secret must be at least 32 characters")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("auth token ttl is not configured")
	}
	return nil
}
