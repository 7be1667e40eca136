package config

import (
	"fmt"
	"strings"
	"time"
)

type RedisConfig struct {
	Addr      string        `koanf:"addr"`
	Password  string        `koanf:"password"`
	DB        int           `koanf:"db"`
	KeyPrefix string        `koanf:"keyprefix"`
	Timeout   time.Duration `koanf:"timeout"`
}

// String returns a string representation of the Redis configuration.
func (c *RedisConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Redis ---\n")
	b.WriteString(fmt.Sprintf("  addr: %s\n", c.Addr))
	b.WriteString(fmt.Sprintf("  db: %d\n", c.DB))
	b.WriteString(fmt.Sprintf("  keyprefix: %s\n", c.KeyPrefix))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *RedisConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("redis address is not configured")
	}
	if c.DB < 0 {
		return fmt.Errorf("invalid redis db index: %d", c.DB)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("redis dial timeout is not configured")
	}
	return nil
}
