// Package configloader loads layered configuration into a validated struct.
package configloader

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Validator interface {
	Validate() error
}

const (
	defaultConfigFile = "config.yaml"
	defaultEnvFile    = ".env"
)

type options struct {
	configFile string
	envFile    string
	defaults   map[string]any
}

// Option customizes where Load looks for configuration sources.
type Option func(*options)

// WithConfigFile overrides the yaml file path.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configFile = path }
}

// WithEnvFile overrides the dotenv file path.
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

// WithDefaults seeds keys that every other source may override.
func WithDefaults(defaults map[string]any) Option {
	return func(o *options) { o.defaults = defaults }
}

// Load builds T from, in increasing priority: defaults, the yaml file, the .env file
// and process environment variables prefixed with <SERVICENAME>_.
// A missing yaml or .env file is not an error.
func Load[T Validator](serviceName string, opts ...Option) (T, error) {
	var cfg T
	o := options{configFile: defaultConfigFile, envFile: defaultEnvFile}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")
	envPrefix := fmt.Sprintf("%s_", strings.ToUpper(serviceName))

	// 0. Defaults, the lowest priority
	if len(o.defaults) > 0 {
		if err := k.Load(confmap.Provider(o.defaults, "."), nil); err != nil {
			return cfg, fmt.Errorf("error loading defaults: %w", err)
		}
	}

	// 1. Load configuration from yaml file
	if err := k.Load(file.Provider(o.configFile), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: error loading YAML config file '%s': %v", o.configFile, err)
		}
	}

	// 2. Load environment variables from .env file
	envTransformer := func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(envPrefix))
		return strings.ReplaceAll(key, "_", ".")
	}
	if envFileMap, err := godotenv.Read(o.envFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if !strings.HasPrefix(strings.ToUpper(key), envPrefix) {
				continue
			}
			envMap[envTransformer(key)] = value
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 3. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(envPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	// 4. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 5. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
