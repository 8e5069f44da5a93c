package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "SAITEN"

// Load reads configuration from an optional YAML file and the environment.
// Environment variables take precedence over file values and use the
// SAITEN_ prefix with underscores for nesting (e.g. SAITEN_SERVER_PORT).
func Load(configFile string) (*Config, error) {
	// A .env file beside the binary is loaded first so that env overrides
	// behave the same in development and deployment.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindPrefixedEnv(v)

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// bindPrefixedEnv force-binds every SAITEN_-prefixed environment variable
// into viper. AutomaticEnv alone only resolves keys viper already knows
// about, so env-only overrides (an API key with no file entry, say) would be
// silently dropped without the explicit Set calls.
func bindPrefixedEnv(v *viper.Viper) {
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, envPrefix+"_") {
			continue
		}
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix+"_"))

		// A key like SERVER_MAX_UPLOAD_MB may nest at any underscore, so
		// set every section/rest split; keys that match no config field
		// are ignored at unmarshal time.
		v.Set(strings.ReplaceAll(key, "_", "."), value)
		parts := strings.Split(key, "_")
		for i := 1; i < len(parts); i++ {
			v.Set(strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"), value)
		}
	}
}

// findConfigFile searches for config.yml in standard locations.
func findConfigFile() string {
	searchPaths := []string{
		"./cmd/saiten/config.yml",
		"./config/config.yml",
		"./config.yml",
	}
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
