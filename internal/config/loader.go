package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/platformbuilds/search-gateway/internal/engine"
	"github.com/platformbuilds/search-gateway/internal/gatewayerr"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads path, expands ${ENV_VAR} references against the process
// environment, unmarshals the flat YAML document, applies the API_KEY
// fallback, and validates the result. A missing referenced env var or a
// schema failure is a configuration-error — the caller is expected to
// call logger.Fatal and exit non-zero, the teacher's bad-config convention.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, gatewayerr.ConfigurationError("failed to read config file "+path, err)
	}

	expanded, err := expandEnv(string(raw))
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, gatewayerr.ConfigurationError("failed to parse config YAML", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("API_KEY")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	for handle, idx := range cfg.Indexes {
		idx.Handle = handle
		cfg.Indexes[handle] = idx
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expandEnv replaces every ${ENV_VAR} in raw with its value, grounded on
// nishad-srake's os.ExpandEnv-based substitution — except a missing
// variable fails the load instead of silently expanding to "" (spec.md
// §6: "a missing variable fails startup").
func expandEnv(raw string) (string, error) {
	var missing []string
	result := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		value, ok := os.LookupEnv(name)
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", gatewayerr.ConfigurationError(fmt.Sprintf("missing required environment variable(s): %v", missing), nil)
	}
	return result, nil
}

// validate implements the configuration-error cases from spec.md §7:
// unknown engine kind, duplicate alias targets, missing env vars (checked
// above), YAML schema failures, and multi-index for Meili/Typesense.
func validate(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return gatewayerr.ConfigurationError(fmt.Sprintf("invalid port %d", cfg.Port), nil)
	}
	for handle, idx := range cfg.Indexes {
		switch idx.Kind {
		case engine.KindElastic, engine.KindOpenSearch, engine.KindMeilisearch, engine.KindTypesense:
		default:
			return gatewayerr.ConfigurationError(fmt.Sprintf("index %q: unknown engine kind %q", handle, idx.Kind), nil)
		}
		if (idx.Kind == engine.KindMeilisearch || idx.Kind == engine.KindTypesense) && len(idx.Indices) > 1 {
			return gatewayerr.ConfigurationError(fmt.Sprintf("index %q: engine %q does not support multiple index names", handle, idx.Kind), nil)
		}
		if len(idx.Indices) == 0 {
			return gatewayerr.ConfigurationError(fmt.Sprintf("index %q: at least one backing index name is required", handle), nil)
		}

		backendTargets := map[string]string{}
		for public, fc := range idx.Fields {
			if fc.Backend == "" {
				continue
			}
			if existing, ok := backendTargets[fc.Backend]; ok {
				return gatewayerr.ConfigurationError(
					fmt.Sprintf("index %q: fields %q and %q both alias to backend field %q", handle, existing, public, fc.Backend), nil)
			}
			backendTargets[fc.Backend] = public
		}
	}
	return nil
}

// PortString renders cfg.Port for http.Server's Addr.
func PortString(port int) string {
	return ":" + strconv.Itoa(port)
}
