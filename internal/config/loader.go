package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore, e.g. KNOLBOX_SESSION__MAX_CARDS.
const EnvPrefix = "KNOLBOX_"

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"db":               "database.path",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"repos-dir":        "repos_dir",
	"max-cards":        "session.max_cards",
	"mode":             "session.mode",
	"shuffle":          "session.shuffle",
	"checkpoint-every": "session.checkpoint_every",
	"max-new":          "rules.max_new_cards_per_day",
}

// Load builds the configuration.
// Priority: flags > ENV > YAML > defaults.
// An empty path skips the file; a non-empty path must exist.
// Only flags the user actually set override lower layers. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
			return nil, fmt.Errorf("failed to read flags: %w", err)
		}
	}

	cfg := Default()
	// Decoding over a non-empty slice merges element-wise.
	if k.Exists("rules.boxes") {
		cfg.Rules.Boxes = nil
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func flagKey(flags *pflag.FlagSet) func(f *pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		key, ok := flagKeys[f.Name]
		if !ok || !f.Changed {
			return "", nil
		}
		return key, posflag.FlagVal(flags, f)
	}
}
