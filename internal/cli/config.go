package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// Config captures the settings shared by every command after merging
// defaults, config file values, and CLI overrides.
type Config struct {
	Spec       string
	Timeout    time.Duration
	Verbose    bool
	NoColor    bool
	Output     string
	ConfigPath string
}

func defaultConfig() Config {
	return Config{Output: outputText}
}

func resolveConfig(cmd *cobra.Command) (*Config, error) {
	cfg := defaultConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *Config) error {
	if flags.Changed("spec") {
		value, err := flags.GetString("spec")
		if err != nil {
			return err
		}
		cfg.Spec = strings.TrimSpace(value)
	}
	if flags.Changed("timeout") {
		value, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = value
	}
	if flags.Changed("output") {
		value, err := flags.GetString("output")
		if err != nil {
			return err
		}
		cfg.Output = strings.TrimSpace(value)
	}
	if flags.Changed("no-color") {
		value, err := flags.GetBool("no-color")
		if err != nil {
			return err
		}
		cfg.NoColor = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}
	return nil
}

func (c *Config) normalize() {
	c.Spec = strings.TrimSpace(c.Spec)
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
}

func (c *Config) validate() error {
	switch c.Output {
	case "", outputText:
		c.Output = outputText
	case outputJSON:
	default:
		return newUsageError(fmt.Sprintf("unsupported --output %q (allowed: text, json)", c.Output))
	}
	if c.Timeout < 0 {
		return newUsageError(fmt.Sprintf("--timeout must not be negative, got %s", c.Timeout))
	}
	return nil
}

func (c *Config) requireSpec(command string) error {
	if c.Spec == "" {
		return newUsageError(fmt.Sprintf("%s: --spec is required (set via flag or config file)", command))
	}
	return nil
}

func applyConfigFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		switch normalizeKey(key) {
		case "spec":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Spec = str
		case "timeout":
			d, err := valueAsDuration(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Timeout = d
		case "output":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Output = str
		case "nocolor":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.NoColor = val
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

// valueAsDuration accepts Go duration strings or a plain number of seconds.
func valueAsDuration(v any) (time.Duration, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return 0, nil
		}
		d, err := time.ParseDuration(trimmed)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", val)
		}
		return d, nil
	case int:
		return time.Duration(val) * time.Second, nil
	case float64:
		return time.Duration(val * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("expected duration, got %T", v)
	}
}

// parseParams splits repeated key=value flags, keeping their order.
func parseParams(pairs []string) ([][2]string, error) {
	out := make([][2]string, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, newUsageError(fmt.Sprintf("invalid --param %q (expected name=value)", pair))
		}
		out = append(out, [2]string{key, value})
	}
	return out, nil
}
