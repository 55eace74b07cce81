package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"

	sharedcfg "github.com/leapstack-labs/trialrecon/internal/config"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
)

// loggerKey is used to store logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Config file names, in lookup order.
var configFileNames = []string{"trialrecon.yaml", "trialrecon.yml"}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

func configExistsIn(dir string) string {
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigUpward searches upward from startDir for a trialrecon config file.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if path := configExistsIn(dir); path != "" {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// defaults returns the lowest-priority configuration layer.
func defaults() (map[string]any, error) {
	// Round-trip through YAML so the reason field defaults keep their tag names.
	raw, err := yamlv3.Marshal(reason.DefaultFields())
	if err != nil {
		return nil, err
	}
	var reasons map[string]any
	if err := yamlv3.Unmarshal(raw, &reasons); err != nil {
		return nil, err
	}

	src := sharedcfg.DefaultSources()
	tenantCols := map[string]any{}
	for label, col := range sharedcfg.DefaultBTenantColumns() {
		tenantCols[label] = col
	}

	return map[string]any{
		"data_dir":                DefaultDataDir,
		"output_dir":              DefaultOutputDir,
		"state_path":              DefaultStateFile,
		"verbose":                 false,
		"output":                  DefaultOutput,
		"drop_empty_keys":         false,
		"include_filtered_sheets": false,
		"sources": map[string]any{
			"a":    map[string]any{"name": src.A.Name, "pattern": src.A.Pattern},
			"b":    map[string]any{"name": src.B.Name, "pattern": src.B.Pattern},
			"feed": map[string]any{"name": src.Feed.Name, "pattern": src.Feed.Pattern, "fix_quotes": src.Feed.FixQuotes},
		},
		"reasons":          reasons,
		"b_tenant_columns": tenantCols,
		"b_product_column": sharedcfg.DefaultBProductColumn,
	}, nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	// 1. Load defaults
	defs, err := defaults()
	if err != nil {
		return nil, fmt.Errorf("failed to build defaults: %w", err)
	}
	if err := k.Load(confmap.Provider(defs, ""), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	configFileUsed = cfgFile
	if configFileUsed == "" {
		configFileUsed = findConfigUpward(cwd)
	}
	projectRoot := cwd
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 3. Load environment variables (TRIALRECON_ prefix)
	// Transform: TRIALRECON_DATA_DIR -> data_dir
	if err := k.Load(env.Provider("TRIALRECON_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "TRIALRECON_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	// Paths given as flags are relative to the working directory, not the
	// project root.
	flagPaths := map[string]bool{}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			// --state is short for state_path
			if key == "state" {
				key = "state_path"
			}
			switch key {
			case "data_dir", "output_dir", "state_path":
				flagPaths[key] = true
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := sharedcfg.Unmarshal(k, "", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot

	// 6. Resolve relative paths
	resolve := func(key string, p *string) {
		*p = expandEnvVars(*p)
		base := projectRoot
		if flagPaths[key] {
			base = cwd
		}
		*p = resolvePathRelativeTo(*p, base)
	}
	resolve("data_dir", &cfg.DataDir)
	resolve("output_dir", &cfg.OutputDir)
	resolve("state_path", &cfg.StatePath)

	// 7. Display names live on the sources; the reason rules read them from
	// their own field set.
	sharedcfg.ApplySourceDefaults(&cfg.Sources)
	cfg.Reasons.NameA = cfg.Sources.A.Name
	cfg.Reasons.NameB = cfg.Sources.B.Name
	cfg.Reasons.NameFeed = cfg.Sources.Feed.Name

	// 8. Comparisons, inline then from files
	for i := range cfg.Comparisons {
		sharedcfg.ApplyDefaults(&cfg.Comparisons[i])
	}
	for _, path := range cfg.ComparisonFiles {
		c, err := sharedcfg.LoadComparisonFile(resolvePathRelativeTo(expandEnvVars(path), projectRoot))
		if err != nil {
			return nil, err
		}
		cfg.Comparisons = append(cfg.Comparisons, *c)
	}

	currentConfig = &cfg
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}
