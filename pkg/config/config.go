package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kubescape/procguardian/pkg/exporters"
	ruleenginev1 "github.com/kubescape/procguardian/pkg/ruleengine/v1"
	"github.com/kubescape/procguardian/pkg/utils"
	"github.com/prometheus/procfs"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDirEnvVar  = "CONFIG_DIR"
	DefaultConfigDir = "/etc/procguardian"
	DefaultLogPath   = "/var/log/procguardian/alerts.log"
)

type Config struct {
	Exporters                 exporters.ExportersConfig `mapstructure:"exporters"`
	Interval                  int                       `mapstructure:"interval" validate:"gt=0"`
	Quiet                     bool                      `mapstructure:"quiet"`
	DebugOnly                 bool                      `mapstructure:"debugOnly"`
	LogPath                   string                    `mapstructure:"logPath" validate:"required"`
	ExcludedUsers             []string                  `mapstructure:"excludedUsers"`
	Rules                     map[string]bool           `mapstructure:"rules"`
	SuspectFilePrefixes       []string                  `mapstructure:"suspectFilePrefixes"`
	SuspectArgs               []string                  `mapstructure:"suspectArgs"`
	InterpreterMarkers        []string                  `mapstructure:"interpreterMarkers"`
	IdentityIncludesStartTime bool                      `mapstructure:"identityIncludesStartTime"`
	Workers                   int                       `mapstructure:"workers" validate:"gte=1"`
	ConsoleFormat             string                    `mapstructure:"consoleFormat" validate:"oneof=text json"`
	LogLevel                  string                    `mapstructure:"logLevel" validate:"oneof=debug info warning error fatal"`
	ProcRoot                  string                    `mapstructure:"procRoot" validate:"required"`
	EnablePrometheusExporter  bool                      `mapstructure:"prometheusExporterEnabled"`
	MetricsAddress            string                    `mapstructure:"metricsAddress" validate:"required_if=EnablePrometheusExporter true"`
	EnableHealth              bool                      `mapstructure:"healthEnabled"`
	HealthAddress             string                    `mapstructure:"healthAddress" validate:"required_if=EnableHealth true"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"interval":     "interval",
	"quiet":        "quiet",
	"debug-only":   "debugOnly",
	"log-path":     "logPath",
	"exclude-user": "excludedUsers",
	"workers":      "workers",
	"log-level":    "logLevel",
	"proc-root":    "procRoot",
}

// NewFlagSet declares the command-line flags understood by LoadConfig.
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.Int("interval", 10, "seconds to sleep between two scans")
	flags.Bool("quiet", false, "do not echo anything to the console")
	flags.Bool("debug-only", false, "do not echo the per-process debug lines")
	flags.String("log-path", DefaultLogPath, "alert log file")
	flags.StringArray("exclude-user", nil, "user whose processes are not evaluated (repeatable)")
	flags.Int("workers", 1, "rule evaluation workers")
	flags.String("log-level", "info", "operational log level")
	flags.String("proc-root", procfs.DefaultMountPoint, "procfs mount point")
	return flags
}

// LoadConfig reads configuration from file or environment variables.
// A missing config.json or .env in path is not an error. flags may be nil.
func LoadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	if err := godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("json")

	v.SetDefault("interval", 10)
	v.SetDefault("quiet", false)
	v.SetDefault("debugOnly", false)
	v.SetDefault("logPath", DefaultLogPath)
	v.SetDefault("excludedUsers", []string{})
	v.SetDefault("suspectFilePrefixes", []string{"/tmp", "/var/tmp"})
	v.SetDefault("suspectArgs", []string{"wget", "curl", "nc", "ss"})
	v.SetDefault("interpreterMarkers", []string{"python", "perl", "ruby", "php", "node"})
	v.SetDefault("identityIncludesStartTime", false)
	v.SetDefault("workers", 1)
	v.SetDefault("consoleFormat", exporters.ConsoleFormatText)
	v.SetDefault("logLevel", "info")
	v.SetDefault("procRoot", procfs.DefaultMountPoint)
	v.SetDefault("prometheusExporterEnabled", false)
	v.SetDefault("metricsAddress", ":9090")
	v.SetDefault("healthEnabled", false)
	v.SetDefault("healthAddress", ":7888")

	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// normalize undoes viper's key lowercasing for rule IDs and trims user names.
func (c *Config) normalize() {
	if len(c.Rules) > 0 {
		rules := make(map[string]bool, len(c.Rules))
		for id, enabled := range c.Rules {
			rules[strings.ToUpper(strings.TrimSpace(id))] = enabled
		}
		c.Rules = rules
	}
	c.ExcludedUsers = utils.TrimmedSet(c.ExcludedUsers).ToSlice()
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for id := range c.Rules {
		if _, ok := ruleenginev1.GetRuleDescriptor(id); !ok {
			return fmt.Errorf("invalid configuration: unknown rule %q", id)
		}
	}
	return nil
}

// RuleParameters maps the rule tuning keys onto the rules that use them.
func (c *Config) RuleParameters() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		ruleenginev1.R0003ID: {ruleenginev1.ParameterMarkers: c.InterpreterMarkers},
		ruleenginev1.R0004ID: {ruleenginev1.ParameterPrefixes: c.SuspectFilePrefixes},
		ruleenginev1.R0005ID: {ruleenginev1.ParameterSubstrings: c.SuspectArgs},
	}
}

// SinkConfig returns the alert log and console settings.
func (c *Config) SinkConfig() exporters.SinkConfig {
	return exporters.SinkConfig{
		LogPath:       c.LogPath,
		Quiet:         c.Quiet,
		DebugOnly:     c.DebugOnly,
		ConsoleFormat: c.ConsoleFormat,
	}
}
