package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"niviskar/internal/export"
	"niviskar/internal/extractor"
	"niviskar/internal/summarizer"
)

const (
	ModeBatch = "batch"
	ModeServe = "serve"
)

type Config struct {
	Mode         string           `mapstructure:"mode"`
	SourceDir    string           `mapstructure:"src"`
	DestDir      string           `mapstructure:"dst"`
	Level        summarizer.Level `mapstructure:"level"`
	Format       string           `mapstructure:"format"`
	Workers      int              `mapstructure:"workers"`
	ExtractLimit int              `mapstructure:"limit"`
	MaxPages     int              `mapstructure:"pages"`
	Timeout      time.Duration    `mapstructure:"timeout"`
	Addr         string           `mapstructure:"addr"`
	MaxUpload    int64            `mapstructure:"max-upload"`
	Encoding     string           `mapstructure:"encoding"`
	LogLevel     string           `mapstructure:"log-level"`
	LogFile      string           `mapstructure:"log-file"`
}

// Load resolves the configuration from, in increasing priority: defaults, a
// YAML config file, NIVISKAR_* environment variables (a .env file is loaded
// first when present) and command line flags.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// 1. Set Defaults
	v.SetDefault("mode", ModeBatch)
	v.SetDefault("dst", "summaries")
	v.SetDefault("level", "student")
	v.SetDefault("format", "txt")
	v.SetDefault("workers", 5)
	v.SetDefault("limit", 100000)
	v.SetDefault("pages", 50)
	v.SetDefault("timeout", 2*time.Minute)
	v.SetDefault("addr", ":7860")
	v.SetDefault("max-upload", int64(10<<20))
	v.SetDefault("encoding", "cl100k_base")
	v.SetDefault("log-level", "info")

	// 2. Define Flags using pflag
	fs := pflag.NewFlagSet("niviskar", pflag.ContinueOnError)
	fs.String("mode", ModeBatch, "Run mode: batch (summarize a directory) or serve (HTTP API)")
	fs.String("src", "", "Source directory to scan for .pdf, .txt and .md files")
	fs.String("dst", "summaries", "Destination directory for summary files")
	fs.String("level", "student", "Summary level: student or professor")
	fs.String("format", "txt", "Summary file format: txt, json, yaml or pdf")
	fs.Int("workers", 5, "Number of concurrent workers")
	fs.Int("limit", 100000, "Max characters to extract from each file")
	fs.Int("pages", 50, "Max PDF pages to read")
	fs.Duration("timeout", 2*time.Minute, "Per-file processing timeout")
	fs.String("addr", ":7860", "Listen address in serve mode")
	fs.Int64("max-upload", 10<<20, "Max upload size in bytes")
	fs.String("encoding", "cl100k_base", "Tiktoken encoding used for token statistics")
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
	fs.String("log-file", "", "Optional rotating log file")
	configPath := fs.String("config", "", "Path to YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// 3. Bind Flags to Viper
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	// 4. Environment variables (Prefix NIVISKAR_)
	v.SetEnvPrefix("NIVISKAR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// 5. Load Configuration File
	if *configPath != "" {
		v.SetConfigFile(*configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine unless it was explicitly requested
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || *configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 6. Unmarshal into struct
	// Level decodes through its UnmarshalText
	var cfg Config
	hooks := mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hooks)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that flags and files cannot constrain themselves.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeBatch:
		if c.SourceDir == "" {
			return errors.New("batch mode needs a source directory (--src)")
		}
	case ModeServe:
	default:
		return fmt.Errorf("unknown mode %q (want %s or %s)", c.Mode, ModeBatch, ModeServe)
	}
	if _, err := export.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.MaxUpload <= 0 {
		return fmt.Errorf("max-upload must be positive, got %d", c.MaxUpload)
	}
	return nil
}

// ExportFormat returns the parsed Format; call after Validate.
func (c *Config) ExportFormat() export.Format {
	f, _ := export.ParseFormat(c.Format)
	return f
}

// ExtractOptions returns the extraction bounds.
func (c *Config) ExtractOptions() extractor.Options {
	return extractor.Options{Limit: c.ExtractLimit, MaxPages: c.MaxPages}
}
