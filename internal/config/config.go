package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/datasweeper/internal/export"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DefaultTarget string `mapstructure:"default_target" yaml:"default_target"`
	OutDir        string `mapstructure:"out_dir" yaml:"out_dir"`
	Sheet         string `mapstructure:"sheet" yaml:"sheet"`
	PreviewRows   int    `mapstructure:"preview_rows" yaml:"preview_rows"`
	ChartWidth    int    `mapstructure:"chart_width" yaml:"chart_width"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// HTTP server
	ServeAddr   string `mapstructure:"serve_addr" yaml:"serve_addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"default_target", "out_dir", "sheet", "preview_rows", "chart_width",
	"log_level", "log_format", "serve_addr", "max_upload_mb",
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		DefaultTarget: "csv",
		PreviewRows:   5,
		ChartWidth:    40,
		LogLevel:      "info",
		LogFormat:     "text",
		ServeAddr:     "127.0.0.1:8080",
		MaxUploadMB:   32,
	}
}

// Dir returns ~/.datasweeper.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datasweeper"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datasweeper/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is read first so its DATASWEEPER_* entries count as env.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DATASWEEPER")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("default_target", d.DefaultTarget)
	v.SetDefault("out_dir", d.OutDir)
	v.SetDefault("sheet", d.Sheet)
	v.SetDefault("preview_rows", d.PreviewRows)
	v.SetDefault("chart_width", d.ChartWidth)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("serve_addr", d.ServeAddr)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Target parses DefaultTarget.
func (c *Global) Target() (export.Target, error) {
	return export.ParseTarget(c.DefaultTarget)
}

// Get returns the value of key formatted for display.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "default_target":
		return c.DefaultTarget, nil
	case "out_dir":
		return c.OutDir, nil
	case "sheet":
		return c.Sheet, nil
	case "preview_rows":
		return strconv.Itoa(c.PreviewRows), nil
	case "chart_width":
		return strconv.Itoa(c.ChartWidth), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "serve_addr":
		return c.ServeAddr, nil
	case "max_upload_mb":
		return strconv.Itoa(c.MaxUploadMB), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set validates val and assigns it to key.
func (c *Global) Set(key, val string) error {
	switch key {
	case "default_target":
		t, err := export.ParseTarget(val)
		if err != nil {
			return err
		}
		c.DefaultTarget = strings.TrimPrefix(t.Ext(), ".")
	case "out_dir":
		c.OutDir = val
	case "sheet":
		c.Sheet = val
	case "preview_rows", "chart_width", "max_upload_mb":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		switch key {
		case "preview_rows":
			c.PreviewRows = i
		case "chart_width":
			c.ChartWidth = i
		default:
			c.MaxUploadMB = i
		}
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "warning", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "serve_addr":
		c.ServeAddr = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
