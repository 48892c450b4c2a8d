/*
Package config manages TOML config for TickerSpell services.

Values are resolved in three layers: built-in defaults, the TOML file, then
environment overrides (optionally read from a .env file next to the binary's
working directory).
*/
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/bastiangx/tickerspell/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvUniverse = "TICKERSPELL_UNIVERSE"
	EnvStrategy = "TICKERSPELL_STRATEGY"
	EnvWorkers  = "TICKERSPELL_WORKERS"
)

// Config holds the entire config structure
type Config struct {
	Engine   EngineConfig   `toml:"engine"`
	Universe UniverseConfig `toml:"universe"`
	Server   ServerConfig   `toml:"server"`
	CLI      CliConfig      `toml:"cli"`
}

// EngineConfig tunes the spelling pipeline.
type EngineConfig struct {
	MaxInput  int    `toml:"max_input"`
	MaxSpan   int    `toml:"max_span"`
	TiePolicy string `toml:"tie_policy"`
}

// UniverseConfig locates the ticker universe and its eligibility floor.
type UniverseConfig struct {
	Path      string  `toml:"path"`
	MinPrice  float64 `toml:"min_price"`
	MinVolume int     `toml:"min_volume"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	Workers         int    `toml:"workers"`
	DefaultStrategy string `toml:"default_strategy"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	Strategy string `toml:"strategy"`
	ShowAll  bool   `toml:"show_all"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxInput:  3000,
			MaxSpan:   3,
			TiePolicy: "skip",
		},
		Universe: UniverseConfig{
			Path:      "data/metadata.json",
			MinPrice:  5.0,
			MinVolume: 100000,
		},
		Server: ServerConfig{
			Workers:         2,
			DefaultStrategy: "",
		},
		CLI: CliConfig{
			Strategy: "dividendDaddy",
			ShowAll:  false,
		},
	}
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/tickerspell
// 2. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "tickerspell")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/tickerspell/config.toml
// 3. Builtin defaults
// Environment overrides are applied on top in every case.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				ApplyEnv(config)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		config := DefaultConfig()
		ApplyEnv(config)
		return config, "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		config = DefaultConfig()
		defaultPath = ""
	}
	ApplyEnv(config)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps every well-typed value it can find and defaults the rest.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(section, &config.Engine)
	}
	if section, ok := utils.ExtractSection(tempConfig, "universe"); ok {
		extractUniverseConfig(section, &config.Universe)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractInt64(data, "max_input"); ok {
		engine.MaxInput = val
	}
	if val, ok := utils.ExtractInt64(data, "max_span"); ok {
		engine.MaxSpan = val
	}
	if val, ok := utils.ExtractString(data, "tie_policy"); ok {
		engine.TiePolicy = val
	}
}

func extractUniverseConfig(data map[string]any, u *UniverseConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		u.Path = val
	}
	if val, ok := utils.ExtractFloat(data, "min_price"); ok {
		u.MinPrice = val
	}
	if val, ok := utils.ExtractInt64(data, "min_volume"); ok {
		u.MinVolume = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		server.Workers = val
	}
	if val, ok := utils.ExtractString(data, "default_strategy"); ok {
		server.DefaultStrategy = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractString(data, "strategy"); ok {
		cli.Strategy = val
	}
	if val, ok := utils.ExtractBool(data, "show_all"); ok {
		cli.ShowAll = val
	}
}

// ApplyEnv loads a .env file when present and applies TICKERSPELL_* overrides.
func ApplyEnv(c *Config) {
	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded .env overrides")
	}

	if v := os.Getenv(EnvUniverse); v != "" {
		c.Universe.Path = v
	}
	if v := os.Getenv(EnvStrategy); v != "" {
		c.Server.DefaultStrategy = v
		c.CLI.Strategy = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Server.Workers = n
		} else {
			log.Warnf("Ignoring invalid %s=%q", EnvWorkers, v)
		}
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}
