package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/PizzaHomicide/mediabind/internal/mediactx"
)

const (
	PlayerTypeMPV         = "mpv"
	PlayerTypeExternalMPV = "mpv-external"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config represents the application configuration
type Config struct {
	Player  PlayerConfig  `yaml:"player,omitempty"`
	Media   MediaConfig   `yaml:"media,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty"`
	Debug   DebugConfig   `yaml:"debug,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// PlayerConfig contains media engine settings
type PlayerConfig struct {
	Type       string `yaml:"type,omitempty"` // "mpv", "mpv-external"
	Path       string `yaml:"path,omitempty"`
	Args       string `yaml:"args,omitempty"`
	SocketPath string `yaml:"socket_path,omitempty"`
}

// MediaConfig contains what the player controller is configured with
type MediaConfig struct {
	// Attributes are set on the controller at startup and forwarded to whichever provider binds, e.g. loop or autoplay.
	Attributes map[string]string `yaml:"attributes,omitempty"`
	// Sources are offered in the source selector.
	Sources []string `yaml:"sources,omitempty"`
	// LastSource is remembered between runs.
	LastSource string `yaml:"last_source,omitempty"`
	// StickySlots names the context slots that survive a provider change.  Empty uses the built-in set.
	StickySlots []string `yaml:"sticky_slots,omitempty"`
}

// UIConfig contains UI preferences
type UIConfig struct {
	SeekStep   float64 `yaml:"seek_step,omitempty"`
	VolumeStep float64 `yaml:"volume_step,omitempty"`
}

// DebugConfig contains the debug HTTP server settings
type DebugConfig struct {
	// Addr to listen on, e.g. "127.0.0.1:7878".  Empty disables the server.
	Addr string `yaml:"addr,omitempty"`
}

// LoggingConfig contains log related settings
type LoggingConfig struct {
	Level    string `yaml:"level,omitempty"`
	Format   string `yaml:"format,omitempty"`
	FilePath string `yaml:"file_path,omitempty"`
}

// Load builds a configuration struct from multiple sources using these steps:
// 1. Create a base config with default values
// 2. If no config file exists on disk, save the default config to that location
// 3. Apply 'dynamic' properties.  Dynamic properties are those that are determined at runtime, for example log file location which is different per OS.
// 4. Load & merge the config file, overwriting any defaults with user-specified values
// 5. Apply overrides from the .env file, then from the environment, which wins over everything
// 6. Validate the result
func Load() (*Config, error) {
	// 1. Start with base defaults
	cfg := createBaseDefaultConfig()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to determine config file path: %w", err)
	}

	// 2. If no config file exists on disk, then write a default one
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// If there is an error saving the default config, then still let the application startup using the defaults.
		_ = save(cfg, configPath)
	}

	// 3. Apply dynamic defaults if necessary
	applyDynamicDefaults(cfg)

	// 4. Load the config from disk and merge it into the base defaults
	fileConfig, err := loadFromDisk(configPath)
	if err != nil {
		return nil, err
	}
	// Overrides the config with any values coming from the loaded file
	if err = mergo.Merge(cfg, fileConfig, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("error merging config loaded from disk: %w", err)
	}

	// 5. Apply the .env and environment variable overrides which take precedence
	dotEnv, err := readDotEnv()
	if err != nil {
		return nil, err
	}
	if err := applyEnvVarOverrides(cfg, lookupEnv(dotEnv)); err != nil {
		return nil, err
	}

	// 6. Reject values the player cannot start with
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be checked by the YAML decoder.
func (c *Config) Validate() error {
	switch c.Player.Type {
	case PlayerTypeMPV, PlayerTypeExternalMPV:
	default:
		return fmt.Errorf("%w: player.type must be %q or %q, got %q", ErrInvalidConfig, PlayerTypeMPV, PlayerTypeExternalMPV, c.Player.Type)
	}
	if c.UI.SeekStep <= 0 {
		return fmt.Errorf("%w: ui.seek_step must be positive", ErrInvalidConfig)
	}
	if c.UI.VolumeStep <= 0 || c.UI.VolumeStep > 1 {
		return fmt.Errorf("%w: ui.volume_step must be within (0, 1]", ErrInvalidConfig)
	}
	if _, err := c.Sticky(); err != nil {
		return fmt.Errorf("%w: media.sticky_slots: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Sticky resolves media.sticky_slots.  Nil means the built-in set.
func (c *Config) Sticky() ([]mediactx.Slot, error) {
	if len(c.Media.StickySlots) == 0 {
		return nil, nil
	}
	return mediactx.ParseSlots(c.Media.StickySlots)
}

// applyDynamicDefaults sets runtime-determined default values for any properties that haven't been explicitly configured.
// Unlike static defaults, these values might change between runs based on the environment or system configuration.
func applyDynamicDefaults(cfg *Config) {
	cfg.Logging.FilePath = defaultLogFilePath()
}

// loadFromDisk loads the YAML config from disk and returns the unmarshalled Config
func loadFromDisk(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return cfg, nil
}

func save(cfg *Config, configPath string) error {
	// Create config dir if not exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// UpdateConfig reads the existing config, applies the update function, and saves it back to disk
func UpdateConfig(updateFn func(*Config)) error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("unable to determine config file path: %w", err)
	}

	cfg, err := loadFromDisk(configPath)
	if err != nil {
		return fmt.Errorf("error loading config file from disk: %w", err)
	}

	// Apply the updates
	updateFn(cfg)

	return save(cfg, configPath)
}

// getConfigPath returns the path to the config file.  Uses the environment variable override if present, else tries
// to use OS config location defaults.
func getConfigPath() (string, error) {
	configPath := os.Getenv("MEDIABIND_CONFIG_PATH")
	if configPath != "" {
		return configPath, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "mediabind", "config.yaml"), nil
}

// createBaseDefaultConfig creates a config with all default values
func createBaseDefaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			Type: PlayerTypeMPV,
			Path: "mpv",
		},
		UI: UIConfig{
			SeekStep:   10,
			VolumeStep: 0.05,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// defaultLogFilePath returns the path to the log file.  Tries to use expected OS location defaults.
func defaultLogFilePath() string {
	var basePath string
	homedir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to logging in the current directory if home directory cannot be determined
		return filepath.Join(".", "mediabind.log")
	}

	switch runtime.GOOS {
	case "windows":
		// Windows:  %LOCALAPPDATA%\mediabind\logs
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			basePath = filepath.Join(appData, "mediabind", "logs")
		} else {
			basePath = filepath.Join(homedir, "AppData", "local", "mediabind", "logs")
		}
	case "darwin":
		// macOS:  ~/Library/Logs/mediabind
		basePath = filepath.Join(homedir, "Library", "Logs", "mediabind")
	default:
		// Linux/BSD:  XDG_STATE_HOME
		if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
			basePath = filepath.Join(xdgState, "mediabind", "logs")
		} else {
			basePath = filepath.Join(homedir, ".local", "state", "mediabind", "logs")
		}
	}

	err = os.MkdirAll(basePath, 0700)
	if err != nil {
		// If we failed to create the directory, fallback to logging in the current directory
		return filepath.Join(".", "mediabind.log")
	}
	return filepath.Join(basePath, "mediabind.log")
}
