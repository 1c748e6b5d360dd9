package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

type envVar struct {
	name  string
	desc  string
	apply func(*Config, string) error
}

var supportedEnvVars = []envVar{
	{
		// Only here for documentation purposes.  Does not override any values in the config as this environment variable
		// points to where the config should be loaded.  It is handled prior to loading the config.
		name:  "MEDIABIND_CONFIG_PATH",
		desc:  "Sets the path to the config file.  Default: OS-specific config directory",
		apply: func(c *Config, s string) error { return nil }, // Special case, no-op
	},
	{
		// Also documentation only.  Read before the other overrides are applied.
		name:  "MEDIABIND_ENV_FILE",
		desc:  "Sets the path to a .env file with MEDIABIND_CONFIG_* values.  Default: .env in the working directory",
		apply: func(c *Config, s string) error { return nil },
	},
	{
		name:  "MEDIABIND_CONFIG_PLAYER_TYPE",
		desc:  "Sets how the engine is reached.  One of `mpv` (spawned) or `mpv-external` (already running).  Default: mpv",
		apply: func(c *Config, s string) error { c.Player.Type = s; return nil },
	},
	{
		name:  "MEDIABIND_CONFIG_PLAYER_PATH",
		desc:  "Sets the path to the mpv binary.  Default: mpv",
		apply: func(c *Config, s string) error { c.Player.Path = s; return nil },
	},
	{
		name:  "MEDIABIND_CONFIG_PLAYER_ARGS",
		desc:  "Sets extra mpv arguments.  Default: None",
		apply: func(c *Config, s string) error { c.Player.Args = s; return nil },
	},
	{
		name:  "MEDIABIND_CONFIG_PLAYER_SOCKET_PATH",
		desc:  "Sets the mpv IPC socket or pipe.  Default: OS-specific",
		apply: func(c *Config, s string) error { c.Player.SocketPath = s; return nil },
	},
	{
		name:  "MEDIABIND_CONFIG_MEDIA_SOURCES",
		desc:  "Comma separated sources offered in the source selector.  Default: None",
		apply: func(c *Config, s string) error { c.Media.Sources = splitList(s); return nil },
	},
	{
		name:  "MEDIABIND_CONFIG_MEDIA_STICKY_SLOTS",
		desc:  "Comma separated context slots kept when the engine changes.  Default: volume,muted,loop,autoplay,playsinline,controls",
		apply: func(c *Config, s string) error { c.Media.StickySlots = splitList(s); return nil },
	},
	{
		name:  "MEDIABIND_CONFIG_UI_SEEK_STEP",
		desc:  "Sets how many seconds the seek keys move.  Default: 10",
		apply: func(c *Config, s string) error { return parseFloat(s, &c.UI.SeekStep) },
	},
	{
		name:  "MEDIABIND_CONFIG_UI_VOLUME_STEP",
		desc:  "Sets how much the volume keys change the volume, between 0 and 1.  Default: 0.05",
		apply: func(c *Config, s string) error { return parseFloat(s, &c.UI.VolumeStep) },
	},
	{
		name:  "MEDIABIND_CONFIG_DEBUG_ADDR",
		desc:  "Sets the debug HTTP listen address.  Default: None (disabled)",
		apply: func(c *Config, s string) error { c.Debug.Addr = s; return nil },
	},
	{
		name:  "MEDIABIND_CONFIG_LOGGING_LEVEL",
		desc:  "Sets the logging level.  One of: trace, debug, info, warn, error.  Default: info",
		apply: func(c *Config, s string) error { c.Logging.Level = s; return nil },
	},
	{
		name:  "MEDIABIND_CONFIG_LOGGING_FORMAT",
		desc:  "Sets the log record format.  One of: json, text.  Default: json",
		apply: func(c *Config, s string) error { c.Logging.Format = s; return nil },
	},
	{
		name:  "MEDIABIND_CONFIG_LOGGING_FILE_PATH",
		desc:  "Sets the logging file path.  Default: OS-specific",
		apply: func(c *Config, s string) error { c.Logging.FilePath = s; return nil },
	},
}

// EnvVarHelp describes every supported environment variable, one per line.
func EnvVarHelp() string {
	var b strings.Builder
	for _, v := range supportedEnvVars {
		fmt.Fprintf(&b, "  %s\n      %s\n", v.name, v.desc)
	}
	return b.String()
}

// readDotEnv reads the .env file without touching the process environment.  A missing default file is not an error;
// a missing file named by MEDIABIND_ENV_FILE is.
func readDotEnv() (map[string]string, error) {
	path, explicit := os.LookupEnv("MEDIABIND_ENV_FILE")
	if !explicit {
		path = ".env"
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to read env file %s: %w", path, err)
	}
	return values, nil
}

// lookupEnv prefers the real environment over .env values.
func lookupEnv(dotEnv map[string]string) func(string) string {
	return func(name string) string {
		if v := os.Getenv(name); v != "" {
			return v
		}
		return dotEnv[name]
	}
}

func applyEnvVarOverrides(c *Config, lookup func(string) string) error {
	for _, envVar := range supportedEnvVars {
		if value := lookup(envVar.name); value != "" {
			if err := envVar.apply(c, value); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, envVar.name, err)
			}
		}
	}
	return nil
}

func splitList(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string { return strings.TrimSpace(p) })
	return lo.Compact(parts)
}

func parseFloat(s string, dst *float64) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
