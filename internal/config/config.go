// Package config loads the resolver, provider, storage and clipboard settings
// from linkclean.yaml, a .env file and LINKCLEAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/serroba/linkclean/internal/resolver"
	"github.com/serroba/linkclean/internal/store"
	"github.com/spf13/viper"
)

const (
	// FileName is the settings file name without extension.
	FileName = "linkclean"

	// EnvPrefix prefixes every environment override, e.g. LINKCLEAN_RESOLVER_STRATEGY.
	EnvPrefix = "LINKCLEAN"

	DefaultEndpoint  = "https://tiktoklinkshare-vercel.vercel.app/fetch-real-ttlink"
	DefaultIPAPIURL  = "http://ip-api.com"
	DefaultIPInfoURL = "https://ipinfo.io"
	DefaultTraceURL  = "https://www.cloudflare.com"
)

// Settings is the full configuration.
type Settings struct {
	Resolver  ResolverSettings  `mapstructure:"resolver"`
	Providers ProviderSettings  `mapstructure:"providers"`
	Storage   StorageSettings   `mapstructure:"storage"`
	Clipboard ClipboardSettings `mapstructure:"clipboard"`
	Log       LogSettings       `mapstructure:"log"`
}

type ResolverSettings struct {
	Strategy string        `mapstructure:"strategy"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Coalesce bool          `mapstructure:"coalesce"`
}

type ProviderSettings struct {
	IPAPI  string `mapstructure:"ip_api"`
	IPInfo string `mapstructure:"ipinfo"`
	Trace  string `mapstructure:"trace"`
}

type StorageSettings struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type ClipboardSettings struct {
	Native        bool `mapstructure:"native"`
	StagedCommand bool `mapstructure:"staged_command"`
	OSC52         bool `mapstructure:"osc52"`
	Prompt        bool `mapstructure:"prompt"`
}

type LogSettings struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit settings file. When set, a missing file is an error.
	File string
	// EnvFile is the dotenv file to read first. Missing files are ignored.
	EnvFile string
	// SearchPaths replaces the default search directories.
	SearchPaths []string
}

// Load reads the settings. Missing files fall back to defaults.
func Load(opts Options) (*Settings, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")

		paths := opts.SearchPaths
		if paths == nil {
			paths = []string{".", "./config", Dir()}
		}

		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate rejects unknown strategy and backend names.
func (s *Settings) Validate() error {
	switch resolver.Strategy(s.Resolver.Strategy) {
	case resolver.StrategyDirect:
	case resolver.StrategyBackend:
		if s.Resolver.Endpoint == "" {
			return errors.New("resolver.endpoint is required for the backend strategy")
		}
	default:
		return fmt.Errorf("unknown resolver.strategy %q", s.Resolver.Strategy)
	}

	switch store.Backend(s.Storage.Backend) {
	case store.BackendMemory, store.BackendRedis, store.BackendPostgres:
	case store.BackendSQLite, store.BackendFile:
		if s.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s backend", s.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", s.Storage.Backend)
	}

	if s.Resolver.Timeout < 0 {
		return errors.New("resolver.timeout must not be negative")
	}

	return nil
}

// Dir returns the per-user configuration directory.
func Dir() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}

		return filepath.Join(appData, FileName)
	case "darwin":
		home, _ := os.UserHomeDir()

		return filepath.Join(home, "Library", "Application Support", FileName)
	default:
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, _ := os.UserHomeDir()
			configHome = filepath.Join(home, ".config")
		}

		return filepath.Join(configHome, FileName)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("resolver.strategy", string(resolver.StrategyBackend))
	v.SetDefault("resolver.endpoint", DefaultEndpoint)
	v.SetDefault("resolver.timeout", time.Duration(0))
	v.SetDefault("resolver.coalesce", false)

	v.SetDefault("providers.ip_api", DefaultIPAPIURL)
	v.SetDefault("providers.ipinfo", DefaultIPInfoURL)
	v.SetDefault("providers.trace", DefaultTraceURL)

	v.SetDefault("storage.backend", string(store.BackendSQLite))
	v.SetDefault("storage.path", filepath.Join(Dir(), FileName+".db"))

	v.SetDefault("clipboard.native", true)
	v.SetDefault("clipboard.staged_command", true)
	v.SetDefault("clipboard.osc52", true)
	v.SetDefault("clipboard.prompt", true)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.encoding", "console")
}
