package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "JUDGE"

	// ConfigName is the config file base name searched by Load.
	ConfigName = "judge-a-book"

	DefaultChainBaseURL = "https://cardano-mainnet.blockfrost.io/api/v0"
	DefaultAssetBaseURL = "https://ipfs.io/ipfs"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// ErrMissingChainAPIKey is returned by Validate when no chain API key is set.
var ErrMissingChainAPIKey = errors.New("chain API key is required (set --chain-api-key or JUDGE_CHAIN_API_KEY)")

// Settings holds all configuration options.
type Settings struct {
	// API credentials and endpoints
	ChainAPIKey  string `mapstructure:"chain_api_key" yaml:"chain_api_key"`
	AssetAPIKey  string `mapstructure:"asset_api_key" yaml:"asset_api_key"`
	ChainBaseURL string `mapstructure:"chain_url" yaml:"chain_url"`
	AssetBaseURL string `mapstructure:"assets_url" yaml:"assets_url"`

	// Fetch settings
	Workers         int           `mapstructure:"workers" yaml:"workers"`
	DownloadWorkers int           `mapstructure:"download_workers" yaml:"download_workers"`
	StrictCIDs      bool          `mapstructure:"strict_cids" yaml:"strict_cids"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`

	Covers Covers `mapstructure:"covers" yaml:"covers"`
	Log    Log    `mapstructure:"log" yaml:"log"`
}

// Covers holds cover post-processing settings.
type Covers struct {
	// MaxSize scales covers down to fit MaxSize x MaxSize pixels.
	// Zero keeps the downloaded bytes untouched.
	MaxSize int `mapstructure:"max_size" yaml:"max_size"`
}

// Log contains the log settings
type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // console, json
	File   string `mapstructure:"file" yaml:"file"`     // empty logs to stderr
}

// Endpoints is the client configuration handed to both API clients.
type Endpoints struct {
	ChainAPIKey  string
	AssetAPIKey  string
	ChainBaseURL string
	AssetBaseURL string
	UserAgent    string
	Timeout      time.Duration
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		ChainBaseURL:    DefaultChainBaseURL,
		AssetBaseURL:    DefaultAssetBaseURL,
		Workers:         runtime.GOMAXPROCS(0),
		DownloadWorkers: 1,
		StrictCIDs:      false,
		Timeout:         60 * time.Second,
		Covers: Covers{
			MaxSize: 0,
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// ConfigFile is an explicit YAML file. When empty, judge-a-book.yaml
	// is searched in the working directory and the user config directory,
	// and a missing file is not an error.
	ConfigFile string

	// EnvFile is a dotenv file loaded into the environment before reading
	// it. Defaults to ".env"; a missing file is not an error.
	EnvFile string

	// Flags, when set, override every other source for flags the user
	// changed. See RegisterFlags.
	Flags *pflag.FlagSet
}

// flagKeys maps flag names registered by RegisterFlags to settings keys.
var flagKeys = map[string]string{
	"chain-api-key":    "chain_api_key",
	"asset-api-key":    "asset_api_key",
	"chain-base-url":   "chain_url",
	"asset-base-url":   "assets_url",
	"workers":          "workers",
	"download-workers": "download_workers",
	"strict-cids":      "strict_cids",
	"timeout":          "timeout",
	"cover-max-size":   "covers.max_size",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"log-file":         "log.file",
}

// RegisterFlags adds the settings flags to fs. Flag defaults are zero
// values; unset flags never shadow the environment or config file.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("chain-api-key", "", "key for querying the blockchain API (env JUDGE_CHAIN_API_KEY)")
	fs.String("asset-api-key", "", "key for retrieving IPFS assets (env JUDGE_ASSET_API_KEY)")
	fs.String("chain-base-url", "", "base URL of the blockchain API (env JUDGE_CHAIN_URL, default "+DefaultChainBaseURL+")")
	fs.String("asset-base-url", "", "base URL for retrieving image assets (env JUDGE_ASSETS_URL, default "+DefaultAssetBaseURL+")")
	fs.Int("workers", 0, "concurrent metadata lookups (default: available CPUs)")
	fs.Int("download-workers", 0, "concurrent cover downloads (default 1)")
	fs.Bool("strict-cids", false, "skip references that are not valid IPFS CIDs")
	fs.Duration("timeout", 0, "per-request timeout (default 60s)")
	fs.Int("cover-max-size", 0, "scale covers down to fit this many pixels (0 keeps originals)")
	fs.String("log-level", "", "log level: debug, info, warn, error (default info)")
	fs.String("log-format", "", "log format: console or json (default console)")
	fs.String("log-file", "", "write logs to this file instead of stderr")
}

// Load reads settings from defaults, the config file, a dotenv file, the
// environment and flags, later sources taking precedence.
func Load(opts LoadOptions) (*Settings, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// Variables already present in the environment win over the file.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v, DefaultSettings())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := DefaultConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if flag := opts.Flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return settings, nil
}

func setDefaults(v *viper.Viper, s *Settings) {
	v.SetDefault("chain_api_key", s.ChainAPIKey)
	v.SetDefault("asset_api_key", s.AssetAPIKey)
	v.SetDefault("chain_url", s.ChainBaseURL)
	v.SetDefault("assets_url", s.AssetBaseURL)
	v.SetDefault("workers", s.Workers)
	v.SetDefault("download_workers", s.DownloadWorkers)
	v.SetDefault("strict_cids", s.StrictCIDs)
	v.SetDefault("timeout", s.Timeout)
	v.SetDefault("covers.max_size", s.Covers.MaxSize)
	v.SetDefault("log.level", s.Log.Level)
	v.SetDefault("log.format", s.Log.Format)
	v.SetDefault("log.file", s.Log.File)
}

// Save writes settings to a YAML file. The file holds API keys, so it is
// created readable by the owner only.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Validate reports the first setting that would make a run impossible.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.ChainAPIKey) == "" {
		return ErrMissingChainAPIKey
	}
	for name, raw := range map[string]string{"chain_url": s.ChainBaseURL, "assets_url": s.AssetBaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s %q: must be an absolute URL", name, raw)
		}
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", s.Workers)
	}
	if s.DownloadWorkers < 1 {
		return fmt.Errorf("download_workers must be at least 1, got %d", s.DownloadWorkers)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	if s.Covers.MaxSize < 0 {
		return fmt.Errorf("covers.max_size must not be negative, got %d", s.Covers.MaxSize)
	}
	switch strings.ToLower(s.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", s.Log.Level)
	}
	switch strings.ToLower(s.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q", s.Log.Format)
	}
	return nil
}

// Endpoints builds the client configuration shared by the chain and IPFS
// clients. Trailing slashes are trimmed from both base URLs.
func (s *Settings) Endpoints() Endpoints {
	return Endpoints{
		ChainAPIKey:  s.ChainAPIKey,
		AssetAPIKey:  s.AssetAPIKey,
		ChainBaseURL: strings.TrimRight(s.ChainBaseURL, "/"),
		AssetBaseURL: strings.TrimRight(s.AssetBaseURL, "/"),
		UserAgent:    "judge-a-book/" + Version,
		Timeout:      s.Timeout,
	}
}

// DefaultConfigDir returns the per-user directory searched for
// judge-a-book.yaml.
func DefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "judge-a-book"), nil
}

// DefaultConfigPath returns the file written by `judge-a-book init-config`
// when no path is given.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigName+".yaml"), nil
}
