package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/spektr-org/incomelens/dataset"
	"github.com/spektr-org/incomelens/errors"
	"github.com/spektr-org/incomelens/render"
	"github.com/spektr-org/incomelens/server"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "INCOMELENS"

// Config holds the application configuration loaded from flags, environment
// variables, .env files and the config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Dataset
	DataPath string

	// Server
	Host     string
	Port     int
	CacheTTL time.Duration
	PageSize int

	// Charts
	ChartWidth    int
	ChartHeight   int
	HistogramBins int

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// Viper keys. Flags of the same name with '-' for '_' bind to them.
const (
	keyData        = "data"
	keyHost        = "host"
	keyPort        = "port"
	keyCacheTTL    = "cache_ttl"
	keyPageSize    = "page_size"
	keyChartWidth  = "chart_width"
	keyChartHeight = "chart_height"
	keyBins        = "histogram_bins"
	keyLogLevel    = "log_level"
	keyLogFormat   = "log_format"
	keyLogOutput   = "log_output"
)

// newViper returns a viper instance with defaults and environment binding.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := server.DefaultConfig()
	v.SetDefault(keyData, dataset.DefaultPath)
	v.SetDefault(keyHost, defaults.Host)
	v.SetDefault(keyPort, defaults.Port)
	v.SetDefault(keyCacheTTL, defaults.CacheTTL)
	v.SetDefault(keyPageSize, defaults.PageSize)
	v.SetDefault(keyChartWidth, render.DefaultSize.Width)
	v.SetDefault(keyChartHeight, render.DefaultSize.Height)
	v.SetDefault(keyBins, defaults.HistogramBins)
	v.SetDefault(keyLogOutput, "stderr")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// LOG_LEVEL and LOG_FORMAT are honoured without the prefix as well.
	_ = v.BindEnv(keyLogLevel, EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv(keyLogFormat, EnvPrefix+"_LOG_FORMAT", "LOG_FORMAT")

	return v
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (bound by the commands)
// 2. Environment variables (INCOMELENS_*)
// 3. .env.local, then .env
// 4. Config file (incomelens.yaml in the working or home directory)
// 5. Defaults
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	loadEnvFiles()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("incomelens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "incomelens"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "read "+configFileName(v, configFile), err)
		}
	}

	return configFromViper(v), nil
}

// configFromViper builds a Config from the current viper state. Called again
// after flags are bound so flag values win.
func configFromViper(v *viper.Viper) *Config {
	return &Config{
		ConfigFile:    v.ConfigFileUsed(),
		DataPath:      v.GetString(keyData),
		Host:          v.GetString(keyHost),
		Port:          v.GetInt(keyPort),
		CacheTTL:      v.GetDuration(keyCacheTTL),
		PageSize:      v.GetInt(keyPageSize),
		ChartWidth:    v.GetInt(keyChartWidth),
		ChartHeight:   v.GetInt(keyChartHeight),
		HistogramBins: v.GetInt(keyBins),
		LogLevel:      v.GetString(keyLogLevel),
		LogFormat:     v.GetString(keyLogFormat),
		LogOutput:     v.GetString(keyLogOutput),
	}
}

// UpdateFromFlags updates the global flag values after cobra parses them.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
}

// ServerConfig returns the server settings of c.
func (c *Config) ServerConfig() server.Config {
	cfg := server.DefaultConfig()
	cfg.Host = c.Host
	cfg.Port = c.Port
	if c.CacheTTL > 0 {
		cfg.CacheTTL = c.CacheTTL
	}
	if c.PageSize > 0 {
		cfg.PageSize = c.PageSize
	}
	if c.HistogramBins > 0 {
		cfg.HistogramBins = c.HistogramBins
	}
	cfg.ChartSize = c.ChartSize()
	return cfg
}

// ChartSize returns the configured PNG size.
func (c *Config) ChartSize() render.Size {
	return render.Size{Width: c.ChartWidth, Height: c.ChartHeight}
}

// loadEnvFiles loads environment variables from .env files.
// godotenv never overrides a variable that is already set, so .env.local is
// loaded first to take precedence over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

func configFileName(v *viper.Viper, configFile string) string {
	if configFile != "" {
		return configFile
	}
	if used := v.ConfigFileUsed(); used != "" {
		return used
	}
	return "incomelens.yaml"
}
