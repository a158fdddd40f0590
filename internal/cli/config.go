package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/braude/garage/internal/paths"
)

// Config keys. Each is also read from GARAGE_<KEY>.
const (
	cfgKeyAPIURL      = "api_url"
	cfgKeyTimeout     = "timeout"
	cfgKeyLogLevel    = "log_level"
	cfgKeyLogFormat   = "log_format"
	cfgKeySequencing  = "sequencing"
	cfgKeyDataDir     = "data_dir"
	cfgKeyAddr        = "addr"
	cfgKeyCORSOrigins = "cors_origins"
)

const (
	envPrefix = "GARAGE"

	defaultAPIURL   = "http://localhost:8080"
	defaultTimeout  = 30 * time.Second
	defaultLogLevel = "warn"
	defaultAddr     = ":8080"
)

// flagKeys maps flags to the config keys they override.
var flagKeys = map[string]string{
	"api-url":      cfgKeyAPIURL,
	"timeout":      cfgKeyTimeout,
	"log-level":    cfgKeyLogLevel,
	"data-dir":     cfgKeyDataDir,
	"addr":         cfgKeyAddr,
	"cors-origins": cfgKeyCORSOrigins,
}

// fileConfig is the shape of config.yaml written by init.
type fileConfig struct {
	APIURL      string   `yaml:"api_url"`
	Timeout     string   `yaml:"timeout"`
	LogLevel    string   `yaml:"log_level"`
	LogFormat   string   `yaml:"log_format"`
	Sequencing  string   `yaml:"sequencing"`
	DataDir     string   `yaml:"data_dir,omitempty"`
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		APIURL:     defaultAPIURL,
		Timeout:    defaultTimeout.String(),
		LogLevel:   defaultLogLevel,
		LogFormat:  "console",
		Sequencing: "latest",
		Addr:       defaultAddr,
	}
}

// loadConfig reads config.yaml from dir, if present, layered under the
// environment and the flags in fs that were set on the command line. A
// missing file is not an error.
func loadConfig(dir string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	def := defaultFileConfig()
	v.SetDefault(cfgKeyAPIURL, def.APIURL)
	v.SetDefault(cfgKeyTimeout, defaultTimeout)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyLogFormat, def.LogFormat)
	v.SetDefault(cfgKeySequencing, def.Sequencing)
	v.SetDefault(cfgKeyAddr, def.Addr)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, sysError(fmt.Errorf("bind flag %s: %w", name, err))
			}
		}
	}

	path := filepath.Join(dir, paths.ConfigFileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, userError(fmt.Errorf("read config %s: %w", path, err))
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with defaults. It reports whether
// the file was written.
func writeConfigIfMissing(dir string) (bool, error) {
	path := filepath.Join(dir, paths.ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	cfg := defaultFileConfig()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# garage CLI configuration. Keys may also be set as GARAGE_<KEY>.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
