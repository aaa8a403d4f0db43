// Package config resolves the settings of a contract run from flags, the
// environment and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fundval/contractdiff/internal/httpjson"
)

// Keys understood by Load. Flags are bound to the same names.
const (
	KeyGoldenBaseURL       = "golden_base_url"
	KeyCandidateBaseURL    = "candidate_base_url"
	KeyGoldenConfigPath    = "golden_config_path"
	KeyCandidateConfigPath = "candidate_config_path"
	KeyAdminUsername       = "admin_username"
	KeyAdminPassword       = "admin_password"
	KeyTimeout             = "timeout"
	KeyCases               = "cases"
	KeyEnableDBCases       = "enable_db_cases"
	KeyEnableDBSeed        = "enable_db_seed"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the resolved configuration of one run.
type Config struct {
	GoldenBaseURL       string        `mapstructure:"golden_base_url"`
	CandidateBaseURL    string        `mapstructure:"candidate_base_url"`
	GoldenConfigPath    string        `mapstructure:"golden_config_path"`
	CandidateConfigPath string        `mapstructure:"candidate_config_path"`
	AdminUsername       string        `mapstructure:"admin_username"`
	AdminPassword       string        `mapstructure:"admin_password"`
	Timeout             time.Duration `mapstructure:"timeout"`
	Cases               []string      `mapstructure:"cases"`
	EnableDBCases       bool          `mapstructure:"enable_db_cases"`
	EnableDBSeed        bool          `mapstructure:"enable_db_seed"`
}

var envNames = map[string]string{
	KeyGoldenBaseURL:       "GOLDEN_BASE_URL",
	KeyCandidateBaseURL:    "CANDIDATE_BASE_URL",
	KeyGoldenConfigPath:    "GOLDEN_CONFIG_PATH",
	KeyCandidateConfigPath: "CANDIDATE_CONFIG_PATH",
	KeyAdminUsername:       "CONTRACT_ADMIN_USERNAME",
	KeyAdminPassword:       "CONTRACT_ADMIN_PASSWORD",
	KeyTimeout:             "CONTRACT_TIMEOUT",
	KeyCases:               "CONTRACT_CASES",
	KeyEnableDBCases:       "ENABLE_DB_CASES",
	KeyEnableDBSeed:        "ENABLE_DB_SEED",
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyGoldenBaseURL, "http://localhost:8000")
	v.SetDefault(KeyCandidateBaseURL, "http://localhost:8001")
	v.SetDefault(KeyAdminUsername, "admin")
	v.SetDefault(KeyAdminPassword, "admin123")
	v.SetDefault(KeyTimeout, httpjson.DefaultTimeout)
	v.SetDefault(KeyEnableDBCases, false)
	v.SetDefault(KeyEnableDBSeed, false)
	for key, env := range envNames {
		// BindEnv only fails without a key.
		_ = v.BindEnv(key, env)
	}
	return v
}

// Load reads the optional file at path into v and decodes the result.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Cases = splitCases(cfg.Cases)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings a run cannot start with.
func (c Config) Validate() error {
	for name, raw := range map[string]string{
		"golden": c.GoldenBaseURL, "candidate": c.CandidateBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s base URL %q is not absolute", ErrInvalidConfig, name, raw)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %s", ErrInvalidConfig, c.Timeout)
	}
	return nil
}

// Wants reports whether the case called name was selected. An empty
// selection runs everything.
func (c Config) Wants(name string) bool {
	if len(c.Cases) == 0 {
		return true
	}
	return slices.Contains(c.Cases, name)
}

// splitCases flattens comma separated entries so `--case a,b` and
// CONTRACT_CASES="a, b" both work.
func splitCases(in []string) []string {
	out := []string{}
	for _, entry := range in {
		for _, name := range strings.Split(entry, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}
