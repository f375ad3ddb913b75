package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	configDir  = ".studiodb"
	configFile = "config"
	configType = "yaml"
	envPrefix  = "STUDIODB"
)

// Store loads and saves the configuration file. The recent installation log
// is written through SaveInstallations so it survives restarts.
type Store struct {
	mu  sync.Mutex
	v   *viper.Viper
	dir string
	cfg *Config
}

// Load reads the configuration from dir/config.yaml, or ~/.studiodb when dir
// is empty. A missing file yields the defaults.
func Load(dir string) (*Store, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("config dir: %w", err)
		}
		dir = d
	}

	v := viper.New()
	v.SetConfigName(configFile)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("preferences.page_size", 50)
	v.SetDefault("preferences.read_only", false)
	v.SetDefault("preferences.query_timeout", "0s")
	v.SetDefault("preferences.log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &Store{v: v, dir: dir, cfg: cfg}, nil
}

// Config returns a snapshot of the loaded configuration. Changes to the
// snapshot are not seen by the store; use SetPreferences or
// SaveInstallations to persist them.
func (s *Store) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.cfg
	c.Installations = append([]Installation(nil), s.cfg.Installations...)
	return c
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, configFile+"."+configType)
}

// SaveInstallations replaces the persisted installation log.
func (s *Store) SaveInstallations(installs []Installation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Installations = append([]Installation(nil), installs...)
	return s.saveLocked()
}

// SetPreferences replaces the preferences and writes the file.
func (s *Store) SetPreferences(p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Preferences = p
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	// Preferences are set key by key: a struct value under "preferences"
	// would shadow the nested defaults unpredictably when viper flattens them.
	p := s.cfg.Preferences
	s.v.Set("recent_installations", s.cfg.Installations)
	s.v.Set("preferences.page_size", p.PageSize)
	s.v.Set("preferences.read_only", p.ReadOnly)
	s.v.Set("preferences.query_timeout", p.QueryTimeout.String())
	s.v.Set("preferences.log_level", p.LogLevel)

	return s.v.WriteConfigAs(s.Path())
}

// DefaultDir returns ~/.studiodb.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}
