package config

import (
	"path/filepath"
	"time"
)

// DatabaseFile is the well-known name of a Studio installation's database.
const DatabaseFile = ".ht.sqlite"

// Config represents the application configuration.
type Config struct {
	Installations []Installation `mapstructure:"recent_installations" yaml:"recent_installations"`
	Preferences   Preferences    `mapstructure:"preferences" yaml:"preferences"`
}

// Installation is a recently opened WordPress root and its resolved database.
type Installation struct {
	Root     string    `mapstructure:"root" yaml:"root" json:"root"`
	DBPath   string    `mapstructure:"db_path" yaml:"db_path" json:"db_path"`
	Name     string    `mapstructure:"name" yaml:"name" json:"name"`
	OpenedAt time.Time `mapstructure:"opened_at" yaml:"opened_at" json:"opened_at"`
}

// Preferences holds user preferences.
type Preferences struct {
	PageSize     int           `mapstructure:"page_size" yaml:"page_size"`
	ReadOnly     bool          `mapstructure:"read_only" yaml:"read_only"`
	QueryTimeout time.Duration `mapstructure:"query_timeout" yaml:"query_timeout"`
	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`
}

// DatabasePath returns the database location inside an installation root.
func DatabasePath(root string) string {
	return filepath.Join(root, "wp-content", "database", DatabaseFile)
}

// NewInstallation describes the installation rooted at root.
func NewInstallation(root string) Installation {
	root = filepath.Clean(root)
	return Installation{
		Root:   root,
		DBPath: DatabasePath(root),
		Name:   filepath.Base(root),
	}
}

// DisplayString returns a human-readable summary of the installation.
func (i Installation) DisplayString() string {
	if i.Name == "" || i.Name == i.Root {
		return i.Root
	}
	return i.Name + " (" + i.Root + ")"
}
