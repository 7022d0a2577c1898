package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variables that relocate memy's files.
const (
	EnvConfigDir = "MEMY_CONFIG_DIR"
	EnvDBDir     = "MEMY_DB_DIR"
)

// AppName is the directory name used under each XDG base directory.
const AppName = "memy"

// FileName is the configuration file name inside the config directory.
const FileName = "memy.toml"

// FilePath returns the location of memy.toml: $MEMY_CONFIG_DIR/memy.toml when
// set, otherwise inside the XDG config home.
func FilePath() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return filepath.Join(dir, FileName)
	}
	return filepath.Join(xdg.ConfigHome, AppName, FileName)
}

// DBDir returns the directory that holds the database and whether it came
// from $MEMY_DB_DIR. A directory from the environment must already exist;
// the XDG default may be created by the caller.
func DBDir() (dir string, fromEnv bool) {
	if dir := os.Getenv(EnvDBDir); dir != "" {
		return dir, true
	}
	return filepath.Join(xdg.StateHome, AppName), false
}

// FasdFile returns the default location of the fasd database.
func FasdFile() string {
	return filepath.Join(xdg.CacheHome, "fasd")
}

// AutojumpFile returns the default location of the autojump database.
func AutojumpFile() string {
	return filepath.Join(xdg.DataHome, "autojump", "autojump.txt")
}
