package types

import (
	"errors"
	"path/filepath"
	"strings"
)

// DefaultDBName is the database file created inside DataDir.
const DefaultDBName = "pets.db"

// Config holds the parameters for opening a Gateway.
type Config struct {
	DataDir string `json:"data_dir" yaml:"data_dir"`
	DBName  string `json:"db_name" yaml:"db_name"`
}

// Config validation errors.
var (
	ErrDBNameInvalid = errors.New("db name must be a plain file name")
)

// Validate checks that the Config is well-formed. An empty DataDir means
// the working directory; an empty DBName means DefaultDBName.
func (c Config) Validate() error {
	if c.DBName == "" {
		return nil
	}
	if c.DBName == "." || c.DBName == ".." ||
		strings.ContainsAny(c.DBName, `/\`) || filepath.Base(c.DBName) != c.DBName {
		return ErrDBNameInvalid
	}
	return nil
}

// DBPath returns the database file path with defaults applied.
func (c Config) DBPath() string {
	dir := c.DataDir
	if dir == "" {
		dir = "."
	}
	name := c.DBName
	if name == "" {
		name = DefaultDBName
	}
	return filepath.Join(dir, name)
}
