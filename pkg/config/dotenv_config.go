package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/apex/log"
	"github.com/mitchellh/go-homedir"
	"github.com/subosito/gotenv"
)

type DotenvConfig struct {
	DotenvPath string
}

func NewDotenvConfig(path string) *DotenvConfig {
	return &DotenvConfig{DotenvPath: path}
}

func (c *DotenvConfig) LoadFromPath(path string) error {
	c.DotenvPath = path
	return gotenv.Load(c.DotenvPath)
}

func (c *DotenvConfig) Load() error {
	return gotenv.Load(c.DotenvPath)
}

func (c *DotenvConfig) GetKey(key string) string {
	return os.Getenv(key)
}

func (c *DotenvConfig) MustGetKey(key string) string {
	val := c.GetKey(key)
	if val == "" {
		log.Fatalf("No such required config key: '%s'", key)
	}

	return val
}

func (c *DotenvConfig) GetKeyWithDefault(key, defaultValue string) string {
	val := c.GetKey(key)
	if val == "" {
		return defaultValue
	}

	return val
}

func (c *DotenvConfig) GetIntKeyWithDefault(key string, defaultValue int) int {
	val := c.GetKey(key)
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}

	return intVal
}

// MustLoadFromVaultDotenv loads the daemon's .env file. It prefers a .env in
// the current directory and falls back to ~/.mediavault/.env. Missing both
// is fatal, the daemon can't run unconfigured.
func MustLoadFromVaultDotenv() Configer {
	c := NewDotenvConfig(".env")
	if err := c.Load(); err == nil {
		SetConfig(c)
		return c
	}

	home, err := homedir.Dir()
	if err != nil {
		log.Fatalf("Unable to determine home directory: %s", err)
	}

	if err := c.LoadFromPath(filepath.Join(home, ".mediavault", ".env")); err != nil {
		log.Fatalf("Unable to load .env from current directory or ~/.mediavault: %s", err)
	}

	SetConfig(c)

	return c
}
