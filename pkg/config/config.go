package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/user"
	"path"

	"gopkg.in/yaml.v2"
)

const (
	configDir  string = ".stealthmem"
	configFile string = "config.yml"

	// DefaultDevice is the control device registered by the driver.
	DefaultDevice = "/dev/stealthmem"
	// DefaultBenchCount is the number of calls the bench command times.
	DefaultBenchCount = 100000
	// DefaultHistoryFile is the shell history file name inside the config directory.
	DefaultHistoryFile = ".stealthmem_history"
)

// Config defines all configuration options available to be set through the config file.
type Config struct {
	// Device is the path of the control device.
	Device string `yaml:"device"`

	// BenchCount is how many control calls the bench command issues.
	BenchCount int `yaml:"bench-count"`

	// NoColor disables highlighting of report headers even when stdout
	// is a terminal.
	NoColor bool `yaml:"no-color"`

	// HistoryFile is where the shell keeps its history. Relative paths
	// are resolved against the config directory.
	HistoryFile string `yaml:"history-file"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Device == "" {
		c.Device = DefaultDevice
	}
	if c.BenchCount <= 0 {
		c.BenchCount = DefaultBenchCount
	}
	if c.HistoryFile == "" {
		c.HistoryFile = DefaultHistoryFile
	}
}

// LoadConfig reads the config file at fullConfigFile, or at
// ~/.stealthmem/config.yml when fullConfigFile is empty. A missing file
// yields the defaults.
func LoadConfig(fullConfigFile string) (*Config, error) {
	if fullConfigFile == "" {
		var err error
		fullConfigFile, err = GetConfigFilePath(configFile)
		if err != nil {
			return Default(), nil
		}
	}

	f, err := os.Open(fullConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("unable to open config file: %v", err)
	}
	defer f.Close()

	data, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("unable to read config data: %v", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unable to decode config file %s: %v", fullConfigFile, err)
	}
	c.applyDefaults()

	return &c, nil
}

// SaveConfig will marshal and save the config struct to fullConfigFile.
func SaveConfig(conf *Config, fullConfigFile string) error {
	out, err := yaml.Marshal(*conf)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(path.Dir(fullConfigFile), 0700); err != nil {
		return err
	}

	f, err := os.Create(fullConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(out)
	return err
}

// HistoryPath returns the absolute location of the shell history file.
func (c *Config) HistoryPath() (string, error) {
	if path.IsAbs(c.HistoryFile) {
		return c.HistoryFile, nil
	}
	return GetConfigFilePath(c.HistoryFile)
}

// GetConfigFilePath gets the full path to the given config file name.
func GetConfigFilePath(file string) (string, error) {
	userHomeDir := "."
	usr, err := user.Current()
	if err == nil {
		userHomeDir = usr.HomeDir
	}
	return path.Join(userHomeDir, configDir, file), nil
}
