package config

import (
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configDir  string = ".gcmem"
	configFile string = "config.yml"
)

// Config defines all configuration options available to be set through the
// config file. The executable allowlist and backing file names are data
// rather than code so new emulator frontends can be targeted without a
// rebuild.
type Config struct {
	// TargetNames is the list of executable names that identify a running
	// emulator in the process list.
	TargetNames []string `yaml:"target-names"`
	// BackingFiles is the list of shared memory file names that can back
	// the emulated RAM mapping.
	BackingFiles []string `yaml:"backing-files"`
	// SettleDelayMillis is how long to wait after the emulator process
	// appears before scanning its memory map. The RAM backing file is
	// mapped shortly after process start, so scanning immediately would
	// miss it.
	SettleDelayMillis int `yaml:"settle-delay-ms"`
}

// Default returns the compiled in configuration.
func Default() *Config {
	return &Config{
		TargetNames:       []string{"dolphin-emu", "dolphin-emu-qt2", "dolphin-emu-wx"},
		BackingFiles:      []string{"dolphin-emu", "dolphinmem"},
		SettleDelayMillis: 250,
	}
}

// SettleDelay returns the settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMillis) * time.Millisecond
}

// LoadConfig attempts to populate a Config object from the config.yml file.
// Any failure falls back to the defaults; a missing file is created with
// them.
func LoadConfig() *Config {
	err := createConfigPath()
	if err != nil {
		fmt.Printf("Could not create config directory: %v.\n", err)
		return Default()
	}
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		fmt.Printf("Unable to get config file path: %v.\n", err)
		return Default()
	}

	f, err := os.Open(fullConfigFile)
	if err != nil {
		f, err = createDefaultConfig(fullConfigFile)
		if err != nil {
			fmt.Printf("Error creating default config file: %v.\n", err)
			return Default()
		}
	}
	defer func() {
		err := f.Close()
		if err != nil {
			fmt.Printf("Closing config file failed: %v.\n", err)
		}
	}()

	data, err := os.ReadFile(fullConfigFile)
	if err != nil {
		fmt.Printf("Unable to read config data: %v.\n", err)
		return Default()
	}

	c := Default()
	err = yaml.Unmarshal(data, c)
	if err != nil {
		fmt.Printf("Unable to decode config file: %v.\n", err)
		return Default()
	}
	c.fillDefaults()
	return c
}

// SaveConfig will marshal and save the config struct to disk.
func SaveConfig(conf *Config) error {
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(*conf)
	if err != nil {
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

// fillDefaults replaces any field the file left empty with the compiled in
// value, so a partial config file still yields a usable Config.
func (c *Config) fillDefaults() {
	def := Default()
	if len(c.TargetNames) == 0 {
		c.TargetNames = def.TargetNames
	}
	if len(c.BackingFiles) == 0 {
		c.BackingFiles = def.BackingFiles
	}
	if c.SettleDelayMillis <= 0 {
		c.SettleDelayMillis = def.SettleDelayMillis
	}
}

func createDefaultConfig(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create config file: %v", err)
	}
	err = writeDefaultConfig(f)
	if err != nil {
		return nil, fmt.Errorf("unable to write default configuration: %v", err)
	}
	_, err = f.Seek(0, io.SeekStart)
	return f, err
}

func writeDefaultConfig(f *os.File) error {
	out, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(f, "# Configuration file for gcmem.\n\n%s", out)
	return err
}

// createConfigPath creates the directory structure at which all config
// files are saved.
func createConfigPath() error {
	path, err := GetConfigFilePath("")
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0700)
}

// GetConfigFilePath gets the full path to the given config file name.
func GetConfigFilePath(fname string) (string, error) {
	home := getUserHomeDir()
	if home == "" {
		return "", fmt.Errorf("unable to locate home directory")
	}
	return path.Join(home, configDir, fname), nil
}

func getUserHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
