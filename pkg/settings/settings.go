// Package settings manages persistent user settings for the lanemap CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/lanemap/pkg/platform"
	"github.com/newtron-network/lanemap/pkg/util"
)

// MappingDirEnv overrides the stored mapping directory when set.
const MappingDirEnv = "LANEMAP_MAPPING_DIR"

// Settings holds persistent user preferences
type Settings struct {
	// MappingDir overrides the default platform mapping directory
	MappingDir string `json:"mapping_dir,omitempty"`

	// DefaultPlatform is the platform to use when -p is not specified
	DefaultPlatform string `json:"default_platform,omitempty"`

	// RedisAddr is the default CONFIG_DB address for publish
	RedisAddr string `json:"redis_addr,omitempty"`

	// LogLevel is applied when -v is not given
	LogLevel string `json:"log_level,omitempty"`

	// LanesPerCore numbers ASIC SerDes lanes for publish
	LanesPerCore string `json:"lanes_per_core,omitempty"`
}

// Keys lists the setting names accepted by Get and Set.
func Keys() []string {
	keys := make([]string, 0, len(aliases))
	seen := make(map[string]bool)
	for _, k := range aliases {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

var aliases = map[string]string{
	"mapping_dir":      "mapping_dir",
	"dir":              "mapping_dir",
	"default_platform": "default_platform",
	"platform":         "default_platform",
	"redis_addr":       "redis_addr",
	"redis":            "redis_addr",
	"log_level":        "log_level",
	"lanes_per_core":   "lanes_per_core",
	"lanes":            "lanes_per_core",
}

func (s *Settings) field(key string) (*string, error) {
	switch aliases[key] {
	case "mapping_dir":
		return &s.MappingDir, nil
	case "default_platform":
		return &s.DefaultPlatform, nil
	case "redis_addr":
		return &s.RedisAddr, nil
	case "log_level":
		return &s.LogLevel, nil
	case "lanes_per_core":
		return &s.LanesPerCore, nil
	}
	return nil, fmt.Errorf("unknown setting: %s (valid: %s)", key, strings.Join(Keys(), ", "))
}

// Get returns the value of a named setting.
func (s *Settings) Get(key string) (string, error) {
	f, err := s.field(key)
	if err != nil {
		return "", err
	}
	return *f, nil
}

// Set assigns a named setting. Log levels are checked before they are stored.
func (s *Settings) Set(key, value string) error {
	f, err := s.field(key)
	if err != nil {
		return err
	}
	if aliases[key] == "log_level" && value != "" {
		if _, err := logrus.ParseLevel(value); err != nil {
			return fmt.Errorf("%w: log level %q", util.ErrInvalidConfig, value)
		}
	}
	if aliases[key] == "lanes_per_core" && value != "" {
		if n, err := strconv.Atoi(value); err != nil || n <= 0 {
			return fmt.Errorf("%w: lanes per core %q", util.ErrInvalidConfig, value)
		}
	}
	*f = value
	return nil
}

// GetLanesPerCore returns the stored lanes-per-core count, or 0 when unset
// or unparsable.
func (s *Settings) GetLanesPerCore() int {
	n, err := strconv.Atoi(s.LanesPerCore)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "lanemap_settings.json"
	}
	return filepath.Join(home, ".lanemap", "settings.json")
}

// DefaultAuditPath returns the publish journal path, next to the settings file.
func DefaultAuditPath() string {
	return filepath.Join(filepath.Dir(DefaultSettingsPath()), "audit.log")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetMappingDir returns the mapping directory: the environment override,
// then the stored value, then platform.MappingDir.
func (s *Settings) GetMappingDir() string {
	if dir := os.Getenv(MappingDirEnv); dir != "" {
		return dir
	}
	if s.MappingDir != "" {
		return s.MappingDir
	}
	return platform.MappingDir
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
