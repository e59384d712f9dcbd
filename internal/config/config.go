// Package config holds the daemon configuration: peer socket endpoints,
// the music library location, logging and history-store settings. Values
// load from a yaml file with environment overrides; a missing file is
// created with defaults on first run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ConfigPaths holds the resolved filesystem locations for the daemon.
type ConfigPaths struct {
	BaseDir      string `json:"base_dir" yaml:"base_dir"`           // Base directory for config files
	ActiveConfig string `json:"active_config" yaml:"active_config"` // Path to the config file
	DataDir      string `json:"data_dir" yaml:"data_dir"`           // Directory for application data
	DBFile       string `json:"db_file" yaml:"db_file"`             // Path to the play-history database
	LogDir       string `json:"log_dir" yaml:"log_dir"`             // Directory for log files
}

// Config holds all daemon configuration.
type Config struct {
	// InstanceID identifies this daemon instance in play-history records.
	InstanceID string `json:"instance_id" yaml:"instance_id"`

	// System paths configuration
	SystemPaths ConfigPaths `json:"system_paths" yaml:"system_paths"`

	// Player peer (mpv JSON IPC socket)
	Player PlayerConfig `json:"player" yaml:"player"`

	// Signal peer (periodic sample bridge socket)
	Signal SignalConfig `json:"signal" yaml:"signal"`

	// Music library
	Library LibraryConfig `json:"library" yaml:"library"`

	// Logging configuration
	Log LogConfig `json:"log" yaml:"log"`

	// Play-history storage
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// PlayerConfig configures the connection to the media player.
type PlayerConfig struct {
	// SocketPath is the player's IPC endpoint, created by starting mpv
	// with --input-ipc-server=<path>.
	SocketPath string `json:"socket_path" yaml:"socket_path"`

	// LoadedMarker is the substring that identifies the player's
	// file-finished-loading event on the wire.
	LoadedMarker string `json:"loaded_marker" yaml:"loaded_marker"`
}

// SignalConfig configures the connection to the signal bridge.
type SignalConfig struct {
	SocketPath string `json:"socket_path" yaml:"socket_path"`

	// TickToken blocks until the next periodic tick; ProbeToken answers
	// immediately with the current sample.
	TickToken  string `json:"tick_token" yaml:"tick_token"`
	ProbeToken string `json:"probe_token" yaml:"probe_token"`
}

// LibraryConfig configures the music library scan.
type LibraryConfig struct {
	Dir        string   `json:"dir" yaml:"dir"`
	Extensions []string `json:"extensions" yaml:"extensions"`

	// ShuffleSeed fixes the playback order when non-zero; 0 means a
	// fresh random order each start.
	ShuffleSeed int64 `json:"shuffle_seed" yaml:"shuffle_seed"`
}

// LogConfig holds logging-related configuration.
type LogConfig struct {
	Level             string `json:"level" yaml:"level"`
	EnableFileLogging bool   `json:"enable_file_logging" yaml:"enable_file_logging"`
}

// StorageConfig holds play-history storage configuration.
type StorageConfig struct {
	DBPath      string `json:"db_path" yaml:"db_path"`
	KeepRecords int    `json:"keep_records" yaml:"keep_records"`
}

// GetConfigPaths returns the platform-specific configuration paths.
func GetConfigPaths() (*ConfigPaths, error) {
	baseDir := os.Getenv("SIGDRIFT_CONFIG_DIR")
	if baseDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		switch runtime.GOOS {
		case "darwin":
			baseDir = filepath.Join(configDir, "com.davrins.sigdrift")
		default:
			baseDir = filepath.Join(configDir, "sigdrift")
		}
	}

	dataDir := os.Getenv("SIGDRIFT_DATA_DIR")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		switch runtime.GOOS {
		case "darwin":
			dataDir = filepath.Join(homeDir, "Library", "Application Support", "sigdrift")
		default:
			dataDir = filepath.Join(homeDir, ".local", "share", "sigdrift")
		}
	}

	return &ConfigPaths{
		BaseDir:      baseDir,
		ActiveConfig: filepath.Join(baseDir, "config.yaml"),
		DataDir:      dataDir,
		DBFile:       filepath.Join(dataDir, "history.db"),
		LogDir:       filepath.Join(dataDir, "logs"),
	}, nil
}

// DefaultConfig returns the configuration used on first run.
func DefaultConfig() *Config {
	paths, _ := GetConfigPaths() // Ignore error, will use fallback paths
	if paths == nil {
		paths = &ConfigPaths{}
	}

	homeDir, _ := os.UserHomeDir()

	return &Config{
		InstanceID:  uuid.New().String(),
		SystemPaths: *paths,
		Player: PlayerConfig{
			SocketPath:   "/tmp/mpvsocket",
			LoadedMarker: "file-loaded",
		},
		Signal: SignalConfig{
			SocketPath: "/tmp/sigdrift-bridge.sock",
			TickToken:  "next",
			ProbeToken: "get",
		},
		Library: LibraryConfig{
			Dir:        filepath.Join(homeDir, "Music"),
			Extensions: []string{".mp3", ".flac", ".ogg", ".opus", ".wav", ".m4a"},
		},
		Log: LogConfig{
			Level:             "info",
			EnableFileLogging: true,
		},
		Storage: StorageConfig{
			DBPath:      paths.DBFile,
			KeepRecords: 10000,
		},
	}
}

// Load loads the configuration from the specified file or creates the
// default config if the file does not exist.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		paths, err := GetConfigPaths()
		if err != nil {
			return nil, err
		}
		configPath = paths.ActiveConfig
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			if err := cfg.Save(configPath); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// Save writes the configuration to the specified file, creating parent
// directories as needed.
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func overrideFromEnv(cfg *Config) {
	if val := os.Getenv("SIGDRIFT_INSTANCE_ID"); val != "" {
		cfg.InstanceID = val
	}
	if val := os.Getenv("SIGDRIFT_PLAYER_SOCKET"); val != "" {
		cfg.Player.SocketPath = val
	}
	if val := os.Getenv("SIGDRIFT_SIGNAL_SOCKET"); val != "" {
		cfg.Signal.SocketPath = val
	}
	if val := os.Getenv("SIGDRIFT_LIBRARY_DIR"); val != "" {
		cfg.Library.Dir = val
	}
	if val := os.Getenv("SIGDRIFT_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("SIGDRIFT_SHUFFLE_SEED"); val != "" {
		if seed, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Library.ShuffleSeed = seed
		}
	}
	if val := os.Getenv("SIGDRIFT_DATA_DIR"); val != "" {
		cfg.SystemPaths.DataDir = val
	}
}
