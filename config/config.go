package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Source names accepted for Config.Source.
const (
	SourceAuto   = "auto"
	SourceGoCV   = "gocv"
	SourcePion   = "pion"
	SourceScreen = "screen"
	SourceNone   = "none"
)

// Snapshot store capacities used by the two deployments.
const (
	CapacityCompact  = 12
	CapacityExtended = 50
)

// Config holds runtime configuration for the capture pipeline.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Device negotiation
	Source          string `json:"source"`
	DeviceIndex     int    `json:"device_index"`
	PreferredWidth  int    `json:"preferred_width"`
	PreferredHeight int    `json:"preferred_height"`

	// Storage and delivery
	SnapshotCapacity int    `json:"snapshot_capacity"`
	AssetsDir        string `json:"assets_dir"`
	OutputDir        string `json:"output_dir"`
	ShareCommand     string `json:"share_command"`
	OverlayCacheSize int    `json:"overlay_cache_size"`

	// Shutter ritual timing (milliseconds)
	CountdownTickMs  int `json:"countdown_tick_ms"`
	FlashMs          int `json:"flash_ms"`
	PreRollMaxWaitMs int `json:"preroll_max_wait_ms"`
	ShutterMaxWaitMs int `json:"shutter_max_wait_ms"`
	MetadataWaitMs   int `json:"metadata_wait_ms"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:            false,
		Source:           SourceAuto,
		DeviceIndex:      0,
		PreferredWidth:   1280,
		PreferredHeight:  720,
		SnapshotCapacity: CapacityCompact,
		AssetsDir:        "",
		OutputDir:        filepath.Join(xdg.UserDirs.Pictures, "oshicam"),
		ShareCommand:     "",
		OverlayCacheSize: 16,
		CountdownTickMs:  1000,
		FlashMs:          350,
		PreRollMaxWaitMs: 30000,
		ShutterMaxWaitMs: 2500,
		MetadataWaitMs:   1000,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceAuto, SourceGoCV, SourcePion, SourceScreen, SourceNone:
	default:
		c.Source = SourceAuto
	}
	if c.DeviceIndex < 0 {
		c.DeviceIndex = 0
	}
	if c.PreferredWidth <= 0 || c.PreferredHeight <= 0 {
		c.PreferredWidth, c.PreferredHeight = 1280, 720
	}
	if c.SnapshotCapacity <= 0 {
		c.SnapshotCapacity = CapacityCompact
	}
	if c.SnapshotCapacity > CapacityExtended {
		c.SnapshotCapacity = CapacityExtended
	}
	if c.OverlayCacheSize <= 0 {
		c.OverlayCacheSize = 16
	}
	if c.CountdownTickMs <= 0 {
		c.CountdownTickMs = 1000
	}
	if c.FlashMs <= 0 {
		c.FlashMs = 350
	}
	if c.PreRollMaxWaitMs <= 0 {
		c.PreRollMaxWaitMs = 30000
	}
	if c.ShutterMaxWaitMs <= 0 {
		c.ShutterMaxWaitMs = 2500
	}
	if c.MetadataWaitMs <= 0 {
		c.MetadataWaitMs = 1000
	}
	return nil
}

// CountdownTick returns the interval between countdown decrements.
func (c *Config) CountdownTick() time.Duration { return ms(c.CountdownTickMs) }

// FlashDuration returns how long the shutter flash stays visible.
func (c *Config) FlashDuration() time.Duration { return ms(c.FlashMs) }

// PreRollMaxWait bounds the blocking pre-capture voice line.
func (c *Config) PreRollMaxWait() time.Duration { return ms(c.PreRollMaxWaitMs) }

// ShutterMaxWait bounds how long post-roll waits for the shutter sound.
func (c *Config) ShutterMaxWait() time.Duration { return ms(c.ShutterMaxWaitMs) }

// MetadataWait bounds how long playback waits for an unknown clip duration.
func (c *Config) MetadataWait() time.Duration { return ms(c.MetadataWaitMs) }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(filepath.Join("oshicam", "config.json"))
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
