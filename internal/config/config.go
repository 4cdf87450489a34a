// Package config loads the server's YAML configuration file, mirroring
// the load-then-apply-defaults pattern used throughout this codebase.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration loaded from server.yaml.
type Config struct {
	ListenAddress string `yaml:"listen_address"`

	// Status-ping metadata.
	VersionName string `yaml:"version_name"`
	ProtocolID  int32  `yaml:"protocol_id"`
	Motd        string `yaml:"motd"`
	IconPath    string `yaml:"icon_path"`
	MaxPlayers  int    `yaml:"max_players"`

	// World data the provider reads at startup.
	WorldDataDir string `yaml:"world_data_dir"`
	DimensionName string `yaml:"dimension_name"`

	// Liveness tuning.
	KeepAliveIntervalSeconds int `yaml:"keep_alive_interval_seconds"`
	KeepAliveTimeoutTicks    int `yaml:"keep_alive_timeout_ticks"`
}

// Load reads and parses path, applying defaults for any field left at its
// YAML zero value.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: could not open %s: %w", path, err)
	}
	defer f.Close()

	var c Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("config: invalid %s: %w", path, err)
	}
	applyDefaults(&c)
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.ListenAddress == "" {
		c.ListenAddress = "0.0.0.0:25565"
	}
	if c.VersionName == "" {
		c.VersionName = "1.20.4"
	}
	if c.ProtocolID == 0 {
		c.ProtocolID = 765
	}
	if c.Motd == "" {
		c.Motd = "A Minecraft Server"
	}
	if c.MaxPlayers == 0 {
		c.MaxPlayers = 20
	}
	if c.WorldDataDir == "" {
		c.WorldDataDir = "world"
	}
	if c.DimensionName == "" {
		c.DimensionName = "minecraft:overworld"
	}
	if c.KeepAliveIntervalSeconds == 0 {
		c.KeepAliveIntervalSeconds = 15
	}
	if c.KeepAliveTimeoutTicks == 0 {
		c.KeepAliveTimeoutTicks = 2
	}
}
