package main

import (
	"time"

	"github.com/BurntSushi/toml"

	"github.com/rebridge-io/rebridge/driver/goredisdriver"
	"github.com/rebridge-io/rebridge/driver/redigodriver"
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// SyncConfig holds the configuration for the synchronous driver.
type SyncConfig struct {
	Addr         string
	Password     string
	MaxIdleConns int
	IdleTimeout  duration
}

func (c SyncConfig) driverConfig() redigodriver.Config {
	return redigodriver.Config{
		Addr:         c.Addr,
		Password:     c.Password,
		MaxIdleConns: c.MaxIdleConns,
		IdleTimeout:  c.IdleTimeout.Duration,
	}
}

// AsyncConfig holds the configuration for the clustered driver.
type AsyncConfig struct {
	Addrs    []string
	Password string
	DB       int
	Cluster  bool
}

func (c AsyncConfig) driverConfig() goredisdriver.Config {
	return goredisdriver.Config{
		Addrs:    c.Addrs,
		Password: c.Password,
		DB:       c.DB,
		Cluster:  c.Cluster,
	}
}

// Config holds configuration for initializing the server and its
// backing drivers.
type Config struct {
	Password string
	Sync     SyncConfig
	Async    AsyncConfig
}

func readConfig(configPath string) (Config, error) {
	config := Config{
		Sync: SyncConfig{
			Addr:         "127.0.0.1:6380",
			MaxIdleConns: 50,
			IdleTimeout:  duration{30 * time.Second},
		},
		Async: AsyncConfig{
			Addrs: []string{"127.0.0.1:6381"},
		},
	}

	_, err := toml.DecodeFile(configPath, &config)
	return config, err
}
