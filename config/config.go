// Package config loads settings from photomap.cfg.json, a .env file and PHOTOMAP_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	FileName  = "photomap.cfg.json"
	EnvPrefix = "PHOTOMAP"
)

// Load sets defaults and reads the config file from configDir.
// A missing file leaves the defaults in place; a malformed one is an error.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("map.center.lat", 35.6762)
	viper.SetDefault("map.center.lng", 139.6503)
	viper.SetDefault("map.zoom", 10)
	viper.SetDefault("map.minZoom", 2)
	viper.SetDefault("map.maxZoom", 19)
	viper.SetDefault("map.padding", 40)

	viper.SetDefault("tiles.roadmapUrl", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	viper.SetDefault("tiles.satelliteUrl", "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}")
	viper.SetDefault("tiles.userAgent", "gio-photomap/1.0")
	viper.SetDefault("tiles.cache", "memory")
	viper.SetDefault("tiles.cacheTtl", "168h")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("places.provider", "nominatim")
	viper.SetDefault("places.googleApiKey", "")
	viper.SetDefault("places.nominatimUrl", "https://nominatim.openstreetmap.org")
	viper.SetDefault("places.timeout", "15s")

	viper.SetDefault("db.driver", "sqlite")
	viper.SetDefault("db.path", "./photomap.db")
	viper.SetDefault("db.dsn", "")

	viper.SetDefault("media.dir", "./media")
	viper.SetDefault("workers", 8)

	// keys such as PHOTOMAP_PLACES_GOOGLEAPIKEY may come from a .env file next to the config
	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

func GetString(key string) string {
	return viper.GetString(key)
}

func GetInt(key string) int {
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	return viper.GetBool(key)
}

func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// MapSettings are the initial view settings of the map.
type MapSettings struct {
	Lat     float64
	Lng     float64
	Zoom    int
	MinZoom int
	MaxZoom int
	Padding int
}

// Map returns the map.* settings.
func Map() MapSettings {
	return MapSettings{
		Lat:     viper.GetFloat64("map.center.lat"),
		Lng:     viper.GetFloat64("map.center.lng"),
		Zoom:    viper.GetInt("map.zoom"),
		MinZoom: viper.GetInt("map.minZoom"),
		MaxZoom: viper.GetInt("map.maxZoom"),
		Padding: viper.GetInt("map.padding"),
	}
}
