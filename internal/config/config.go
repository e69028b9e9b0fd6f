package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Default traffic tile URL template. {x}/{y}/{z} are substituted per tile.
const defaultTileURL = "https://mt1.google.com/vt/lyrs=h,traffic|seconds_into_week:-1&x={x}&y={y}&z={z}"

// Config holds application configuration
type Config struct {
	Port        string
	DBPath      string         // sqlite tier path
	PostgresDSN string         // optional shared tier, empty disables
	NATSURL     string         // optional prediction event stream, empty disables
	TileURL     string         // traffic tile URL template
	Location    *time.Location // service-local timezone for timetable math
}

// Load reads configuration from the environment with sensible defaults
func Load() *Config {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/arrivals.db"
	}

	tileURL := os.Getenv("TRAFFIC_TILE_URL")
	if tileURL == "" {
		tileURL = defaultTileURL
	}

	tzName := os.Getenv("TZ")
	if tzName == "" {
		tzName = "Africa/Algiers"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Printf("config: invalid TZ %q, falling back to UTC: %v", tzName, err)
		loc = time.UTC
	}

	return &Config{
		Port:        port,
		DBPath:      dbPath,
		PostgresDSN: os.Getenv("DATABASE_URL"),
		NATSURL:     os.Getenv("NATS_URL"),
		TileURL:     tileURL,
		Location:    loc,
	}
}
