// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration. Required variables are enforced
// by must(); scheduling policy knobs default to the values the booking
// rules were designed around and only need overriding in tests or unusual
// deployments.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to verify JWTs issued by the auth service

	RestDay         time.Weekday // weekday on which no templates may be scheduled
	RoomCount       int          // size of the fixed room pool (rooms 1..RoomCount)
	MinLeadDays     int          // minimum days between booking and class date
	MaxLeadDays     int          // maximum days between booking and class date
	GenerationDays  int          // rolling window for bulk instance generation
	GenerateCron    string       // cron spec for the nightly generation job
}

// Load reads configuration from the environment. Missing required variables
// abort startup with a fatal log message.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),
		Port:      must("APP_PORT"),
		DBUser:    must("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"), // empty allowed
		DBHost:    must("DB_HOST"),
		DBPort:    must("DB_PORT"),
		DBName:    must("DB_NAME"),
		JWTSecret: must("JWT_SECRET"),

		RestDay:        weekdayEnv("REST_DAY", time.Sunday),
		RoomCount:      intEnv("ROOM_COUNT", 5),
		MinLeadDays:    intEnv("RESERVE_MIN_LEAD_DAYS", 1),
		MaxLeadDays:    intEnv("RESERVE_MAX_LEAD_DAYS", 15),
		GenerationDays: intEnv("GENERATION_WINDOW_DAYS", 15),
		GenerateCron:   getenv("GENERATE_CRON", "0 3 * * *"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

// weekdayEnv parses an English weekday name ("Sunday", "monday", ...).
func weekdayEnv(key string, def time.Weekday) time.Weekday {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(v, d.String()) {
			return d
		}
	}
	log.Fatalf("invalid weekday for %s: %q", key, v)
	return def
}
