package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var ErrMissingEnv = errors.New("environment variable is not set")

// Config holds the application's configuration values.
type Config struct {
	HostIP         string        // Host IP for the server
	RESTPort       int           // Port for the REST API
	DBHost         string        // Hostname or IP address for the database
	DBPort         int           // Port number for the database
	DBUser         string        // Username for the database
	DBPassword     string        // Password for the database
	DBName         string        // Name of the database
	RedisAddr      string        // Address of the Redis server; empty runs without Redis
	RedisPassword  string        // Password for Redis
	RedisDB        int           // Redis database index
	GinMode        string        // Mode for the Gin framework (e.g., release, debug, test)
	JWTSecret      string        // Secret key for JWT signing
	JWTIssuer      string        // Issuer claim for JWTs
	LogLevel       string        // Minimum log level
	ProverKey      string        // Key sealing receipts
	ProveTimeout   time.Duration // Bound on a single proving session
	ProveWorkers   int           // Concurrent proving sessions
	DefaultProfile string        // Profile used when a request names none
	MazeGenImageID string        // Expected maze generation image id; empty skips the check
	LeaderboardTTL int           // Seconds a leaderboard lives; 0 keeps it
	SignupCredits  int           // Credits granted to new clients
}

// LoadDotEnv loads a .env file when one is present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("[APP] .env file not found or could not be loaded")
	}
}

// Load reads the server configuration from the environment. Every problem is reported,
// not only the first.
func Load() (Config, error) {
	LoadDotEnv()

	e := &envReader{}
	c := Config{
		DBHost:         e.mustGet("DB_HOST"),
		DBPort:         e.mustGetInt("DB_PORT"),
		DBUser:         e.mustGet("DB_USER"),
		DBPassword:     e.mustGet("DB_PASS"),
		DBName:         e.mustGet("DB_NAME"),
		RedisAddr:      getEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword:  getEnvWithDefault("REDIS_PASSWORD", ""),
		RedisDB:        e.getIntWithDefault("REDIS_DB", 0),
		GinMode:        getEnvWithDefault("GIN_MODE", "release"),
		JWTSecret:      e.mustGet("JWT_SECRET"),
		JWTIssuer:      getEnvWithDefault("JWT_ISSUER", "vinom-zkmaze"),
		HostIP:         getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort:       e.getIntWithDefault("REST_PORT", 8080),
		LogLevel:       getEnvWithDefault("LOG_LEVEL", "info"),
		ProverKey:      e.mustGet("PROVER_KEY"),
		ProveTimeout:   time.Duration(e.getIntWithDefault("PROVE_TIMEOUT_SECONDS", 120)) * time.Second,
		ProveWorkers:   e.getIntWithDefault("PROVE_WORKERS", 2),
		DefaultProfile: getEnvWithDefault("DEFAULT_PROFILE", "balanced"),
		MazeGenImageID: getEnvWithDefault("MAZE_GEN_IMAGE_ID", ""),
		LeaderboardTTL: e.getIntWithDefault("LEADERBOARD_TTL_SECONDS", 0),
		SignupCredits:  e.getIntWithDefault("SIGNUP_CREDITS", 10),
	}
	return c, errors.Join(e.errs...)
}

// ProverSettings reads only what the command line prover needs.
func ProverSettings() (key, profile string) {
	LoadDotEnv()
	return getEnvWithDefault("PROVER_KEY", DevProverKey), getEnvWithDefault("DEFAULT_PROFILE", "balanced")
}

// DevProverKey seals receipts of the command line when PROVER_KEY is unset. Receipts
// sealed with it only verify against the same default.
const DevProverKey = "vinom-zkmaze-development-key"

type envReader struct {
	errs []error
}

// mustGet retrieves the value of an environment variable and records an error if it is not set.
func (e *envReader) mustGet(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		e.errs = append(e.errs, fmt.Errorf("%w: %s", ErrMissingEnv, key))
	}
	return value
}

// mustGetInt retrieves the value of an environment variable as an integer.
func (e *envReader) mustGetInt(key string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		e.errs = append(e.errs, fmt.Errorf("%w: %s", ErrMissingEnv, key))
		return 0
	}
	return e.atoi(key, valueStr)
}

func (e *envReader) getIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return e.atoi(key, valueStr)
}

func (e *envReader) atoi(key, valueStr string) int {
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("environment variable %s must be an integer: %w", key, err))
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
