package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Ledger storage drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Compliance ComplianceConfig `json:"compliance"`
	Logging    LoggingConfig    `json:"logging"`
	Worker     WorkerConfig     `json:"worker"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	// Driver is "postgres" or "memory". Memory keeps the ledger in process
	// and is lost on restart.
	Driver         string        `json:"driver"`
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
	AutoMigrate    bool          `json:"auto_migrate"`
	LogQueries     bool          `json:"log_queries"`
}

// ComplianceConfig holds the fallback voyage inputs used when a ship has no
// recorded routes for a year.
type ComplianceConfig struct {
	MockInputsEnabled     bool    `json:"mock_inputs_enabled"`
	MockActualIntensity   float64 `json:"mock_actual_intensity"`
	MockEnergyScopeMJ     float64 `json:"mock_energy_scope_mj"`
	DefaultComparisonYear int     `json:"default_comparison_year"`
	SeedRoutes            bool    `json:"seed_routes"`
}

// LoggingConfig
type LoggingConfig struct {
	Level       string `json:"level"`
	Development bool   `json:"development"`
}

// WorkerConfig configures the compliance recompute worker
type WorkerConfig struct {
	Schedule    string        `json:"schedule"`
	Concurrency int           `json:"concurrency"`
	Timeout     time.Duration `json:"timeout"`
}

// Default returns the configuration used when no file or env var says otherwise.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:         DriverPostgres,
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "fueleu_ledger",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
			MaxLifetime:    30 * time.Minute,
			AutoMigrate:    true,
		},
		Compliance: ComplianceConfig{
			MockInputsEnabled:     true,
			MockActualIntensity:   90.5,
			MockEnergyScopeMJ:     5_000_000,
			DefaultComparisonYear: 2025,
			SeedRoutes:            true,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Development: true,
		},
		Worker: WorkerConfig{
			Schedule:    "@every 1h",
			Concurrency: 4,
			Timeout:     10 * time.Minute,
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Compliance.MockInputsEnabled && c.Compliance.MockEnergyScopeMJ < 0 {
		return fmt.Errorf("mock energy scope must not be negative")
	}
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverMemory {
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("worker concurrency must be at least 1")
	}
	return nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		config.Database.Driver = driver
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DATABASE_PORT"); dbPort != "" {
		if p, err := strconv.Atoi(dbPort); err == nil {
			config.Database.Port = p
		}
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		config.Database.SSLMode = sslMode
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if mock := os.Getenv("COMPLIANCE_MOCK_INPUTS"); mock != "" {
		if enabled, err := strconv.ParseBool(mock); err == nil {
			config.Compliance.MockInputsEnabled = enabled
		}
	}
	if seed := os.Getenv("COMPLIANCE_SEED_ROUTES"); seed != "" {
		if enabled, err := strconv.ParseBool(seed); err == nil {
			config.Compliance.SeedRoutes = enabled
		}
	}
	if schedule := os.Getenv("WORKER_SCHEDULE"); schedule != "" {
		config.Worker.Schedule = schedule
	}
	if concurrency := os.Getenv("WORKER_CONCURRENCY"); concurrency != "" {
		if n, err := strconv.Atoi(concurrency); err == nil {
			config.Worker.Concurrency = n
		}
	}
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
