package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `json:"server"`
	Database     DatabaseConfig     `json:"database"`
	Security     SecurityConfig     `json:"security"`
	Logging      LoggingConfig      `json:"logging"`
	Renderer     RendererConfig     `json:"renderer"`
	Verification VerificationConfig `json:"verification"`
	Storage      StorageConfig      `json:"storage"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// PublicURL is the externally reachable base used in certificate QR codes.
	// When empty the request host is used.
	PublicURL    string        `json:"public_url"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents document store configuration
type DatabaseConfig struct {
	URI      string `json:"uri"`
	Username string `json:"username"`
	Password string `json:"password"`
	Hostname string `json:"hostname"`
	Name     string `json:"name"`
	// Memory switches to the in-process store. Data is lost on restart.
	Memory         bool          `json:"memory"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
}

// SecurityConfig
type SecurityConfig struct {
	JWTSecret  string        `json:"jwt_secret"`
	SessionTTL time.Duration `json:"session_ttl"`
}

// LoggingConfig
type LoggingConfig struct {
	Level       string `json:"level"`
	Format      string `json:"format"`
	File        string `json:"file"`
	MaxSizeMB   int    `json:"max_size_mb"`
	MaxBackups  int    `json:"max_backups"`
	MaxAgeDays  int    `json:"max_age_days"`
	Development bool   `json:"development"`
}

// RendererConfig controls certificate PDF rendering
type RendererConfig struct {
	AssetsDir    string        `json:"assets_dir"`
	FetchTimeout time.Duration `json:"fetch_timeout"`
}

// VerificationConfig controls the website ownership challenge
type VerificationConfig struct {
	TagName       string        `json:"tag_name"`
	ContentPrefix string        `json:"content_prefix"`
	Timeout       time.Duration `json:"timeout"`
}

// StorageConfig points at the S3 bucket holding certificate templates
type StorageConfig struct {
	S3Region    string `json:"s3_region"`
	S3Endpoint  string `json:"s3_endpoint"`
	S3AccessKey string `json:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key"`
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         5000,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Name:           "project2",
			ConnectTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			SessionTTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Renderer: RendererConfig{
			AssetsDir:    "assets",
			FetchTimeout: 3 * time.Second,
		},
		Verification: VerificationConfig{
			TagName:       "ca-key",
			ContentPrefix: "ca-key-",
			Timeout:       3 * time.Second,
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

	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}

	return config, config.Validate()
}

func overrideWithEnv(config *Config) error {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("SERVER_PORT has invalid value %q: %w", port, err)
		}
		config.Server.Port = p
	}
	if publicURL := os.Getenv("SERVER_PUBLIC_URL"); publicURL != "" {
		config.Server.PublicURL = publicURL
	}

	// Same variable names the first deployment used for the Atlas cluster
	if uri := os.Getenv("DB_URI"); uri != "" {
		config.Database.URI = uri
	}
	if user := os.Getenv("DB_USERNAME"); user != "" {
		config.Database.Username = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		config.Database.Password = pass
	}
	if host := os.Getenv("DB_HOSTNAME"); host != "" {
		config.Database.Hostname = host
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		config.Database.Name = name
	}
	if mem := os.Getenv("DB_MEMORY"); mem != "" {
		b, err := strconv.ParseBool(mem)
		if err != nil {
			return fmt.Errorf("DB_MEMORY has invalid value %q: %w", mem, err)
		}
		config.Database.Memory = b
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Security.JWTSecret = secret
	}
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("SESSION_TTL has invalid duration %q: %w", ttl, err)
		}
		config.Security.SessionTTL = d
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if file := os.Getenv("LOG_FILE"); file != "" {
		config.Logging.File = file
	}

	if dir := os.Getenv("ASSETS_DIR"); dir != "" {
		config.Renderer.AssetsDir = dir
	}
	if timeout := os.Getenv("FETCH_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("FETCH_TIMEOUT has invalid duration %q: %w", timeout, err)
		}
		config.Renderer.FetchTimeout = d
		config.Verification.Timeout = d
	}

	if region := os.Getenv("S3_REGION"); region != "" {
		config.Storage.S3Region = region
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		config.Storage.S3Endpoint = endpoint
	}
	if key := os.Getenv("S3_ACCESS_KEY"); key != "" {
		config.Storage.S3AccessKey = key
	}
	if secret := os.Getenv("S3_SECRET_KEY"); secret != "" {
		config.Storage.S3SecretKey = secret
	}
	return nil
}

// Validate reports configuration that would make the server unusable
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Server.PublicURL != "" {
		u, err := url.Parse(c.Server.PublicURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("server public_url %q must be an absolute http(s) URL", c.Server.PublicURL)
		}
	}
	if !c.Database.Memory && c.Database.ConnectTimeout <= 0 {
		return fmt.Errorf("database connect_timeout must be positive")
	}
	if c.Renderer.FetchTimeout <= 0 {
		return fmt.Errorf("renderer fetch_timeout must be positive")
	}
	if c.Verification.Timeout <= 0 {
		return fmt.Errorf("verification timeout must be positive")
	}
	if c.Verification.TagName == "" {
		return fmt.Errorf("verification tag_name is required")
	}
	return nil
}

// GetDatabaseURL returns the mongo connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	if c.URI != "" {
		return c.URI
	}
	if c.Hostname == "" {
		return "mongodb://localhost:27017"
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority",
		url.QueryEscape(c.Username), url.QueryEscape(c.Password), c.Hostname)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HasS3 reports whether S3 template storage was configured
func (c *StorageConfig) HasS3() bool {
	return c.S3Region != ""
}
