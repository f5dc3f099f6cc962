package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values
type Config struct {
	Addr         string        `yaml:"addr"`
	DBPath       string        `yaml:"db_path"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// Storefront customer identity (HS256 shared with the shop)
	JWTSecret string `yaml:"jwt_secret"`

	// Origins allowed to call /reg from the browser; empty disables CORS
	CORSOrigins []string `yaml:"cors_origins"`

	// Per client IP throttle on serial validation
	ValidateRate  float64 `yaml:"validate_rate"`
	ValidateBurst int     `yaml:"validate_burst"`

	// SQL dumps; an empty dir puts them in "backups" next to the database
	BackupPath string `yaml:"backup_dir"`
	BackupKeep int    `yaml:"backup_keep"`

	Mail  MailConfig  `yaml:"mail"`
	Proof ProofConfig `yaml:"proof"`
	S3    S3Config    `yaml:"s3"`
	Redis RedisConfig `yaml:"redis"`

	DBPathSource string // where DBPath was set from: "default", "yaml file", or "env var"
	DemoMode     bool   // load sample data on new database (set via -demo flag)
}

type MailConfig struct {
	OperatorEmail string `yaml:"operator_email"`
	SMTPHost      string `yaml:"smtp_host"` // empty logs mail instead of sending it
	SMTPPort      int    `yaml:"smtp_port"`
	SMTPUsername  string `yaml:"smtp_username"`
	SMTPPassword  string `yaml:"smtp_password"`
	From          string `yaml:"from"`
	FromName      string `yaml:"from_name"`
}

type ProofConfig struct {
	Backend     string `yaml:"backend"` // "disk" or "s3"
	Dir         string `yaml:"dir"`
	BaseURL     string `yaml:"base_url"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

type S3Config struct {
	Endpoint        string        `yaml:"endpoint"`
	Region          string        `yaml:"region"`
	Bucket          string        `yaml:"bucket"`
	Prefix          string        `yaml:"prefix"`
	AccessKeyID     string        `yaml:"access_key_id"`
	SecretAccessKey string        `yaml:"secret_access_key"`
	URLExpiry       time.Duration `yaml:"url_expiry"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"` // empty keeps sessions in memory
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Load loads configuration from YAML file and overrides with env vars if
// present. A .env file in the working directory is read first; it never
// replaces variables already set in the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Defaults
	cfg := &Config{
		Addr:          ":8080",
		DBPath:        "./prodreg.db",
		DBPathSource:  "default",
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   120 * time.Second,
		ValidateRate:  1,
		ValidateBurst: 10,
		BackupKeep:    14,
		Mail: MailConfig{
			SMTPPort: 587,
			FromName: "Product Registration",
		},
		Proof: ProofConfig{
			Backend:     "disk",
			Dir:         "./proofs",
			BaseURL:     "/proofs",
			MaxUploadMB: 10,
		},
		S3: S3Config{
			Region:    "us-east-1",
			URLExpiry: time.Hour,
		},
	}

	// Load from YAML if file exists
	if f, err := os.Open(path); err == nil {
		defer f.Close()
		prevDBPath := cfg.DBPath
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(cfg); err != nil {
			return nil, err
		}
		if cfg.DBPath != prevDBPath {
			cfg.DBPathSource = "yaml file"
		}
	}

	// Override with environment variables
	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
		cfg.DBPathSource = "env var"
	}
	envString("AUTH_JWT_SECRET", &cfg.JWTSecret)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	envString("OPERATOR_EMAIL", &cfg.Mail.OperatorEmail)
	envString("SMTP_HOST", &cfg.Mail.SMTPHost)
	envString("SMTP_USERNAME", &cfg.Mail.SMTPUsername)
	envString("SMTP_PASSWORD", &cfg.Mail.SMTPPassword)
	envString("SMTP_FROM", &cfg.Mail.From)
	envString("SMTP_FROM_NAME", &cfg.Mail.FromName)

	envString("PROOF_BACKEND", &cfg.Proof.Backend)
	envString("PROOF_DIR", &cfg.Proof.Dir)
	envString("PROOF_BASE_URL", &cfg.Proof.BaseURL)

	envString("S3_ENDPOINT", &cfg.S3.Endpoint)
	envString("S3_REGION", &cfg.S3.Region)
	envString("S3_BUCKET", &cfg.S3.Bucket)
	envString("S3_PREFIX", &cfg.S3.Prefix)
	envString("S3_ACCESS_KEY_ID", &cfg.S3.AccessKeyID)
	envString("S3_SECRET_ACCESS_KEY", &cfg.S3.SecretAccessKey)

	envString("BACKUP_DIR", &cfg.BackupPath)

	envString("REDIS_ADDR", &cfg.Redis.Addr)
	envString("REDIS_PASSWORD", &cfg.Redis.Password)

	if err := envInt("SMTP_PORT", &cfg.Mail.SMTPPort); err != nil {
		return nil, err
	}
	if err := envInt("REDIS_DB", &cfg.Redis.DB); err != nil {
		return nil, err
	}
	if v := os.Getenv("PROOF_MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("PROOF_MAX_UPLOAD_MB: %w", err)
		}
		cfg.Proof.MaxUploadMB = n
	}
	if v := os.Getenv("S3_URL_EXPIRY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("S3_URL_EXPIRY: %w", err)
		}
		cfg.S3.URLExpiry = d
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Proof.Backend {
	case "disk":
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("proof backend s3 requires s3.bucket")
		}
	default:
		return fmt.Errorf("unknown proof backend %q", c.Proof.Backend)
	}
	if c.Proof.MaxUploadMB <= 0 {
		return errors.New("proof.max_upload_mb must be positive")
	}
	return nil
}

// BackupDir is where database dumps are written.
func (c *Config) BackupDir() string {
	if c.BackupPath != "" {
		return c.BackupPath
	}
	return filepath.Join(filepath.Dir(c.DBPath), "backups")
}

// MaxUploadBytes is the proof size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Proof.MaxUploadMB << 20
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
