package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Polling PollingConfig `yaml:"polling"`
	Media   MediaConfig   `yaml:"media"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	MockAPI MockAPIConfig `yaml:"mockapi"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	// memory | file | redis | postgres
	Backend  string      `yaml:"backend"`
	FilePath string      `yaml:"file_path"`
	Redis    RedisConfig `yaml:"redis"`
	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type PollingConfig struct {
	Chat          time.Duration `yaml:"chat"`
	Notifications time.Duration `yaml:"notifications"`
}

type MediaConfig struct {
	// multipart | s3
	Provider  string          `yaml:"provider"`
	Multipart MultipartConfig `yaml:"multipart"`
	S3        S3Config        `yaml:"s3"`
}

type MultipartConfig struct {
	UploadURL string            `yaml:"upload_url"`
	FileField string            `yaml:"file_field"`
	Fields    map[string]string `yaml:"fields"`
	URLPath   string            `yaml:"url_path"`
	ImageHost string            `yaml:"image_host"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PublicURL string `yaml:"public_url"`
	Prefix    string `yaml:"prefix"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type MockAPIConfig struct {
	Addr      string `yaml:"addr"`
	JWTSecret string `yaml:"jwt_secret"`
	RateLimit int    `yaml:"rate_limit"`
}

// Default devuelve la config usada cuando no hay archivo.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load carga .env (si existe), expande ${VAR} en el YAML y aplica defaults y
// overrides PETCARE_*. path vacío => solo defaults + env.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	var c Config
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		expanded := []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(expanded, &c); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyEnv()
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8080/api"
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 15 * time.Second
	}
	if c.Session.Backend == "" {
		c.Session.Backend = "file"
	}
	if c.Session.FilePath == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			c.Session.FilePath = dir + string(os.PathSeparator) + "petcare" + string(os.PathSeparator) + "session.json"
		} else {
			c.Session.FilePath = ".petcare-session.json"
		}
	}
	if c.Session.Redis.Key == "" {
		c.Session.Redis.Key = "petcare:session"
	}
	if c.Polling.Chat <= 0 {
		c.Polling.Chat = 3 * time.Second
	}
	if c.Polling.Notifications <= 0 {
		c.Polling.Notifications = 20 * time.Second
	}
	if c.Media.Provider == "" {
		c.Media.Provider = "multipart"
	}
	if c.Media.Multipart.FileField == "" {
		c.Media.Multipart.FileField = "file"
	}
	if c.Media.Multipart.URLPath == "" {
		c.Media.Multipart.URLPath = "secure_url"
	}
	if c.Media.Multipart.ImageHost == "" {
		c.Media.Multipart.ImageHost = "res.cloudinary.com"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.MockAPI.Addr == "" {
		c.MockAPI.Addr = ":8080"
	}
	if c.MockAPI.JWTSecret == "" {
		c.MockAPI.JWTSecret = "dev-secret"
	}
	if c.MockAPI.RateLimit <= 0 {
		c.MockAPI.RateLimit = 20
	}
}

// applyEnv: las variables PETCARE_* pisan el archivo.
func (c *Config) applyEnv() {
	setStr := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setDur := func(dst *time.Duration, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setStr(&c.API.BaseURL, "PETCARE_API_BASE_URL")
	setDur(&c.API.Timeout, "PETCARE_API_TIMEOUT")
	setStr(&c.Session.Backend, "PETCARE_SESSION_BACKEND")
	setStr(&c.Session.FilePath, "PETCARE_SESSION_FILE")
	setStr(&c.Session.Redis.Address, "PETCARE_REDIS_ADDR")
	setStr(&c.Session.Postgres.DSN, "PETCARE_POSTGRES_DSN")
	setDur(&c.Polling.Chat, "PETCARE_POLL_CHAT")
	setDur(&c.Polling.Notifications, "PETCARE_POLL_NOTIFICATIONS")
	setStr(&c.Media.Provider, "PETCARE_MEDIA_PROVIDER")
	setStr(&c.Media.Multipart.UploadURL, "PETCARE_MEDIA_UPLOAD_URL")
	setStr(&c.Media.S3.AccessKey, "PETCARE_S3_ACCESS_KEY")
	setStr(&c.Media.S3.SecretKey, "PETCARE_S3_SECRET_KEY")
	setStr(&c.Logging.Level, "LOG_LEVEL")
	setStr(&c.Logging.Format, "LOG_FORMAT")
	setStr(&c.Metrics.Addr, "PETCARE_METRICS_ADDR")
	setStr(&c.MockAPI.JWTSecret, "PETCARE_MOCKAPI_JWT_SECRET")
	if v := strings.TrimSpace(os.Getenv("PETCARE_REDIS_DB")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Session.Redis.DB = n
		}
	}
}

func (c Config) Validate() error {
	switch c.Session.Backend {
	case "memory", "file":
	case "redis":
		if c.Session.Redis.Address == "" {
			return errors.New("config: session.redis.address required for redis backend")
		}
	case "postgres":
		if c.Session.Postgres.DSN == "" {
			return errors.New("config: session.postgres.dsn required for postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown session backend %q", c.Session.Backend)
	}

	switch c.Media.Provider {
	case "multipart", "s3":
	default:
		return fmt.Errorf("config: unknown media provider %q", c.Media.Provider)
	}
	return nil
}
