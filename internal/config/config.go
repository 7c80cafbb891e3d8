package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ArticlePublisher/internal/compliance"
)

const (
	configPathEnv      = "ARTICLE_PUBLISHER_CONFIG"
	dotenvPathEnv      = "ARTICLE_PUBLISHER_DOTENV"
	commerceAPIURLEnv  = "COMMERCE_API_URL"
	commerceTokenEnv   = "COMMERCE_ACCESS_TOKEN"
	storeURLEnv        = "STORE_URL"
	registryBackendEnv = "REGISTRY_BACKEND"
	registryPathEnv    = "REGISTRY_PATH"
	databaseDSNEnv     = "DATABASE_DSN"
	lockBackendEnv     = "LOCK_BACKEND"
	redisAddrEnv       = "REDIS_ADDR"
	logLevelEnv        = "LOG_LEVEL"
)

// Registry and lock backends.
const (
	RegistryYAML     = "yaml"
	RegistryPostgres = "postgres"

	LockFile  = "file"
	LockRedis = "redis"
	LockNone  = "none"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Commerce   CommerceConfig   `yaml:"commerce"`
	Publishing PublishingConfig `yaml:"publishing"`
	Registry   RegistryConfig   `yaml:"registry"`
	Lock       LockConfig       `yaml:"lock"`
	Retry      RetryConfig      `yaml:"retry"`
	Brand      BrandConfig      `yaml:"brand"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CommerceConfig points at the catalog and publishing API.
type CommerceConfig struct {
	APIURL      string `yaml:"apiUrl"`
	StoreURL    string `yaml:"storeUrl"`
	AccessToken string `yaml:"accessToken"`
	PageSize    int    `yaml:"pageSize"`
}

// PublishingConfig holds destination defaults; CLI flags override them.
type PublishingConfig struct {
	Destination string   `yaml:"destination"`
	Tags        []string `yaml:"tags"`
	Published   *bool    `yaml:"published"`
}

// IsPublished reports whether articles go live immediately. Defaults to true.
func (p PublishingConfig) IsPublished() bool {
	return p.Published == nil || *p.Published
}

// RegistryConfig selects where consumed assets are recorded.
type RegistryConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
	Table   string `yaml:"table"`
}

// LockConfig selects the single-writer guard around the registry.
type LockConfig struct {
	Backend   string        `yaml:"backend"`
	Path      string        `yaml:"path"`
	RedisAddr string        `yaml:"redisAddr"`
	Key       string        `yaml:"key"`
	TTL       time.Duration `yaml:"ttl"`
}

// RetryConfig tunes the per-phase retry policy.
type RetryConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseDelay   time.Duration `yaml:"baseDelay"`
}

// BrandConfig holds storefront styling.
type BrandConfig struct {
	AccentColor string `yaml:"accentColor"`
}

// Load reads .env, the YAML configuration (if present) and applies environment overrides.
func Load() Config {
	loadDotenv()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func loadDotenv() {
	path := os.Getenv(dotenvPathEnv)
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	// existing environment variables win over the file
	if err := godotenv.Load(path); err != nil {
		log.Printf("config: cannot load %s: %v", path, err)
	}
}

func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return fileCfg, nil
}

// Validate reports settings the pipeline cannot run without.
func (c Config) Validate() error {
	var problems []string
	if c.Commerce.APIURL == "" {
		problems = append(problems, "commerce.apiUrl is required")
	}
	if c.Commerce.StoreURL == "" {
		problems = append(problems, "commerce.storeUrl is required")
	}

	switch c.Registry.Backend {
	case RegistryYAML:
		if c.Registry.Path == "" {
			problems = append(problems, "registry.path is required for the yaml backend")
		}
	case RegistryPostgres:
		if c.Registry.DSN == "" {
			problems = append(problems, "registry.dsn is required for the postgres backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown registry backend %q", c.Registry.Backend))
	}

	switch c.Lock.Backend {
	case LockFile, LockNone:
	case LockRedis:
		if c.Lock.RedisAddr == "" {
			problems = append(problems, "lock.redisAddr is required for the redis backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown lock backend %q", c.Lock.Backend))
	}

	// the corrector rewrites banned colors to the accent, so a banned accent never converges
	if compliance.IsBannedColor(c.Brand.AccentColor) {
		problems = append(problems, fmt.Sprintf("brand.accentColor %s is a banned legacy color", c.Brand.AccentColor))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// LockPath is the lock file location; it defaults to a sibling of the registry file.
func (c Config) LockPath() string {
	if c.Lock.Path != "" {
		return c.Lock.Path
	}
	if c.Registry.Backend == RegistryYAML && c.Registry.Path != "" {
		return c.Registry.Path + ".lock"
	}
	return "articlepublisher.lock"
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(commerceAPIURLEnv); v != "" {
		c.Commerce.APIURL = v
	}

	if v := os.Getenv(commerceTokenEnv); v != "" {
		c.Commerce.AccessToken = v
	}

	if v := os.Getenv(storeURLEnv); v != "" {
		c.Commerce.StoreURL = v
	}

	if v := os.Getenv(registryBackendEnv); v != "" {
		c.Registry.Backend = strings.ToLower(v)
	}

	if v := os.Getenv(registryPathEnv); v != "" {
		c.Registry.Path = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Registry.DSN = v
	}

	if v := os.Getenv(lockBackendEnv); v != "" {
		c.Lock.Backend = strings.ToLower(v)
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Lock.RedisAddr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Commerce.APIURL != "" {
		base.Commerce.APIURL = override.Commerce.APIURL
	}
	if override.Commerce.StoreURL != "" {
		base.Commerce.StoreURL = override.Commerce.StoreURL
	}
	if override.Commerce.AccessToken != "" {
		base.Commerce.AccessToken = override.Commerce.AccessToken
	}
	if override.Commerce.PageSize > 0 {
		base.Commerce.PageSize = override.Commerce.PageSize
	}

	if override.Publishing.Destination != "" {
		base.Publishing.Destination = override.Publishing.Destination
	}
	if len(override.Publishing.Tags) > 0 {
		base.Publishing.Tags = override.Publishing.Tags
	}
	if override.Publishing.Published != nil {
		base.Publishing.Published = override.Publishing.Published
	}

	if override.Registry.Backend != "" {
		base.Registry.Backend = strings.ToLower(override.Registry.Backend)
	}
	if override.Registry.Path != "" {
		base.Registry.Path = override.Registry.Path
	}
	if override.Registry.DSN != "" {
		base.Registry.DSN = override.Registry.DSN
	}
	if override.Registry.Table != "" {
		base.Registry.Table = override.Registry.Table
	}

	if override.Lock.Backend != "" {
		base.Lock.Backend = strings.ToLower(override.Lock.Backend)
	}
	if override.Lock.Path != "" {
		base.Lock.Path = override.Lock.Path
	}
	if override.Lock.RedisAddr != "" {
		base.Lock.RedisAddr = override.Lock.RedisAddr
	}
	if override.Lock.Key != "" {
		base.Lock.Key = override.Lock.Key
	}
	if override.Lock.TTL > 0 {
		base.Lock.TTL = override.Lock.TTL
	}

	if override.Retry.MaxAttempts > 0 {
		base.Retry.MaxAttempts = override.Retry.MaxAttempts
	}
	if override.Retry.BaseDelay > 0 {
		base.Retry.BaseDelay = override.Retry.BaseDelay
	}

	if override.Brand.AccentColor != "" {
		base.Brand.AccentColor = override.Brand.AccentColor
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Commerce: CommerceConfig{PageSize: 250},
		Registry: RegistryConfig{Backend: RegistryYAML, Path: "asset-registry.yaml", Table: "asset_usage"},
		Lock: LockConfig{
			Backend: LockFile,
			Key:     "articlepublisher:registry-lock",
			TTL:     30 * time.Minute,
		},
		Retry: RetryConfig{MaxAttempts: 3, BaseDelay: 2 * time.Second},
		Brand: BrandConfig{AccentColor: "#2e7d5b"},
	}
}
