package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vbonduro/lostfound/internal/resolver/cloudinary"
)

const (
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendPostgREST = "postgrest"

	StrategyRemote = "remote"
	StrategyInline = "inline"
	StrategyStored = "stored"

	PhotoLocal = "local"
	PhotoS3    = "s3"
)

type Config struct {
	ListenAddr string
	LogLevel   string
	LogFile    string

	StoreBackend    string
	DBPath          string
	DatabaseURL     string
	SupabaseURL     string
	SupabaseAnonKey string
	SupabaseTable   string

	ImageStrategy string
	ImageHostURL  string
	Destinations  []cloudinary.Destination

	PhotoBackend string
	PhotoPath    string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3Prefix     string

	InlineCompress bool
	InlineMaxWidth int
	InlineQuality  int

	RateLimitRPS   float64
	RateLimitBurst int
}

// uploadFile is the layout of the UPLOAD_CONFIG file.
type uploadFile struct {
	Destinations []cloudinary.Destination `yaml:"destinations"`
}

func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFile:    getEnv("LOG_FILE", ""),

		StoreBackend:    getEnv("STORE_BACKEND", BackendSQLite),
		DBPath:          getEnv("DB_PATH", "/data/lostfound.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SupabaseURL:     getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseTable:   getEnv("SUPABASE_TABLE", "items"),

		ImageStrategy: getEnv("IMAGE_STRATEGY", StrategyInline),
		ImageHostURL:  getEnv("IMAGE_HOST_URL", cloudinary.DefaultBaseURL),

		PhotoBackend: getEnv("PHOTO_BACKEND", PhotoLocal),
		PhotoPath:    getEnv("PHOTO_LOCAL_PATH", "/data/photos"),
		S3Bucket:     getEnv("S3_BUCKET", ""),
		S3Region:     getEnv("S3_REGION", ""),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		S3Prefix:     getEnv("S3_PREFIX", ""),

		InlineCompress: getEnv("INLINE_COMPRESS", "") == "1" || strings.EqualFold(getEnv("INLINE_COMPRESS", ""), "true"),
	}

	var err error
	if cfg.InlineMaxWidth, err = getEnvInt("INLINE_MAX_WIDTH", 800); err != nil {
		return nil, err
	}
	if cfg.InlineQuality, err = getEnvInt("INLINE_QUALITY", 80); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getEnvFloat("RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}

	if cfg.Destinations, err = loadDestinations(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDestinations reads the upload destination list from UPLOAD_CONFIG,
// then UPLOAD_DESTINATIONS, falling back to the built-in defaults.
func loadDestinations() ([]cloudinary.Destination, error) {
	if path := getEnv("UPLOAD_CONFIG", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload config: %w", err)
		}
		var f uploadFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse upload config: %w", err)
		}
		for i, d := range f.Destinations {
			if d.Namespace == "" || d.Preset == "" {
				return nil, fmt.Errorf("upload config: destination %d needs namespace and preset", i+1)
			}
		}
		if len(f.Destinations) > 0 {
			return f.Destinations, nil
		}
	}
	if s := getEnv("UPLOAD_DESTINATIONS", ""); s != "" {
		d, err := cloudinary.ParseDestinations(s)
		if err != nil {
			return nil, err
		}
		if len(d) > 0 {
			return d, nil
		}
	}
	return append([]cloudinary.Destination(nil), cloudinary.DefaultDestinations...), nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendPostgREST:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required for the postgrest backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.ImageStrategy {
	case StrategyRemote, StrategyInline, StrategyStored:
	default:
		return fmt.Errorf("unknown IMAGE_STRATEGY %q", c.ImageStrategy)
	}

	switch c.PhotoBackend {
	case PhotoLocal:
	case PhotoS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 photo backend")
		}
	default:
		return fmt.Errorf("unknown PHOTO_BACKEND %q", c.PhotoBackend)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return f, nil
}
