package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Solver   SolverConfig
	Cache    CacheConfig
	Import   ImportConfig
	Export   ExportConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig governs constraint-programming generation runs.
// The weights are scalar objective coefficients; institutions tune
// these, never solver internals.
type SolverConfig struct {
	TimeLimit      time.Duration
	EdgePenalty    int
	BalancePenalty int
	PreferenceUnit int
	RoomPreference int
	QueueBuffer    int
}

// CacheConfig controls caching of rendered timetable payloads.
type CacheConfig struct {
	Enabled      bool
	TimetableTTL time.Duration
}

// ImportConfig bounds CSV roster uploads.
type ImportConfig struct {
	MaxFileSizeBytes int64
}

// ExportConfig governs rendered exports and their archive.
type ExportConfig struct {
	Title         string
	Dir           string
	SigningSecret string
	ResultTTL     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Solver = SolverConfig{
		TimeLimit:      parseDuration(v.GetString("SOLVER_TIME_LIMIT"), 60*time.Second),
		EdgePenalty:    v.GetInt("SOLVER_EDGE_PENALTY"),
		BalancePenalty: v.GetInt("SOLVER_BALANCE_PENALTY"),
		PreferenceUnit: v.GetInt("SOLVER_PREFERENCE_UNIT"),
		RoomPreference: v.GetInt("SOLVER_ROOM_PREFERENCE"),
		QueueBuffer:    v.GetInt("SOLVER_QUEUE_BUFFER"),
	}

	cfg.Cache = CacheConfig{
		Enabled:      v.GetBool("ENABLE_TIMETABLE_CACHE"),
		TimetableTTL: parseDuration(v.GetString("TIMETABLE_CACHE_TTL"), 10*time.Minute),
	}

	maxImportSize := v.GetInt64("IMPORT_MAX_FILE_SIZE")
	if maxImportSize <= 0 {
		maxImportSize = 5 * 1024 * 1024
	}
	cfg.Import = ImportConfig{MaxFileSizeBytes: maxImportSize}

	cfg.Export = ExportConfig{
		Title:         v.GetString("EXPORT_TITLE"),
		Dir:           v.GetString("EXPORT_DIR"),
		SigningSecret: v.GetString("EXPORT_SIGNING_SECRET"),
		ResultTTL:     parseDuration(v.GetString("EXPORT_RESULT_TTL"), 24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "college_timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SOLVER_TIME_LIMIT", "60s")
	v.SetDefault("SOLVER_EDGE_PENALTY", 1)
	v.SetDefault("SOLVER_BALANCE_PENALTY", 2)
	v.SetDefault("SOLVER_PREFERENCE_UNIT", 3)
	v.SetDefault("SOLVER_ROOM_PREFERENCE", 1)
	v.SetDefault("SOLVER_QUEUE_BUFFER", 4)

	v.SetDefault("ENABLE_TIMETABLE_CACHE", false)
	v.SetDefault("TIMETABLE_CACHE_TTL", "10m")

	v.SetDefault("IMPORT_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("EXPORT_TITLE", "Weekly Timetable")
	v.SetDefault("EXPORT_DIR", "./exports")
	v.SetDefault("EXPORT_SIGNING_SECRET", "change-me")
	v.SetDefault("EXPORT_RESULT_TTL", "24h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
