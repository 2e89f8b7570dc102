package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	// DatabaseURL пустой означает хранилище в памяти.
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	CalculatorProfilesPath string
	CalculatorProfile      string

	RandomSeed    uint64
	HasRandomSeed bool

	// AutoPlayInterval включает фоновое проведение туров; 0 выключает.
	AutoPlayInterval time.Duration
	SeedOnEmpty      bool

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
	R2Endpoint        string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	jwtKey := getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080" // Порт по умолчанию
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		DatabaseURL:            getenv("DATABASE_URL"),
		JWTSecretKey:           jwtKey,
		ServerPort:             port,
		CalculatorProfilesPath: getenv("CALCULATOR_PROFILES_PATH"),
		CalculatorProfile:      getenv("CALCULATOR_PROFILE"),
		R2AccountID:            getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:          getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:      getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:           getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:        getenv("R2_PUBLIC_BASE_URL"),
		R2Endpoint:             getenv("R2_ENDPOINT"),
	}
	if cfg.CalculatorProfile == "" {
		cfg.CalculatorProfile = "default"
	}

	if s := getenv("RANDOM_SEED"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RANDOM_SEED environment variable: %w", err)
		}
		cfg.RandomSeed, cfg.HasRandomSeed = seed, true
	}

	if s := getenv("AUTO_PLAY_INTERVAL"); s != "" {
		interval, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTO_PLAY_INTERVAL environment variable: %w", err)
		}
		if interval < 0 {
			return nil, fmt.Errorf("AUTO_PLAY_INTERVAL must not be negative, got %s", interval)
		}
		cfg.AutoPlayInterval = interval
	}

	if s := getenv("SEED_ON_EMPTY"); s != "" {
		seed, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED_ON_EMPTY environment variable: %w", err)
		}
		cfg.SeedOnEmpty = seed
	}

	return cfg, nil
}
