// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// defaultJWTSecret — секрет для локальной разработки. В продакшене
// запуск с ним запрещён.
const defaultJWTSecret = "interview-app-secret"

// Config общая структура для хранения настроек
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	Storage    `yaml:"storage"`
	JWTToken   `yaml:"jwttoken"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":5000"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Storage структура для настройки документного хранилища
type Storage struct {
	DataDir            string        `yaml:"data_dir" env:"DATA_DIR" env-default:"./data"`
	CompactionInterval time.Duration `yaml:"compaction_interval" env:"COMPACTION_INTERVAL" env-default:"30s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET" env-default:"interview-app-secret"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"720h"`
}

// MustLoad загружает конфиг из файла по пути CONFIG_PATH, а при его отсутствии —
// из переменных окружения с дефолтами. Завершает процесс при ошибке чтения
// и при попытке запуска в продакшене с секретом по умолчанию.
func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			log.Fatalf("file: %s - does not exist", configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config from env: %s", err)
	}

	if cfg.Env == "prod" && cfg.JWTSecretKey == defaultJWTSecret {
		log.Fatal("JWT_SECRET must be set explicitly in prod")
	}
	return &cfg
}
