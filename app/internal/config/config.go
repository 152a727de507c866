package config

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/marketconnect/llm-session-bridge/app/internal/logger"
)

type Config struct {
	IsDev   bool   `env:"IS_DEV" env-default:"false"`
	IsDebug bool   `env:"IS_DEBUG" env-default:"false"`
	EnvFile string `env:"ENV_FILE" env-default:".env" env-description:"optional dotenv file loaded before the environment is read"`

	Log struct {
		Level string `env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
		File  string `env:"LOG_FILE" env-description:"log destination, stderr when empty"`
	}
	HTTP struct {
		Port int `env:"PORT" env-default:"8000"`
	}
	Session struct {
		DefaultWorkDir string `env:"DEFAULT_WORKDIR" env-description:"directory bound lazily on the first command"`
		CommandsPerMin int    `env:"COMMANDS_PER_MIN" env-default:"0" env-description:"pacing of dispatched commands, 0 disables"`
	}
	Engine struct {
		Command string `env:"ENGINE_COMMAND" env-description:"assistant process run for ask/code messages"`
	}
	Repository struct {
		Type      string `env:"REPOSITORY_TYPE" env-default:"memory"`
		SQLiteDSN string `env:"SQLITE_DSN" env-default:"sessions.db"`
	}
}

// Singleton: Config should only ever be created once.
var instance *Config

// Once is an object that will perform exactly one action.
var once sync.Once

// GetConfig returns pointer to Config.
func GetConfig() *Config {
	once.Do(func() {
		logger.Info("collecting config...")

		if err := loadEnvFile(os.Getenv("ENV_FILE")); err != nil {
			logger.Fatal(err)
		}

		instance = &Config{}

		if err := cleanenv.ReadEnv(instance); err != nil {
			helpText := "Environment variables error:"
			// Returns a description of environment variables with a custom header - helpText
			help, err := cleanenv.GetDescription(instance, &helpText)
			if err != nil {
				logger.Fatal(err)
			}
			logger.Info(help)
			logger.Infof("%+v", instance)

			logger.Fatal(err)
		}
	})
	return instance
}

// loadEnvFile loads a dotenv file without overriding variables already set.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
