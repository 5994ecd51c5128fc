package config

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/dmitrijs2005/rooznegar/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variables holding secrets.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvS3AccessKey  = "S3_ACCESS_KEY"
	EnvS3SecretKey  = "S3_SECRET_KEY"
	EnvStorageDSN   = "ROOZNEGAR_DSN"
)

// parseEnv loads the dotenv file (-env, default .env) without overriding
// variables already set, then copies the secrets it knows into config.
func parseEnv(config *Config, args []string) {
	if err := godotenv.Load(flagx.EnvFileFlag(args)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning: could not load env file: %v", err)
	}

	setString(&config.GeminiAPIKey, os.Getenv(EnvGeminiAPIKey))
	setString(&config.S3AccessKey, os.Getenv(EnvS3AccessKey))
	setString(&config.S3SecretKey, os.Getenv(EnvS3SecretKey))
	setString(&config.StorageDSN, os.Getenv(EnvStorageDSN))
}
