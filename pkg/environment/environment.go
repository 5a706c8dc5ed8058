package environment

import (
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
)

// Production defines the prod environment
const Production = "prod"

// Staging defines the staging environment
const Staging = "staging"

// Dev defines the dev environment
const Dev = "dev"

// Environment holds all configuration values the service reads from its .env file
type Environment struct {
	Environment     string `mapstructure:"APP_ENV"`
	Cors            string `mapstructure:"CORS"`
	Secret          string `mapstructure:"SECRET"`
	Port            string `mapstructure:"PORT"`
	Database        string `mapstructure:"DATABASE"`
	DatabaseUrl     string `mapstructure:"DATABASE_URL"`
	Redis           string `mapstructure:"REDIS"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	Sendinblue      string `mapstructure:"SENDINBLUE"`
	BaseUrl         string `mapstructure:"BASE_URL"`
	FrontendBaseUrl string `mapstructure:"FRONTEND_BASE_URL"`
}

// Global is the active environment, filled by Initialize
var Global Environment

// Initialize reads the .env file into Global
func Initialize() {
	data, err := godotenv.Read(".env")
	if err != nil {
		panic(err)
	}

	err = mapstructure.Decode(data, &Global)
	if err != nil {
		panic(err)
	}
}
