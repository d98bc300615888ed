package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	JWT      JWT
	SMTP     SMTP
	Quiz     Quiz
	App      App

	GeminiApiKey   string
	GoogleClientID string
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWT struct {
	Secret string
	Expiry time.Duration
}

type SMTP struct {
	Host      string
	Port      string
	User      string
	Password  string
	FromEmail string
	FromName  string
}

// Quiz holds question-selection tuning.
type Quiz struct {
	// Accuracy below this qualifies a question for the toImprove mode.
	ImproveThreshold float64
	FullExamSize     int
	MaxTestSize      int
	TokenTTL         time.Duration
}

type App struct {
	// BaseURL is prepended to token links in outgoing mail.
	BaseURL string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("JWT_EXPIRY", "24h")
	viper.SetDefault("IMPROVE_ACCURACY_THRESHOLD", 0.70)
	viper.SetDefault("FULL_EXAM_QUESTION_COUNT", 40)
	viper.SetDefault("MAX_TEST_QUESTION_COUNT", 40)
	viper.SetDefault("ACTION_TOKEN_TTL", "24h")
	viper.SetDefault("APP_BASE_URL", "http://localhost:8080")
	viper.SetDefault("SMTP_FROM_NAME", "ExamTrainer")

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")

	config.JWT.Secret = viper.GetString("JWT_SECRET")
	config.JWT.Expiry = viper.GetDuration("JWT_EXPIRY")

	config.SMTP.Host = viper.GetString("SMTP_HOST")
	config.SMTP.Port = viper.GetString("SMTP_PORT")
	config.SMTP.User = viper.GetString("SMTP_USER")
	config.SMTP.Password = viper.GetString("SMTP_PASSWORD")
	config.SMTP.FromEmail = viper.GetString("SMTP_FROM_EMAIL")
	config.SMTP.FromName = viper.GetString("SMTP_FROM_NAME")

	config.Quiz.ImproveThreshold = viper.GetFloat64("IMPROVE_ACCURACY_THRESHOLD")
	config.Quiz.FullExamSize = viper.GetInt("FULL_EXAM_QUESTION_COUNT")
	config.Quiz.MaxTestSize = viper.GetInt("MAX_TEST_QUESTION_COUNT")
	config.Quiz.TokenTTL = viper.GetDuration("ACTION_TOKEN_TTL")

	config.App.BaseURL = viper.GetString("APP_BASE_URL")

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")
	config.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")

	log.Info().Str("port", config.Server.Port).Str("db_host", config.Database.Host).Msg("Config loaded")
	return &config, nil
}
