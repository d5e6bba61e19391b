package config

import (
	"strings"
	"time"

	"github.com/SeakMengs/InstaPilot/internal/env"
)

type Config struct {
	Port string
	ENV  string
	// AppURL is the public base url of this api, used to build the oauth
	// redirect uri registered with the provider.
	AppURL      string
	FrontendURL string
	DB          DatabaseConfig
	Redis       RedisConfig
	RateLimiter RateLimiterConfig
	Mail        MailConfig
	Auth        AuthConfig
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type AuthConfig struct {
	JWT_SECRET           string
	InstagramOAuthConfig InstagramOAuthConfig
}

type InstagramOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	GraphURL     string
}

type DatabaseConfig struct {
	DB_HOST      string
	DB_PORT      string
	DB_DATABASE  string
	DB_USERNAME  string
	DB_PASSWORD  string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type MailConfig struct {
	SEND_GRID  SendGridConfig
	FROM_EMAIL string
}

type SendGridConfig struct {
	API_KEY string
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.ENV, "production")
}

func GetConfig() Config {
	rateLimiteTimeFrame, err := time.ParseDuration(env.GetString("RATE_LIMIT_TIME_FRAME", "1m"))
	if err != nil {
		rateLimiteTimeFrame = 60 * time.Second
	}

	appURL := env.GetString("APP_URL", "http://localhost:8080")

	return Config{
		Port:        env.GetString("PORT", "8080"),
		ENV:         env.GetString("ENV", "development"),
		AppURL:      appURL,
		FrontendURL: env.GetString("FRONTEND_URL", "http://localhost:3000"),
		DB: DatabaseConfig{
			DB_HOST:      env.GetString("DB_HOST", "127.0.0.1"),
			DB_PORT:      env.GetString("DB_PORT", "5432"),
			DB_USERNAME:  env.GetString("DB_USERNAME", "root"),
			DB_PASSWORD:  env.GetString("DB_PASSWORD", ""),
			DB_DATABASE:  env.GetString("DB_DATABASE", "database_name"),
			MaxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 30),
			MaxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 30),
			MaxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
		Redis: RedisConfig{
			Address:  env.GetString("REDIS_ADDRESS", "127.0.0.1:6379"),
			Password: env.GetString("REDIS_PASSWORD", ""),
			DB:       env.GetInt("REDIS_DB", 0),
		},
		// By default if not specified, we allow 5000 requests per minute on all routes
		RateLimiter: RateLimiterConfig{
			RequestsPerTimeFrame: env.GetInt("RATE_LIMIT_REQUESTS_PER_TIME_FRAME", 5000),
			TimeFrame:            rateLimiteTimeFrame,
			Enabled:              env.GetBool("RATE_LIMIT_ENABLED", true),
		},
		Mail: MailConfig{
			FROM_EMAIL: env.GetString("MAIL_FROM_MAIL", ""),
			SEND_GRID: SendGridConfig{
				API_KEY: env.GetString("MAIL_SEND_GRID_API_KEY", ""),
			},
		},
		Auth: AuthConfig{
			JWT_SECRET: env.GetString("AUTH_JWT_SECRET", ""),
			InstagramOAuthConfig: InstagramOAuthConfig{
				ClientID:     env.GetString("INSTAGRAM_APP_ID", ""),
				ClientSecret: env.GetString("INSTAGRAM_APP_SECRET", ""),
				RedirectURL:  env.GetString("INSTAGRAM_OAUTH_CALLBACK", appURL+"/api/v1/oauth/instagram/callback"),
				AuthURL:      env.GetString("INSTAGRAM_AUTH_URL", "https://api.instagram.com/oauth/authorize"),
				TokenURL:     env.GetString("INSTAGRAM_TOKEN_URL", "https://api.instagram.com/oauth/access_token"),
				GraphURL:     env.GetString("INSTAGRAM_GRAPH_URL", "https://graph.instagram.com"),
			},
		},
	}
}
