package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BackendURL   string
	DatabasePath string
	Host         string
	Port         string
	CSRFSecret   string
	CookieDomain string
	PollInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		BackendURL:   os.Getenv("BACKEND_URL"),
		DatabasePath: os.Getenv("DATABASE_PATH"),
		Host:         os.Getenv("HOST"),
		Port:         os.Getenv("PORT"),
		CSRFSecret:   os.Getenv("CSRF_SECRET"),
		CookieDomain: os.Getenv("COOKIE_DOMAIN"),
	}

	if c.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "./portal.db"
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == "" {
		c.Port = "3000"
	}
	if c.CSRFSecret == "" {
		return nil, fmt.Errorf("CSRF_SECRET is required")
	}

	c.PollInterval = 5 * time.Second
	if v := os.Getenv("MESSAGE_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("MESSAGE_POLL_INTERVAL: %w", err)
		}
		c.PollInterval = d
	}

	return c, nil
}

func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}
