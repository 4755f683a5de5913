package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int            `json:"port"`
	Env           string         `json:"env"`
	Pepper        string         `json:"pepper"`
	SessionSecret string         `json:"session_secret"`
	CSRFKey       string         `json:"csrf_key"`
	Database      PostgresConfig `json:"database"`
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

func DefaultConfig() Config {
	return Config{
		Port:          1111,
		Env:           "dev",
		Pepper:        "secret-random-string",
		SessionSecret: "secret-session-key",
		CSRFKey:       "32-byte-long-auth-key-for-csrf!!",
		Database:      DefaultPostgresConfig(),
	}
}

func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "",
		Name:     "warbler",
	}
}

// LoadConfig loads configuration from a .config.json file if present,
// otherwise it falls back to the default dev setup. A .env file, if present,
// is loaded into the environment first, and a handful of environment
// variables override whatever the file provided. In production the
// .config.json file is required.
func LoadConfig(prodBool bool) Config {
	godotenv.Load()

	c := DefaultConfig()
	f, err := os.Open(".config.json")
	if err != nil {
		if prodBool {
			panic("a .config.json file is required in production")
		}
	} else {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&c); err != nil {
			panic(err)
		}
		fmt.Println("Successfully loaded .config.json")
	}

	if port := os.Getenv("WARBLER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			panic(fmt.Errorf("invalid WARBLER_PORT: %w", err))
		}
		c.Port = p
	}
	if pepper := os.Getenv("WARBLER_PEPPER"); pepper != "" {
		c.Pepper = pepper
	}
	if secret := os.Getenv("WARBLER_SESSION_SECRET"); secret != "" {
		c.SessionSecret = secret
	}
	if key := os.Getenv("WARBLER_CSRF_KEY"); key != "" {
		c.CSRFKey = key
	}
	return c
}
