package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Postgres struct {
	URL      string `json:"url"`
	Host     string `json:"host"`
	Port     uint16 `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DbName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// Enabled reports whether a database is configured at all. The server runs
// without auth and records otherwise.
func (p Postgres) Enabled() bool {
	return p.URL != "" || p.Host != ""
}

func (p Postgres) DbURL() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		url.QueryEscape(p.Password),
		p.Host,
		p.Port,
		p.DbName,
		p.SSLMode,
	)
}

func loadPassword() (string, bool, error) {
	password, ok := os.LookupEnv("POSTGRES_PASSWORD")
	if ok {
		return password, true, nil
	}

	passwordFile, ok := os.LookupEnv("POSTGRES_PASSWORD_FILE")
	if !ok {
		return "", false, nil
	}

	data, err := os.ReadFile(passwordFile)
	if err != nil {
		return "", false, fmt.Errorf("unable to read from password file: %w", err)
	}

	return strings.TrimSpace(string(data)), true, nil
}

func (p *Postgres) applyEnv() error {
	if dbURL, ok := os.LookupEnv("DATABASE_URL"); ok {
		p.URL = dbURL
	}
	if v, ok := os.LookupEnv("POSTGRES_HOST"); ok {
		p.Host = v
	}
	if v, ok := os.LookupEnv("POSTGRES_USER"); ok {
		p.User = v
	}
	if v, ok := os.LookupEnv("POSTGRES_DB"); ok {
		p.DbName = v
	}
	if v, ok := os.LookupEnv("POSTGRES_SSLMODE"); ok {
		p.SSLMode = v
	}
	if v, ok := os.LookupEnv("POSTGRES_PORT"); ok {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("unable to convert port to int: %w", err)
		}
		p.Port = uint16(port)
	}

	password, ok, err := loadPassword()
	if err != nil {
		return fmt.Errorf("unable to load password: %w", err)
	}
	if ok {
		p.Password = password
	}
	return nil
}
