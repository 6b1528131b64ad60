package config

import (
	"os"
)

type Config struct {
	Env       string
	HttpPort  string
	DBPath    string // used when DBDriver=sqlite
	DBDriver  string // sqlite|postgres
	DBDsn     string // used when DBDriver=postgres (e.g., DATABASE_URL)
	SecretKey string // base64 32-byte key; empty stores credentials unsealed

	// Seed credentials, written to the account store on boot if none is saved yet.
	Account Account
}

// Account is the provider account as read from the environment.
type Account struct {
	ID          string
	AccessKey   string
	SecretKey   string
	Region      string
	SNSTopicARN string
	Endpoint    string // optional override, e.g. a local emulator
}

// Complete reports whether enough is set to build a provider client.
func (a Account) Complete() bool {
	return a.ID != "" && a.AccessKey != "" && a.SecretKey != "" && a.Region != ""
}

func Load() *Config {
	cfg := &Config{
		Env:       getEnv("APP_ENV", "dev"),
		HttpPort:  getEnv("HTTP_PORT", "8080"),
		DBPath:    getEnv("DB_PATH", "data/chione.db"),
		DBDriver:  getEnv("DB_DRIVER", "sqlite"),
		DBDsn:     getEnv("DATABASE_URL", getEnv("DB_DSN", "")),
		SecretKey: getEnv("SECRET_KEY", ""),
		Account: Account{
			ID:          getEnv("GLACIER_ACCOUNT_ID", "-"),
			AccessKey:   getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Region:      getEnv("AWS_REGION", getEnv("AWS_DEFAULT_REGION", "")),
			SNSTopicARN: getEnv("GLACIER_SNS_TOPIC_ARN", ""),
			Endpoint:    getEnv("GLACIER_ENDPOINT", ""),
		},
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" { return v }
	return def
}
