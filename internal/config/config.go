package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	ServerAddress string
	Environment   string
	CronToken     string
	Database      DatabaseConfig
	Migration     MigrationConfig
	Services      ServicesConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Params   string
}

type MigrationConfig struct {
	Dir string
}

// ServicesConfig holds the base URLs and keys of external collaborators
type ServicesConfig struct {
	AuthURL        string
	PricingURL     string
	PricingKey     string
	PriceID        string
	CategorizerURL string
	CategorizerKey string
	MessagingURL   string
	MessagingKey   string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := &Config{
		ServerAddress: viper.GetString("SERVER_ADDRESS"),
		Environment:   viper.GetString("ENVIRONMENT"),
		CronToken:     viper.GetString("CRON_TOKEN"),
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			Params:   viper.GetString("DB_PARAMS"),
		},
		Migration: MigrationConfig{
			Dir: viper.GetString("MIGRATION_DIR"),
		},
		Services: ServicesConfig{
			AuthURL:        viper.GetString("AUTH_SERVICE_URL"),
			PricingURL:     viper.GetString("PRICING_SERVICE_URL"),
			PricingKey:     viper.GetString("PRICING_SERVICE_KEY"),
			PriceID:        viper.GetString("SUBSCRIPTION_PRICE_ID"),
			CategorizerURL: viper.GetString("CATEGORIZER_SERVICE_URL"),
			CategorizerKey: viper.GetString("CATEGORIZER_SERVICE_KEY"),
			MessagingURL:   viper.GetString("MESSAGING_SERVICE_URL"),
			MessagingKey:   viper.GetString("MESSAGING_SERVICE_KEY"),
		},
	}

	return config, nil
}

// GetDSN returns the MySQL DSN string
func (c *Config) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Params,
	)
}

// GetMigrationDBURL returns the database URL for migrations
func (c *Config) GetMigrationDBURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Params,
	)
}
