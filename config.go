package kermesse

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig is the file/env backed Config implementation. Values load from
// an optional .env style file with environment overrides.
type AppConfig struct {
	SigningKey      string `mapstructure:"KERMESSE_SIGNING_KEY"`
	TokenExpiration int    `mapstructure:"KERMESSE_TOKEN_EXPIRATION"`
	Issuer          string `mapstructure:"KERMESSE_ISSUER"`
	Audience        string `mapstructure:"KERMESSE_AUDIENCE"`
	StoragePath     string `mapstructure:"KERMESSE_STORAGE_PATH"`
	BcryptCost      int    `mapstructure:"KERMESSE_BCRYPT_COST"`
}

var _ Config = (*AppConfig)(nil)

// LoadConfig reads the optional config file (missing is fine, e.g. in CI),
// applies env overrides, and validates the result.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		_ = v.ReadInConfig() // ignore ErrConfigFileNotFound
	}

	v.AutomaticEnv()

	// defaults also register the keys so AutomaticEnv can see them
	v.SetDefault("KERMESSE_SIGNING_KEY", "")
	v.SetDefault("KERMESSE_TOKEN_EXPIRATION", 12)
	v.SetDefault("KERMESSE_ISSUER", "kermesse")
	v.SetDefault("KERMESSE_AUDIENCE", "kermesse:client")
	v.SetDefault("KERMESSE_STORAGE_PATH", "")
	v.SetDefault("KERMESSE_BCRYPT_COST", DefaultBcryptCost)

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.SigningKey == "" {
		return nil, errors.New("config: KERMESSE_SIGNING_KEY must be set")
	}

	if cfg.TokenExpiration <= 0 {
		return nil, errors.New("config: KERMESSE_TOKEN_EXPIRATION must be positive")
	}

	return &cfg, nil
}

func (c *AppConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *AppConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *AppConfig) GetIssuer() string {
	return c.Issuer
}

func (c *AppConfig) GetAudience() []string {
	if c.Audience == "" {
		return nil
	}

	parts := strings.Split(c.Audience, ",")
	audience := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			audience = append(audience, trimmed)
		}
	}
	return audience
}

func (c *AppConfig) GetStoragePath() string {
	return c.StoragePath
}

func (c *AppConfig) GetBcryptCost() int {
	if c.BcryptCost <= 0 {
		return DefaultBcryptCost
	}
	return c.BcryptCost
}
