package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fioprotocol/fio-provisioner/internal/chain/eosclient"
	"github.com/fioprotocol/fio-provisioner/internal/provisioning"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the subset of the server's application.yaml the CLI needs.
type Config struct {
	Chain        eosclient.Config    `mapstructure:"chain"`
	Provisioning provisioning.Config `mapstructure:"provisioning"`
	Creator      string              `mapstructure:"creator"`
}

func loadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("application")
		v.AddConfigPath(".")
		v.AddConfigPath("./cmd/fio-provisioner-server")
	}
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("creator", provisioning.DefaultDelegateAccount)
	_ = v.BindEnv("chain.creator_key", "CHAIN_CREATOR_KEY")
	_ = v.BindEnv("chain.url", "CHAIN_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Provisioning = cfg.Provisioning.WithDefaults()
	if err := cfg.Provisioning.Validate(); err != nil {
		return nil, fmt.Errorf("invalid provisioning config: %w", err)
	}
	return &cfg, nil
}
