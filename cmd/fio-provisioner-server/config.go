package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fioprotocol/fio-provisioner/internal/api/http"
	"github.com/fioprotocol/fio-provisioner/internal/chain/eosclient"
	"github.com/fioprotocol/fio-provisioner/internal/db"
	"github.com/fioprotocol/fio-provisioner/internal/provisioning"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log          LogConfig           `mapstructure:"log"`
	Http         http.Config         `mapstructure:"http"`
	Chain        eosclient.Config    `mapstructure:"chain"`
	Provisioning provisioning.Config `mapstructure:"provisioning"`
	Claims       ClaimsConfig        `mapstructure:"claims"`
	DB           db.Config           `mapstructure:"db"`
	// Creator pays for accounts when a request names none.
	Creator string `mapstructure:"creator"`
}

type ClaimsConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

var config Config

func InitConfig() {
	_ = godotenv.Load()

	viper.SetConfigName("application")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./cmd/fio-provisioner-server")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("http.port", 8080)
	viper.SetDefault("claims.ttl", 15*time.Minute)
	viper.SetDefault("claims.cleanup_interval", time.Minute)
	viper.SetDefault("creator", provisioning.DefaultDelegateAccount)

	_ = viper.BindEnv("chain.creator_key", "CHAIN_CREATOR_KEY")
	_ = viper.BindEnv("http.admin_api_key", "HTTP_ADMIN_API_KEY")
	_ = viper.BindEnv("db.url", "DB_URL")

	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		panic(err)
	}
	config.Provisioning = config.Provisioning.WithDefaults()
	if err := config.Provisioning.Validate(); err != nil {
		panic(err)
	}
	if config.Claims.TTL <= 0 {
		config.Claims.TTL = 15 * time.Minute
	}
	if config.Claims.CleanupInterval <= 0 {
		config.Claims.CleanupInterval = time.Minute
	}

	initLogger(config.Log)

	// secrets carry json:"-" and are left out
	if strings.ToUpper(config.Log.Level) == LOG_LEVEL_DEBUG {
		configJSON, err := json.MarshalIndent(config, "", "  ")
		if err == nil {
			fmt.Println("Config loaded:")
			fmt.Println(string(configJSON))
		}
	}
}
