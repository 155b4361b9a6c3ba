package eosclient

import "time"

type Config struct {
	URL string `mapstructure:"url"`
	// CreatorKey signs provisioning transactions; normally supplied via CHAIN_CREATOR_KEY.
	CreatorKey string        `mapstructure:"creator_key" json:"-"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
	Timeout    time.Duration `mapstructure:"timeout"`
}
