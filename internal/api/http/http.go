package http

type Config struct {
	Port        uint   `mapstructure:"port"`
	AdminAPIKey string `mapstructure:"admin_api_key" json:"-"`
	// CORSOrigins lists allowed browser origins; empty disables CORS.
	CORSOrigins []string `mapstructure:"cors_origins"`
}
