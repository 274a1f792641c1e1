package services

import (
	"log/slog"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	State     StateConfig
	WebSocket WebSocketConfig
	Weights   WeightsConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL      string // empty means in-memory SQLite (demo mode)
	Seed     bool
	LogLevel string
}

type JWTConfig struct {
	Secret string
}

type StateConfig struct {
	SlotPath string // file holding the signed active-profile slot
}

type WebSocketConfig struct {
	AllowedOrigins string
}

// WeightsConfig supplies the seed values for the SystemConfig row. Once
// seeded, the weights live in the store and are edited through the API.
type WeightsConfig struct {
	Velocity     float64
	Productivity float64
	Resolution   float64
	Compliance   float64
}

// LoadConfig loads configuration from environment variables and config files
func LoadConfig() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.url", "")
	viper.SetDefault("database.seed", "true")
	viper.SetDefault("database.log_level", "silent")
	viper.SetDefault("jwt.secret", "statline-demo-secret")
	viper.SetDefault("state.slot_path", "statline-session.jwt")
	viper.SetDefault("websocket.allowed_origins", "")
	viper.SetDefault("weights.velocity", 0.30)
	viper.SetDefault("weights.productivity", 0.30)
	viper.SetDefault("weights.resolution", 0.20)
	viper.SetDefault("weights.compliance", 0.20)

	// Map environment variables to config keys
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("database.seed", "DATABASE_SEED")
	viper.BindEnv("database.log_level", "DATABASE_LOG_LEVEL")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("state.slot_path", "STATE_SLOT_PATH")
	viper.BindEnv("websocket.allowed_origins", "WEBSOCKET_ALLOWED_ORIGINS")
	viper.BindEnv("weights.velocity", "WEIGHT_VELOCITY")
	viper.BindEnv("weights.productivity", "WEIGHT_PRODUCTIVITY")
	viper.BindEnv("weights.resolution", "WEIGHT_RESOLUTION")
	viper.BindEnv("weights.compliance", "WEIGHT_COMPLIANCE")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("Config file not found, using defaults and environment variables")
		} else {
			slog.Error("Error reading config file", "error", err)
		}
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
		},
		Database: DatabaseConfig{
			URL:      viper.GetString("database.url"),
			Seed:     viper.GetBool("database.seed"),
			LogLevel: viper.GetString("database.log_level"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("jwt.secret"),
		},
		State: StateConfig{
			SlotPath: viper.GetString("state.slot_path"),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins: viper.GetString("websocket.allowed_origins"),
		},
		Weights: WeightsConfig{
			Velocity:     viper.GetFloat64("weights.velocity"),
			Productivity: viper.GetFloat64("weights.productivity"),
			Resolution:   viper.GetFloat64("weights.resolution"),
			Compliance:   viper.GetFloat64("weights.compliance"),
		},
	}
}
