package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string `mapstructure:"PORT"`
	DatabasePath string `mapstructure:"DATABASE_PATH"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	FromEmail    string `mapstructure:"FROM_EMAIL"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleTokenPath    string `mapstructure:"GOOGLE_TOKEN_PATH"`
	GoogleCalendarID   string `mapstructure:"GOOGLE_CALENDAR_ID"`

	DiscordBotToken        string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordAlertsChannelID string `mapstructure:"DISCORD_ALERTS_CHANNEL_ID"`

	CalendarCheckCron string `mapstructure:"CALENDAR_CHECK_CRON"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "agenda.db")
	viper.SetDefault("SMTP_PORT", 465)
	viper.SetDefault("GOOGLE_TOKEN_PATH", "token.json")
	viper.SetDefault("GOOGLE_CALENDAR_ID", "primary")
	viper.SetDefault("CALENDAR_CHECK_CRON", "0 * * * *")

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("SMTP_HOST")
	viper.BindEnv("SMTP_PORT")
	viper.BindEnv("SMTP_USER")
	viper.BindEnv("SMTP_PASSWORD")
	viper.BindEnv("FROM_EMAIL")
	viper.BindEnv("GOOGLE_CLIENT_ID")
	viper.BindEnv("GOOGLE_CLIENT_SECRET")
	viper.BindEnv("GOOGLE_TOKEN_PATH")
	viper.BindEnv("GOOGLE_CALENDAR_ID")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_ALERTS_CHANNEL_ID")
	viper.BindEnv("CALENDAR_CHECK_CRON")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
