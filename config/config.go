package config

import (
	"log"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DB_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	Timezone    string `mapstructure:"TIMEZONE"`

	// WhatsApp Cloud API configuration.
	WhatsAppAPIVersion string `mapstructure:"WHATSAPP_API_VERSION"`
	WhatsAppToken      string `mapstructure:"WHATSAPP_TOKEN"`
	PhoneNumberID      string `mapstructure:"PHONE_NUMBER_ID"`
	DefaultLang        string `mapstructure:"DEFAULT_LANG"`
	WebhookVerifyToken string `mapstructure:"WEBHOOK_VERIFY_TOKEN"`

	// Delivery channel: "whatsapp" (Cloud API) or "twilio" (SMS fallback).
	ReminderChannel string `mapstructure:"REMINDER_CHANNEL"`

	// Twilio configuration (only used when REMINDER_CHANNEL=twilio).
	TwilioAccountSID     string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken      string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppNumber string `mapstructure:"TWILIO_WHATSAPP_NUMBER"`
	TwilioPhoneNumber    string `mapstructure:"TWILIO_PHONE_NUMBER"`

	// Consent store backend: "db" or "file".
	ConsentBackend  string `mapstructure:"CONSENT_BACKEND"`
	ConsentFilePath string `mapstructure:"CONSENT_FILE_PATH"`
}

var AppConfig Config

func LoadConfig() {
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("TIMEZONE", "America/Sao_Paulo")
	viper.SetDefault("WHATSAPP_API_VERSION", "v22.0")
	viper.SetDefault("DEFAULT_LANG", "pt_BR")
	viper.SetDefault("WEBHOOK_VERIFY_TOKEN", "token123")
	viper.SetDefault("REMINDER_CHANNEL", "whatsapp")
	viper.SetDefault("CONSENT_BACKEND", "db")
	viper.SetDefault("CONSENT_FILE_PATH", "pacientes.json")

	// Bind the keys we read so AutomaticEnv picks them up without a config file.
	for _, key := range []string{
		"PORT", "ENV", "DB_URL", "JWT_SECRET", "TIMEZONE",
		"WHATSAPP_API_VERSION", "WHATSAPP_TOKEN", "PHONE_NUMBER_ID",
		"DEFAULT_LANG", "WEBHOOK_VERIFY_TOKEN", "REMINDER_CHANNEL",
		"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_WHATSAPP_NUMBER",
		"TWILIO_PHONE_NUMBER", "CONSENT_BACKEND", "CONSENT_FILE_PATH",
	} {
		_ = viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

var (
	location     *time.Location
	locationOnce sync.Once
)

// Location returns the timezone consultations are interpreted in.
func Location() *time.Location {
	locationOnce.Do(func() {
		loc, err := time.LoadLocation(AppConfig.Timezone)
		if err != nil {
			log.Printf("Invalid TIMEZONE %q, falling back to UTC: %v", AppConfig.Timezone, err)
			loc = time.UTC
		}
		location = loc
	})
	return location
}
