package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LogLevel     string
	LogPretty    bool

	Directory DirectoryConfig
	NATSURL   string

	WhatsAppEnabled bool
	WhatsAppDataDir string

	Bot BotConfig

	TOTPSecrets map[string]string
	SMSExpiry   time.Duration

	WeddingDate     string
	WeddingLocation string
	BrideName       string
	GroomName       string
}

// DirectoryConfig selects and addresses the guest directory
type DirectoryConfig struct {
	Backend       string // "sheets" or "file"
	File          string
	SpreadsheetID string
	SheetName     string
	Credentials   string
}

// BotConfig controls the chat relay
type BotConfig struct {
	Name            string
	Echo            bool
	RemoveThinkTags bool
	LogCompletions  bool
	LMStudioHost    string
	LMStudioModel   string
}

// LoadConfig loads configuration from a .env file (if present), environment
// variables and defaults
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "3000"),
		ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
		WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogPretty:    getBool("LOG_PRETTY", false),

		Directory: DirectoryConfig{
			Backend:       getEnv("DIRECTORY_BACKEND", "sheets"),
			File:          getEnv("DIRECTORY_FILE", "data/guests.csv"),
			SpreadsheetID: getEnv("GOOGLE_SHEET_ID", ""),
			SheetName:     getEnv("GOOGLE_SHEET_NAME", "Sheet1"),
			Credentials:   getEnv("GOOGLE_SERVICE_ACCOUNT_CREDENTIALS", ""),
		},
		NATSURL: getEnv("NATS_URL", ""),

		WhatsAppEnabled: getBool("WHATSAPP_ENABLED", false),
		WhatsAppDataDir: getEnv("WHATSAPP_DATA_DIR", "data"),

		Bot: BotConfig{
			Name:            getEnv("BOT_NAME", ""),
			Echo:            getBool("BOT_ECHO", false),
			RemoveThinkTags: getBool("REMOVE_THINK_TAGS", false),
			LogCompletions:  getBool("LOG_LM_STUDIO", false),
			LMStudioHost:    getEnv("LM_STUDIO_HOST", "localhost"),
			LMStudioModel:   getEnv("LM_STUDIO_MODEL", "deepseek-r1-distill-qwen-7b"),
		},

		TOTPSecrets: parsePairs(getEnv("TOTP_SECRETS", "")),
		SMSExpiry:   getDuration("SMS_EXPIRY", 5*time.Minute),

		WeddingDate:     getEnv("WEDDING_DATE", "Saturday, January 1, 2025"),
		WeddingLocation: getEnv("WEDDING_LOCATION", "Venue TBD"),
		BrideName:       getEnv("BRIDE_NAME", "Bride"),
		GroomName:       getEnv("GROOM_NAME", "Groom"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBool accepts anything strconv.ParseBool does, e.g. "1" or "true"
func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// parsePairs reads "a=x,b=y" into a map. Malformed entries are skipped.
func parsePairs(s string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name == "" || value == "" {
			continue
		}
		out[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return out
}
