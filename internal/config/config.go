package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	WhatsApp WhatsAppConfig
	Sheets   SheetsConfig
	Pricing  PricingConfig
	Session  SessionConfig

	AliasesFile string
	DatabaseURL string

	// EnvFileErr is set when no .env file could be read; the process
	// environment is used alone.
	EnvFileErr error
}

type WhatsAppConfig struct {
	VerifyToken     string
	Token           string
	PhoneNumberID   string
	APIVersion      string
	AppSecret       string
	SendRPS         float64
	WelcomeImageURL string
}

// SheetsConfig addresses the rate tables and the quote log. Hints are matched
// tolerantly against the real tab titles.
type SheetsConfig struct {
	Source          string // google or yaml
	DataFile        string
	CredentialsJSON string
	CredentialsFile string

	RatesID   string
	CourierID string
	LogID     string

	TabAereo     string
	TabMaritimo  string
	TabTerrestre string
	TabCourier   string
	TabLog       string

	RangeAereo     string
	RangeMaritimo  string
	RangeTerrestre string
	RangeCourier   string
}

type PricingConfig struct {
	HubAereo        string
	HubMaritimo     string
	HubTerrestre    string
	AirMinKg        int
	ValidityDays    int
	RestartKeywords []string
}

type SessionConfig struct {
	Store         string // memory or redis
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func Load() Config {
	envErr := godotenv.Load()
	ratesID := getEnv("RATES_SPREADSHEET_ID", "")
	return Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		WhatsApp: WhatsAppConfig{
			VerifyToken:     getEnv("WHATSAPP_VERIFY_TOKEN", ""),
			Token:           getEnv("WHATSAPP_TOKEN", ""),
			PhoneNumberID:   getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			APIVersion:      getEnv("WHATSAPP_API_VERSION", "v19.0"),
			AppSecret:       getEnv("WHATSAPP_APP_SECRET", ""),
			SendRPS:         getEnvAsFloat("WHATSAPP_SEND_RPS", 20),
			WelcomeImageURL: getEnv("WELCOME_IMAGE_URL", ""),
		},
		Sheets: SheetsConfig{
			Source:          strings.ToLower(getEnv("DATA_SOURCE", "google")),
			DataFile:        getEnv("DATA_FILE", "rates.yaml"),
			CredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			RatesID:         ratesID,
			CourierID:       getEnv("COURIER_SPREADSHEET_ID", ratesID),
			LogID:           getEnv("LOG_SPREADSHEET_ID", ratesID),
			TabAereo:        getEnv("TAB_AEREO", "Aereos"),
			TabMaritimo:     getEnv("TAB_MARITIMO", "Maritimos"),
			TabTerrestre:    getEnv("TAB_TERRESTRE", "Terrestres"),
			TabCourier:      getEnv("TAB_COURIER", "Courier"),
			TabLog:          getEnv("TAB_LOG", "Registros"),
			RangeAereo:      getEnv("RANGE_AEREO", "A1:H500"),
			RangeMaritimo:   getEnv("RANGE_MARITIMO", "A1:H500"),
			RangeTerrestre:  getEnv("RANGE_TERRESTRE", "A1:H500"),
			RangeCourier:    getEnv("RANGE_COURIER", "A1:F200"),
		},
		Pricing: PricingConfig{
			HubAereo:        getEnv("HUB_AEREO", "EZE"),
			HubMaritimo:     getEnv("HUB_MARITIMO", "Buenos Aires"),
			HubTerrestre:    getEnv("HUB_TERRESTRE", "Buenos Aires"),
			AirMinKg:        getEnvAsInt("AIR_MIN_KG", 100),
			ValidityDays:    getEnvAsInt("QUOTE_VALIDITY_DAYS", 7),
			RestartKeywords: getEnvAsList("RESTART_KEYWORDS", []string{"hola", "inicio", "menu", "home", "reiniciar", "volver al inicio"}),
		},
		Session: SessionConfig{
			Store:         strings.ToLower(getEnv("SESSION_STORE", "memory")),
			TTL:           getEnvAsDuration("SESSION_TTL", 0),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
		},
		AliasesFile: getEnv("ALIASES_FILE", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		EnvFileErr:  envErr,
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

// getEnvAsList splits a comma separated value.
func getEnvAsList(key string, fallback []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
