package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	HTTPAddr   string
	WebhookURL string
	LogLevel   string
	LogFormat  string

	Source string

	SpreadsheetURL                   string
	SpreadsheetID                    string
	SAPSheetName                     string
	UsersSheetName                   string
	HistorySheetName                 string
	GoogleApplicationCredentialsJSON string

	XLSXPath string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMailbox  string
	IMAPFetchMax int

	DataTTLSec     int
	UsersTTLSec    int
	RefreshSec     int
	RefreshExport  bool
	MaxQty         float64
	PageSize       int
	Timezone       string
	Admins         []int64
	ServiceName    string
	AliasesPath    string
	ImageRPS       int
	ImageTimeoutMs int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	port := getEnv("PORT", "8080")
	sheetName := strings.TrimSpace(getEnv("SHEET_NAME", "SAP"))

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "parts.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		HTTPAddr:   getEnv("HTTP_ADDR", ":"+port),
		WebhookURL: strings.TrimRight(getEnv("WEBHOOK_URL", ""), "/"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "json"),

		Source: strings.ToLower(strings.TrimSpace(getEnv("SOURCE", "sheets"))),

		SpreadsheetURL:                   getEnv("SPREADSHEET_URL", ""),
		SpreadsheetID:                    getEnv("SPREADSHEET_ID", ""),
		SAPSheetName:                     getEnv("SAP_SHEET_NAME", sheetName),
		UsersSheetName:                   getEnv("USERS_SHEET_NAME", "Пользователи"),
		HistorySheetName:                 getEnv("HISTORY_SHEET_NAME", "История"),
		GoogleApplicationCredentialsJSON: getEnv("GOOGLE_APPLICATION_CREDENTIALS_JSON", ""),

		XLSXPath: getEnv("XLSX_PATH", filepath.Join(cwd, "data", "parts.xlsx")),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMailbox:  getEnv("IMAP_MAILBOX", "INBOX"),
		IMAPFetchMax: getEnvInt("IMAP_FETCH_MAX", 10),

		DataTTLSec:     getEnvInt("DATA_TTL", 300),
		UsersTTLSec:    getEnvInt("USERS_TTL", 300),
		RefreshSec:     getEnvInt("REFRESH_INTERVAL_SEC", 60),
		RefreshExport:  getEnvBool("REFRESH_EXPORT", false),
		MaxQty:         getEnvFloat("MAX_QTY", 1000),
		PageSize:       getEnvInt("PAGE_SIZE", 5),
		Timezone:       getEnv("TIMEZONE", "Asia/Tashkent"),
		Admins:         getEnvIDs("ADMINS"),
		ServiceName:    getEnv("SERVICE_NAME", "BAZA MG Mini App"),
		AliasesPath:    getEnv("FIELD_ALIASES_PATH", ""),
		ImageRPS:       getEnvInt("IMAGE_RESOLVE_RPS", 5),
		ImageTimeoutMs: getEnvInt("IMAGE_TIMEOUT_MS", 10000),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func (c Config) DataTTL() time.Duration {
	return time.Duration(c.DataTTLSec) * time.Second
}

func (c Config) UsersTTL() time.Duration {
	return time.Duration(c.UsersTTLSec) * time.Second
}

func (c Config) RefreshInterval() time.Duration {
	if c.RefreshSec <= 0 {
		return time.Minute
	}
	return time.Duration(c.RefreshSec) * time.Second
}

// Location falls back to UTC when TIMEZONE is unknown to the tz database.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MiniAppURL is the public address of the web app, or "" when WEBHOOK_URL is
// not set.
func (c Config) MiniAppURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.WebhookURL), "/")
	if base == "" {
		return ""
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return base + "/app"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	switch value {
	case "1", "true", "yes", "y", "on", "да":
		return true
	case "0", "false", "no", "n", "off", "нет":
		return false
	}
	return fallback
}

// getEnvIDs parses a comma separated list of numeric ids, skipping junk.
func getEnvIDs(key string) []int64 {
	value := strings.ReplaceAll(getEnv(key, ""), " ", "")
	if value == "" {
		return nil
	}
	var out []int64
	for _, p := range strings.Split(value, ",") {
		id, err := strconv.ParseInt(p, 10, 64)
		if err == nil && id > 0 {
			out = append(out, id)
		}
	}
	return out
}
