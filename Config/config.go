package Config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Defaults DefaultsConfig
	Store    StoreConfig
	Mail     MailConfig
	Jobs     JobsConfig
	Paths    PathsConfig
}

type ServerConfig struct {
	Port               string
	Env                string
	JWTSecret          string
	JWTExpirationHours int
	CORSOrigins        string
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type DefaultsConfig struct {
	AdminName     string
	AdminPassword string
	SeedDemoData  bool
}

// StoreConfig is printed on receipts and used for share links.
type StoreConfig struct {
	Name              string
	Address           string
	Phone             string
	ReceiptFooter     string
	WhatsappNumber    string
	LowStockThreshold float64
}

type MailConfig struct {
	Host             string
	Port             int
	Username         string
	Password         string
	From             string
	FromName         string
	ReportRecipients []string
}

func (m MailConfig) Enabled() bool {
	return m.Host != "" && len(m.ReportRecipients) > 0
}

type JobsConfig struct {
	Enabled             bool
	DailyReportSchedule string
	LowStockSchedule    string
}

type PathsConfig struct {
	UploadDir string
	ExportDir string
	LogDir    string
}

var AppConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "3001")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("JWT_SECRET", "secret")
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "cafe.db")
	v.SetDefault("ADMIN_NAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "123")
	v.SetDefault("SEED_DEMO_DATA", true)
	v.SetDefault("STORE_NAME", "Cafe POS")
	v.SetDefault("STORE_ADDRESS", "")
	v.SetDefault("STORE_PHONE", "")
	v.SetDefault("RECEIPT_FOOTER", "Terima kasih!")
	v.SetDefault("WHATSAPP_NUMBER", "")
	v.SetDefault("LOW_STOCK_THRESHOLD", 100)
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM_NAME", "Cafe POS")
	v.SetDefault("REPORT_RECIPIENTS", "")
	v.SetDefault("JOBS_ENABLED", false)
	v.SetDefault("DAILY_REPORT_SCHEDULE", "0 5 0 * * *")
	v.SetDefault("LOW_STOCK_SCHEDULE", "0 0 7 * * *")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("EXPORT_DIR", "exports")
	v.SetDefault("LOG_DIR", "logs")
}

// LoadConfig reads .env (if any) and the process environment into AppConfig.
func LoadConfig() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT")

	AppConfig = fromViper(v)

	log.Printf("Configuration loaded successfully:")
	log.Printf("- Server Port: %s", AppConfig.Server.Port)
	log.Printf("- Server Env: %s", AppConfig.Server.Env)
	log.Printf("- Database Driver: %s", AppConfig.Database.Driver)
	log.Printf("- Store Name: %s", AppConfig.Store.Name)
	log.Printf("- Mail: %s", func() string {
		if AppConfig.Mail.Enabled() {
			return "ENABLED"
		}
		return "DISABLED"
	}())

	return AppConfig
}

// Default returns the built-in configuration without reading the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:               v.GetString("SERVER_PORT"),
			Env:                v.GetString("SERVER_ENV"),
			JWTSecret:          v.GetString("JWT_SECRET"),
			JWTExpirationHours: v.GetInt("JWT_EXPIRATION_HOURS"),
			CORSOrigins:        v.GetString("CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver: v.GetString("DB_DRIVER"),
			DSN:    v.GetString("DB_DSN"),
		},
		Defaults: DefaultsConfig{
			AdminName:     v.GetString("ADMIN_NAME"),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
			SeedDemoData:  v.GetBool("SEED_DEMO_DATA"),
		},
		Store: StoreConfig{
			Name:              v.GetString("STORE_NAME"),
			Address:           v.GetString("STORE_ADDRESS"),
			Phone:             v.GetString("STORE_PHONE"),
			ReceiptFooter:     v.GetString("RECEIPT_FOOTER"),
			WhatsappNumber:    v.GetString("WHATSAPP_NUMBER"),
			LowStockThreshold: v.GetFloat64("LOW_STOCK_THRESHOLD"),
		},
		Mail: MailConfig{
			Host:             v.GetString("SMTP_HOST"),
			Port:             v.GetInt("SMTP_PORT"),
			Username:         v.GetString("SMTP_USERNAME"),
			Password:         v.GetString("SMTP_PASSWORD"),
			From:             v.GetString("SMTP_FROM"),
			FromName:         v.GetString("SMTP_FROM_NAME"),
			ReportRecipients: splitList(v.GetString("REPORT_RECIPIENTS")),
		},
		Jobs: JobsConfig{
			Enabled:             v.GetBool("JOBS_ENABLED"),
			DailyReportSchedule: v.GetString("DAILY_REPORT_SCHEDULE"),
			LowStockSchedule:    v.GetString("LOW_STOCK_SCHEDULE"),
		},
		Paths: PathsConfig{
			UploadDir: v.GetString("UPLOAD_DIR"),
			ExportDir: v.GetString("EXPORT_DIR"),
			LogDir:    v.GetString("LOG_DIR"),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
