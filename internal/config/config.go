package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定。環境変数から読む
type Config struct {
	Port string // サーバーポート

	// DATABASE_URLか個別のPOSTGRES_*が設定されていればリレーショナルモード、
	// どちらも無ければファイルモード
	DatabaseURL      string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	DataDir          string // ファイルモードの保存先

	JWTSecret string // JWT署名シークレット

	StripeSecretKey      string // 空なら決済系エンドポイントは503
	StripePublishableKey string
	StripeWebhookSecret  string

	SMTPHost     string // 空なら通知は無効
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	BaseURL string // checkoutのリダイレクト先

	AdminEmail    string // 起動時にシードする管理者
	AdminPassword string
	AdminName     string

	LogLevel string
	GoEnv    string // development/production
}

func Load() Config {
	cfg := Config{
		Port:        getenv("PORT", "3000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getenv("POSTGRES_PORT", "5432"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "cafeteria"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		DataDir: getenv("DATA_DIR", "./data"),

		JWTSecret: getenv("JWT_SECRET", "dev_secret_change_me"),

		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getenvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		BaseURL: getenv("BASE_URL", "http://localhost:3000"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getenv("ADMIN_NAME", "admin"),

		LogLevel: getenv("LOG_LEVEL", "info"),
		GoEnv:    getenv("GO_ENV", "development"),
	}
	return cfg
}

// UsesRelational は起動時のバックエンド判定。一度決めたらプロセス寿命の間固定
func (c Config) UsesRelational() bool {
	return c.DatabaseURL != "" || c.PostgresHost != ""
}

// PostgresDSN はDATABASE_URLを最優先し、無ければ個別変数から組み立てる
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
