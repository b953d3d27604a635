package config

import "os"

// Config holds every environment-driven setting the application needs.
// It is loaded ONCE in main() and injected into the components that use it,
// so no package reads os.Getenv at request time.
type Config struct {
	Port       string
	DSN        string
	JWTSecret  string
	BaseURL    string
	CORSOrigin string

	// Outbound email (empty host = log-only placeholder mode)
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	ContactEmail string

	// External image host (empty key = save uploads locally)
	ImgBBKey string

	// Kkiapay server-side verification (empty key = trust the widget result)
	KkiapayAPIURL     string
	KkiapayPrivateKey string
}

// Load reads the configuration from the environment, applying the same
// defaults the development stack uses.
func Load() *Config {
	return &Config{
		Port:       getenv("PORT", "8080"),
		DSN:        getenv("DB_DSN", "root:root@tcp(127.0.0.1:3306)/plawimadd?parseTime=true&multiStatements=true"),
		JWTSecret:  getenv("JWT_SECRET", "A_VERY_SECURE_SECRET_KEY_REPLACE_LATER"),
		BaseURL:    getenv("BASE_URL", "http://localhost:8080"),
		CORSOrigin: getenv("CORS_ORIGIN", "http://localhost:3000"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getenv("SMTP_PORT", "587"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getenv("SMTP_FROM", "no-reply@plawimadd.com"),
		ContactEmail: getenv("CONTACT_EMAIL", "contact@plawimadd.com"),

		ImgBBKey: os.Getenv("IMGBB_API_KEY"),

		KkiapayAPIURL:     getenv("KKIAPAY_API_URL", "https://api.kkiapay.me"),
		KkiapayPrivateKey: os.Getenv("KKIAPAY_PRIVATE_KEY"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
