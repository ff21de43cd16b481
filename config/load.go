package config

import (
	"log/slog"
	"os"
	"strconv"
)

func Load() App {
	cfg := App{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: must("DATABASE_URL"),
		JWTSecret:   getenv("JWT_SECRET", "local_dev_secret"),
		Env:         getenv("APP_ENV", "dev"),

		DendaPerHari:     getenvInt("DENDA_PER_HARI", 5000),
		DendaRusakPersen: getenvInt("DENDA_RUSAK_PERSEN", 50),

		StrukWebhookURL:   os.Getenv("STRUK_WEBHOOK_URL"),
		StrukWebhookToken: os.Getenv("STRUK_WEBHOOK_TOKEN"),

		OverdueCron: getenv("OVERDUE_CRON", "0 1 * * *"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("invalid int env, using default", "key", k, "value", v)
		return def
	}
	return n
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
