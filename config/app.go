package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	// penalty policy
	DendaPerHari     int64 `env:"DENDA_PER_HARI" default:"5000"`
	DendaRusakPersen int64 `env:"DENDA_RUSAK_PERSEN" default:"50"`

	// receipt webhook (optional)
	StrukWebhookURL   string `env:"STRUK_WEBHOOK_URL"`
	StrukWebhookToken string `env:"STRUK_WEBHOOK_TOKEN"`

	// cron spec for the overdue scan
	OverdueCron string `env:"OVERDUE_CRON" default:"0 1 * * *"`
}
