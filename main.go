// Package main rental-baju return API.
//
// @title           Rental Baju Return API
// @version         1.0
// @description     Transaction return & penalty settlement for the rental-baju shop.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/EviewNicks/rental-baju-sub003/app/echoServer"
	pengembalianctrl "github.com/EviewNicks/rental-baju-sub003/app/echoServer/controller/pengembalian"
	"github.com/EviewNicks/rental-baju-sub003/app/echoServer/validation"
	"github.com/EviewNicks/rental-baju-sub003/config"
	notifikasirepo "github.com/EviewNicks/rental-baju-sub003/repository/notifikasi"
	produkrepo "github.com/EviewNicks/rental-baju-sub003/repository/produk"
	transaksirepo "github.com/EviewNicks/rental-baju-sub003/repository/transaksi"
	pengembaliansvc "github.com/EviewNicks/rental-baju-sub003/service/pengembalian"
	"github.com/EviewNicks/rental-baju-sub003/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	tr := transaksirepo.New(db)
	pr := produkrepo.New(db)
	nr := notifikasirepo.NewHTTP(cfg.StrukWebhookURL, cfg.StrukWebhookToken)

	// services
	policy := pengembaliansvc.PenaltyPolicy{
		LateFeePerDay: cfg.DendaPerHari,
		DamagePercent: cfg.DendaRusakPersen,
	}
	rs := pengembaliansvc.New(db, tr, pr, nr, policy)
	sc := pengembaliansvc.NewScanner(tr)

	// overdue scan on a schedule
	cr := cron.New()
	if _, err := cr.AddFunc(cfg.OverdueCron, func() {
		n, err := sc.ScanOverdue(context.Background())
		if err != nil {
			log.Error("overdue scan", "err", err)
			return
		}
		log.Info("overdue scan", "marked", n)
	}); err != nil {
		log.Error("cron schedule invalid", "spec", cfg.OverdueCron, "err", err)
		os.Exit(1)
	}
	cr.Start()
	defer cr.Stop()

	// controllers
	v := validator.New()
	returnC := &pengembalianctrl.Controller{Svc: rs, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Pengembalian: returnC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "PORT_env", os.Getenv("PORT"), "chosen_port", port)

	e.Logger.Fatal(e.Start(":" + port))
}
