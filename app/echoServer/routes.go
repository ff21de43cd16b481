package echoServer

import (
	"net/http"

	pengembalianctrl "github.com/EviewNicks/rental-baju-sub003/app/echoServer/controller/pengembalian"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Pengembalian *pengembalianctrl.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// user_id extraction from the verified token
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tok, ok := ctx.Get("user").(*jwt.Token)
			if !ok || tok == nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", int64(sub))
			return next(ctx)
		}
	})

	auth.GET("/transaksi/:id", c.Pengembalian.Detail)
	auth.GET("/transaksi/:id/pengembalian/kelayakan", c.Pengembalian.CheckEligibility)
	auth.POST("/transaksi/:id/pengembalian", c.Pengembalian.ProcessReturn)
}
