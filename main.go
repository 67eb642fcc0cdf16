package main

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/meetvachhani/salon-marketplace/config"
	"github.com/meetvachhani/salon-marketplace/cron"
	"github.com/meetvachhani/salon-marketplace/db"
	"github.com/meetvachhani/salon-marketplace/otp"
	"github.com/meetvachhani/salon-marketplace/redis"
	"github.com/meetvachhani/salon-marketplace/routes"
	"github.com/meetvachhani/salon-marketplace/utils"
)

func main() {
	cfg := config.Load()
	db.Init()

	if cfg.RedisAddr != "" {
		redis.InitRedis()
	}

	utils.InitTokenIssuer(db.DB, cfg.JWTSecret, cfg.TokenTTL)
	otp.Init(db.DB, otp.Config{
		TTL:          cfg.OTPTTL,
		MaxAttempts:  cfg.OTPMaxAttempts,
		ResendWindow: cfg.OTPResendWindow,
	}, otp.NewRandomGenerator(), redis.Client)

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Salon Marketplace API")
	})

	routes.SetupAuthRoutes(app)
	routes.SetupUserRoutes(app)
	routes.SetupProviderRoutes(app)
	routes.SetupAdminRoutes(app)
	routes.SetupCatalogRoutes(app)

	cron.StartCronJobs()

	app.Listen(":" + cfg.Port)
	fmt.Println("Server stopped")
}
