package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Pratyunmis/robosaga26/handlers"
	"github.com/Pratyunmis/robosaga26/models"
	"github.com/Pratyunmis/robosaga26/services"
	"github.com/Pratyunmis/robosaga26/utils"
	"github.com/Pratyunmis/robosaga26/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024, // presentation decks top out at 20MB
	})

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.JoinRequest{},
		&models.Event{},
		&models.EventRegistration{},
		&models.HackawayRegistration{},
		&models.ProblemStatementSetting{},
		&models.ContactMessage{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Deck uploads need R2 credentials; without them the link-only flow
	// still works.
	if os.Getenv("R2_ACCESS_KEY_ID") != "" {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		log.Println("R2 uploads enabled")
	} else {
		log.Println("R2 credentials not set, deck uploads disabled")
	}

	userService := services.NewUserService(db)
	teamService := services.NewTeamService(db)
	eventService := services.NewEventService(db)
	hackawayService := services.NewHackawayService(db)
	adminService := services.NewAdminService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if os.Getenv("SYNC_SERVICE_URL") != "" {
		syncClient := workers.NewUserSyncClient(db)
		go workers.PollUsers(ctx, syncClient, 30*time.Second)
		log.Println("User account polling running (every 30s)")
	}

	adminService.StartAnalyticsScheduler()

	handlers.SetupPublicRoutes(app, teamService, userService)
	handlers.SetupUserRoutes(app, userService)
	handlers.SetupTeamRoutes(app, teamService)
	handlers.SetupEventRoutes(app, eventService)
	handlers.SetupHackawayRoutes(app, hackawayService)
	handlers.SetupAdminRoutes(app, db, adminService, eventService, hackawayService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server running on http://localhost:%s", port)
	log.Printf("CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
