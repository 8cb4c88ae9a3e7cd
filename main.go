package main

import (
	"log"
	"mime"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/acme/autocert"

	"github.com/LFroesch/project-management-sub010/config"
	"github.com/LFroesch/project-management-sub010/controllers"
	"github.com/LFroesch/project-management-sub010/middleware"
	"github.com/LFroesch/project-management-sub010/repositories"
	"github.com/LFroesch/project-management-sub010/routes"
	"github.com/LFroesch/project-management-sub010/scheduler"
	"github.com/LFroesch/project-management-sub010/services"
	"github.com/LFroesch/project-management-sub010/utils"
	"github.com/LFroesch/project-management-sub010/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Ensure correct MIME type for SVG files
	_ = mime.AddExtensionType(".svg", "image/svg+xml")

	// External services, all optional degraded modes
	firebaseApp := config.InitFirebase()
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	userRepo := repositories.NewUserRepository(client)
	projectRepo := repositories.NewProjectRepository(client)
	membershipRepo := repositories.NewMembershipRepository(client)
	invitationRepo := repositories.NewInvitationRepository(client)
	notificationRepo := repositories.NewNotificationRepository(client)
	postRepo := repositories.NewPostRepository(client)
	relationLoader := repositories.NewRelationLoader(userRepo, projectRepo, invitationRepo)

	// Services
	planService := services.NewPlanService(userRepo, redisClient)
	pushSender := utils.NewFCMSender(firebaseApp, userRepo)
	notificationService := services.NewNotificationService(notificationRepo, wsHub, planService, relationLoader, pushSender)

	// Reminder scheduler
	summaryHour := -1
	if raw := os.Getenv("DAILY_SUMMARY_HOUR"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			summaryHour = v
		} else {
			log.Printf("Warning: invalid DAILY_SUMMARY_HOUR %q, using default", raw)
		}
	}
	reminderScheduler := scheduler.NewReminderScheduler(projectRepo, notificationService, summaryHour)
	reminderScheduler.Start()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Project Management Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":           "healthy",
			"database":         "connected",
			"websocketClients": wsHub.ClientCount(),
		})
	})

	e.Use(httpsRedirect())

	// Controllers
	notificationController := controllers.NewNotificationController(notificationService, userRepo)
	projectController := controllers.NewProjectController(projectRepo, membershipRepo, userRepo, notificationService, planService)
	invitationController := controllers.NewInvitationController(invitationRepo, projectRepo, membershipRepo, userRepo, notificationService, planService)
	postController := controllers.NewPostController(postRepo, userRepo, notificationService)
	adminController := controllers.NewAdminController(userRepo, notificationService, planService, reminderScheduler)

	// Routes
	routes.RegisterNotificationRoutes(e, client, notificationController)
	routes.RegisterProjectRoutes(e, client, projectController)
	routes.RegisterInvitationRoutes(e, client, invitationController)
	routes.RegisterPostRoutes(e, client, postController)
	routes.RegisterWebsocketRoutes(e, wsHub)

	// Register admin routes AFTER general routes to avoid conflicts
	routes.RegisterAdminRoutes(e, client, adminController)

	// Ensure uploads directories exist
	if err := utils.InitializeStorage(); err != nil {
		log.Printf("Warning: could not prepare uploads directory: %v", err)
	}
	e.Static("/uploads", "uploads")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if domain := os.Getenv("AUTO_TLS_DOMAIN"); domain != "" {
		e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(domain)
		e.AutoTLSManager.Cache = autocert.DirCache(".cache/autocert")
		e.Logger.Fatal(e.StartAutoTLS(":443"))
	}
	e.Logger.Fatal(e.Start(":" + port))
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(301, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
