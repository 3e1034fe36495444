package main

import (
	"log"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"homelet/internal/config"
	"homelet/internal/database"
	"homelet/internal/jobs"
	"homelet/internal/middleware"
	"homelet/internal/modules/auth"
	"homelet/internal/modules/booking"
	"homelet/internal/modules/notification"
	"homelet/internal/modules/project"
	"homelet/internal/modules/property"
	jwtsvc "homelet/internal/pkg/jwt"
	"homelet/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db, cfg.AllowSameDayTurnover); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	eventRepo := repository.NewBookingEventRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	propertyService := property.NewService(propertyRepo)
	propertyHandler := property.NewHandler(propertyService)

	projectService := project.NewService(projectRepo)
	projectHandler := project.NewHandler(projectService)

	bookingService := booking.NewService(bookingRepo, propertyRepo, eventRepo, notificationRepo, booking.Config{
		AllowSameDayTurnover: cfg.AllowSameDayTurnover,
	})
	bookingHandler := booking.NewHandler(bookingService)

	notificationHandler := notification.NewHandler(notificationRepo)

	completion := jobs.NewCompletionJob(bookingRepo, eventRepo)
	sched, err := jobs.Schedule(cfg.CompletionCronSpec, completion)
	if err != nil {
		log.Fatal(err)
	}
	defer sched.Stop()

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)

		public := v1.Group("/")
		public.Use(middleware.OptionalAuth(j))
		{
			propertyHandler.RegisterPublicRoutes(public)
			bookingHandler.RegisterPublicRoutes(public)
		}

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			bookingHandler.RegisterRoutes(protected)
			propertyHandler.RegisterRoutes(protected)
			projectHandler.RegisterRoutes(protected)
			notificationHandler.RegisterRoutes(protected)

			admin := protected.Group("/")
			admin.Use(middleware.AdminOnly())
			{
				propertyHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
