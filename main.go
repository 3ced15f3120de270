package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salon-backend/config"
	"salon-backend/models"
	"salon-backend/mq"
	"salon-backend/routes"
	"salon-backend/services"
	"salon-backend/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	utils.ExposeErrorDetails = cfg.IsDevelopment()
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := services.Seed(context.Background(), db); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	var events mq.Publisher = mq.Nop{}
	if cfg.AMQPURL != "" {
		pub, err := mq.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("Failed to connect to message broker: %v", err)
		}
		defer pub.Close()
		events = pub
	}

	var sender services.MessageSender = services.ConsoleSender{}
	if cfg.TwilioConfigured() {
		sender = services.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	} else {
		log.Println("Twilio not configured, SMS will not be delivered")
	}

	var codes services.CodeStore
	switch cfg.OTPStore {
	case "database":
		codes = services.NewGormCodeStore(db)
	case "memory", "":
		codes = services.NewMemoryCodeStore()
	default:
		log.Fatalf("unknown OTP_STORE %q", cfg.OTPStore)
	}
	otp := services.NewOTPService(codes, sender, cfg.OTPTTL, cfg.IsDevelopment())

	var images services.ImageStore
	if cfg.CloudinaryConfigured() {
		store, err := services.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
		images = store
	} else {
		log.Println("Cloudinary not configured, image uploads are disabled")
	}

	loc, err := time.LoadLocation(cfg.ReminderLocation)
	if err != nil {
		log.Fatalf("REMINDER_LOCATION: %v", err)
	}
	reminders := services.NewReminderService(db, sender, loc)

	scheduler := services.NewScheduler(loc)
	if err := scheduler.Add(cfg.OTPPurgeSchedule, "otp-purge", otp.PurgeExpired); err != nil {
		log.Fatalf("OTP_PURGE_SCHEDULE: %v", err)
	}
	if cfg.RemindersEnabled {
		err := scheduler.Add(cfg.ReminderSchedule, "appointment-reminders", func(ctx context.Context) {
			if _, err := reminders.SendDailyReminders(ctx); err != nil {
				log.Printf("[REMINDER] run failed: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("REMINDER_SCHEDULE: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := routes.SetupRouter(routes.Deps{
		DB:           db,
		JWTSecret:    cfg.JWTSecret,
		CORSOrigins:  cfg.CORSOrigins,
		Appointments: services.NewAppointmentService(db, events),
		Invoices:     services.NewInvoiceService(db, events),
		Carts:        services.NewCartService(db),
		Catalog:      services.NewCatalogService(db),
		Products:     services.NewProductService(db),
		Auth: services.NewAuthService(db, otp, services.AuthConfig{
			JWTSecret:  cfg.JWTSecret,
			TokenTTL:   cfg.JWTTTL(),
			BcryptCost: cfg.BcryptCost,
		}),
		Reports:   services.NewReportService(db),
		Reminders: reminders,
		Uploads:   services.NewUploadService(images),
	})
	printRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Server listening on :%s (%s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
