package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/devfolio/internal/analytics"
	"github.com/Zachkp/devfolio/internal/config"
	"github.com/Zachkp/devfolio/internal/contact"
	"github.com/Zachkp/devfolio/internal/content"
	"github.com/Zachkp/devfolio/internal/emailjs"
	"github.com/Zachkp/devfolio/internal/site"
	"github.com/Zachkp/devfolio/internal/smtpmail"
	"github.com/Zachkp/devfolio/internal/telemetry"
)

const serviceName = "devfolio"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTel)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("Error flushing traces: %v", err)
		}
	}()

	portfolio, err := content.Load(cfg.ContentPath)
	if err != nil {
		log.Fatalf("Failed to load portfolio content: %v", err)
	}

	store, err := analytics.Open(ctx, cfg.Analytics.DSN)
	if err != nil {
		log.Fatalf("Failed to open analytics store: %v", err)
	}
	defer store.Close()

	hasher, err := analytics.NewHasher()
	if err != nil {
		log.Fatalf("Failed to create visitor hasher: %v", err)
	}
	log.Println("Privacy: Visitor tracking enabled with hashed IP addresses")

	sender, err := newSender(cfg)
	if err != nil {
		log.Fatalf("Failed to configure %s transport: %v", cfg.MailTransport, err)
	}

	adminKey, err := analytics.RandomToken()
	if err != nil {
		log.Fatalf("Failed to generate admin signing key: %v", err)
	}
	admin, err := site.NewAdminAuth(cfg.Admin.Username, cfg.Admin.Password, []byte(adminKey), cfg.GinMode == gin.DebugMode)
	if err != nil {
		log.Fatalf("Failed to set up admin auth: %v", err)
	}
	if admin != nil {
		log.Printf("Admin access available at: /admin/login")
	}

	srv, err := site.New(site.Options{
		Portfolio:   portfolio,
		Sender:      sender,
		Transport:   cfg.MailTransport,
		SendTimeout: cfg.SendTimeout,
		Store:       store,
		Hasher:      hasher,
		Admin:       admin,
		ImagesDir:   cfg.ImagesDir,
		Retention:   cfg.Analytics.Retention,
	})
	if err != nil {
		log.Fatalf("Failed to create site: %v", err)
	}
	router, err := srv.Router()
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	srv.PurgeExpired(ctx)
	go runDailyCleanup(ctx, srv)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.SendTimeout+5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	srv.Wait()
}

// newSender builds the contact transport named by MAIL_TRANSPORT.
func newSender(cfg config.Config) (contact.Sender, error) {
	switch cfg.MailTransport {
	case config.TransportEmailJS:
		client, err := emailjs.New(emailjs.Config{
			Endpoint:   cfg.EmailJS.Endpoint,
			ServiceID:  cfg.EmailJS.ServiceID,
			TemplateID: cfg.EmailJS.TemplateID,
			PublicKey:  cfg.EmailJS.PublicKey,
			PrivateKey: cfg.EmailJS.PrivateKey,
		}, &http.Client{Timeout: cfg.SendTimeout})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.TransportSMTP:
		sender, err := smtpmail.New(smtpmail.Config{
			Host: cfg.SMTP.Host,
			Port: cfg.SMTP.Port,
			User: cfg.SMTP.User,
			Pass: cfg.SMTP.Pass,
			To:   cfg.SMTP.To,
		}, nil)
		if err != nil {
			return nil, err
		}
		return sender, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.MailTransport)
	}
}

// runDailyCleanup purges expired visitor data once a day.
func runDailyCleanup(ctx context.Context, srv *site.Server) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			srv.PurgeExpired(ctx)
		}
	}
}
