// Package site serves the portfolio page, the contact endpoints and the admin
// dashboard over gin.
package site

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/devfolio/internal/analytics"
	"github.com/Zachkp/devfolio/internal/contact"
	"github.com/Zachkp/devfolio/internal/content"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:generate sh -c "GOOS=js GOARCH=wasm go build -o static/portfolio.wasm ../../cmd/portfolio-wasm"
//go:generate sh -c "cp \"$(go env GOROOT)/lib/wasm/wasm_exec.js\" static/"

//go:embed static
var staticFS embed.FS

// Options wires the server's collaborators.
type Options struct {
	Portfolio content.Portfolio
	Sender    contact.Sender
	// Transport names the sender in the delivery log.
	Transport   string
	SendTimeout time.Duration
	Store       *analytics.Store
	Hasher      *analytics.Hasher
	Admin       *AdminAuth
	ImagesDir   string
	Retention   time.Duration
}

// Server holds the handlers' shared state.
type Server struct {
	opts     Options
	inflight *inflightGuard
	// background tracks fire-and-forget analytics writes.
	background sync.WaitGroup
}

// New checks opts and returns a Server.
func New(opts Options) (*Server, error) {
	if opts.Sender == nil {
		return nil, fmt.Errorf("site: sender is required")
	}
	if opts.Store == nil || opts.Hasher == nil {
		return nil, fmt.Errorf("site: analytics store and hasher are required")
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}
	if opts.Retention <= 0 {
		opts.Retention = 365 * 24 * time.Hour
	}
	return &Server{opts: opts, inflight: newInflightGuard()}, nil
}

// Wait blocks until pending analytics writes finish.
func (s *Server) Wait() {
	s.background.Wait()
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() (*gin.Engine, error) {
	tmpl, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.SetHTMLTemplate(tmpl)
	r.Use(s.visitorTracking())

	r.StaticFS("/static", http.FS(static))
	if strings.TrimSpace(s.opts.ImagesDir) != "" {
		r.Static("/images", s.opts.ImagesDir)
	}

	r.GET("/", s.handleHome)
	r.POST("/contact", s.handleContactPost)
	r.POST("/api/contact", s.handleContactAPI)
	r.GET("/api/content", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.opts.Portfolio)
	})
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"Title":         "Privacy Policy",
			"RetentionDays": int(s.opts.Retention.Hours() / 24),
		})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.setupAdminRoutes(r)
	return r, nil
}
