package site

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	adminCookie     = "admin_token"
	adminSubject    = "admin"
	adminSessionTTL = 24 * time.Hour

	devAdminUsername = "admin"
	devAdminPassword = "admin123"
)

// AdminAuth checks admin credentials and issues signed session tokens.
type AdminAuth struct {
	username string
	password string
	key      []byte
	now      func() time.Time
}

// NewAdminAuth returns nil when no credentials are configured outside debug
// mode, which leaves the admin routes unregistered. In debug mode missing
// credentials fall back to development defaults.
func NewAdminAuth(username, password string, key []byte, debug bool) (*AdminAuth, error) {
	if len(key) < 32 {
		return nil, fmt.Errorf("admin signing key must be at least 32 bytes")
	}
	if username == "" || password == "" {
		if !debug {
			log.Println("Admin dashboard disabled: set ADMIN_USERNAME and ADMIN_PASSWORD to enable it.")
			return nil, nil
		}
		if username == "" {
			username = devAdminUsername
			log.Println("WARNING: Using default admin username. Set ADMIN_USERNAME environment variable.")
		}
		if password == "" {
			password = devAdminPassword
			log.Println("WARNING: Using default admin password. Set ADMIN_PASSWORD environment variable.")
		}
	}
	return &AdminAuth{username: username, password: password, key: key, now: time.Now}, nil
}

// Check compares credentials in constant time.
func (a *AdminAuth) Check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

// Issue returns a signed session token valid for adminSessionTTL.
func (a *AdminAuth) Issue() (string, error) {
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(adminSessionTTL)),
	})
	return token.SignedString(a.key)
}

// Verify validates a session token.
func (a *AdminAuth) Verify(raw string) error {
	if raw == "" {
		return errors.New("missing admin token")
	}
	_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return a.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	return err
}

// adminAuthMiddleware redirects to the login page without a valid session.
func (s *Server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(adminCookie)
		if err := s.opts.Admin.Verify(token); err != nil {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	if s.opts.Admin == nil {
		return
	}

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"Title": "Admin Login"})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		visitor := s.opts.Hasher.Hash(c.ClientIP())
		if !s.opts.Admin.Check(c.PostForm("username"), c.PostForm("password")) {
			log.Printf("Failed admin login attempt from %s", visitor)
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"Title": "Admin Login",
				"Error": "Invalid credentials",
			})
			return
		}
		token, err := s.opts.Admin.Issue()
		if err != nil {
			log.Printf("Error issuing admin token: %v", err)
			s.adminError(c, "Failed to start session")
			return
		}
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, token, int(adminSessionTTL.Seconds()), "/admin", "", c.Request.TLS != nil, true)
		log.Printf("Admin login successful from %s", visitor)
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", c.Request.TLS != nil, true)
		log.Printf("Admin logout from %s", s.opts.Hasher.Hash(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	admin := r.Group("/admin")
	admin.Use(s.adminAuthMiddleware())

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.opts.Store.Stats(c.Request.Context(), time.Now())
		if err != nil {
			log.Printf("Error loading admin stats: %v", err)
			s.adminError(c, "Failed to load statistics")
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{"Title": "Dashboard", "Stats": stats})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.opts.Store.Stats(c.Request.Context(), time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/visitors", func(c *gin.Context) {
		visitors, err := s.opts.Store.RecentVisits(c.Request.Context(), 200)
		if err != nil {
			log.Printf("Error loading visitors: %v", err)
			s.adminError(c, "Failed to load visitors")
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{"Title": "Visitors", "Visitors": visitors})
	})

	admin.GET("/deliveries", func(c *gin.Context) {
		deliveries, err := s.opts.Store.RecentDeliveries(c.Request.Context(), 200)
		if err != nil {
			log.Printf("Error loading deliveries: %v", err)
			s.adminError(c, "Failed to load deliveries")
			return
		}
		c.HTML(http.StatusOK, "admin-deliveries.html", gin.H{"Title": "Deliveries", "Deliveries": deliveries})
	})

	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		s.PurgeExpired(context.WithoutCancel(c.Request.Context()))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.opts.Store.Stats(c.Request.Context(), time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		log.Printf("Admin stats exported by %s", s.opts.Hasher.Hash(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})
}

func (s *Server) adminError(c *gin.Context, msg string) {
	c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"Title": "Error", "Error": msg})
}
