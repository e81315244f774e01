package site

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/devfolio/internal/analytics"
)

var untrackedPrefixes = []string{"/static/", "/images/", "/admin/", "/api/", "/favicon", "/privacy", "/healthz"}

// visitorTracking records page views with hashed IPs. Static assets, admin
// pages and Do Not Track requests are skipped.
func (s *Server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || !tracked(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		visit := analytics.Visit{
			HashedIP:  s.opts.Hasher.Hash(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			VisitedAt: time.Now(),
		}
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			if err := s.opts.Store.RecordVisit(context.Background(), visit); err != nil {
				log.Printf("Error recording visitor: %v", err)
			}
		}()
		c.Next()
	}
}

func tracked(path string) bool {
	for _, prefix := range untrackedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// PurgeExpired removes visitor records older than the retention period.
func (s *Server) PurgeExpired(ctx context.Context) {
	n, err := s.opts.Store.PurgeVisitsBefore(ctx, time.Now().Add(-s.opts.Retention))
	if err != nil {
		log.Printf("Error cleaning up old visitor data: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Privacy cleanup: removed %d visitor records older than %s", n, s.opts.Retention)
	}
}
