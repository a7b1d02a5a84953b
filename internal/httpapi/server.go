// Package httpapi exposes the operational HTTP surface (Gin): liveness,
// Prometheus metrics, a small stats endpoint, and the feed event ingest
// used by external stream relays. The bot itself talks to Telegram over
// long polling; this server carries everything else.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stanbotdev/stanbot/internal/feed"
	"github.com/stanbotdev/stanbot/internal/services"
)

// eventPayload is the ingest wire format for one stream event.
type eventPayload struct {
	ID           string `json:"id" binding:"required"`
	SourceID     string `json:"source_id" binding:"required"`
	AuthorName   string `json:"author_name"`
	AuthorHandle string `json:"author_handle"`
	AvatarURL    string `json:"avatar_url"`
	Text         string `json:"text"`
	Media        []struct {
		URL  string `json:"url" binding:"required"`
		Type string `json:"type"`
	} `json:"media"`
}

// RegisterRoutes attaches the operational endpoints to the given Gin
// engine. events receives ingested stream events; a full buffer answers
// 503 so the relay can retry.
func RegisterRoutes(r *gin.Engine, community *services.CommunityService, events chan<- feed.Event) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/stats", func(c *gin.Context) {
		totals, err := community.Totals(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"links":   totals.Links,
			"groups":  totals.Groups,
			"members": totals.Members,
		})
	})

	r.POST("/feed/events", func(c *gin.Context) {
		var p eventPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
			return
		}
		ev := feed.Event{
			ID:           p.ID,
			SourceID:     p.SourceID,
			AuthorName:   p.AuthorName,
			AuthorHandle: p.AuthorHandle,
			AvatarURL:    p.AvatarURL,
			Text:         p.Text,
		}
		for _, m := range p.Media {
			mt := feed.MediaImage
			if strings.EqualFold(m.Type, string(feed.MediaVideo)) {
				mt = feed.MediaVideo
			}
			ev.Media = append(ev.Media, feed.Media{URL: m.URL, Type: mt})
		}
		select {
		case events <- ev:
			c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event queue full"})
		}
	})
}

// NewServer builds an http.Server around a Gin engine with the operational
// routes registered.
func NewServer(addr string, community *services.CommunityService, events chan<- feed.Event) *http.Server {
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, community, events)
	return &http.Server{
		Addr:    addr,
		Handler: r,
	}
}
