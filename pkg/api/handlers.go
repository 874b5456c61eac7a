package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulmus/onweekdays/config"
	"github.com/ulmus/onweekdays/util/log"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type settingsBody struct {
	WifiOnly      *bool `json:"wifi_only"`
	IntervalHours *int  `json:"interval_hours"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "running",
		"version":     config.AppVersion,
		"next_update": s.controller.NextUpdate().Format(time.RFC3339),
	})
}

func (s *Server) handleArtwork(c *gin.Context) {
	art, err := s.store.CurrentArtwork()
	if err != nil {
		log.Printf("Failed to read current artwork: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read current artwork"})
		return
	}
	if art == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no artwork published yet"})
		return
	}
	c.JSON(http.StatusOK, art)
}

func (s *Server) handleHistory(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := s.store.History(limit)
	if err != nil {
		log.Printf("Failed to read history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (s *Server) handleNext(c *gin.Context) {
	if !s.controller.Next() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "next artwork requested too recently"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "requested"})
}

func (s *Server) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.currentSettings())
}

func (s *Server) handlePutSettings(c *gin.Context) {
	var body settingsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if body.IntervalHours != nil && *body.IntervalHours <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval_hours must be positive"})
		return
	}

	if body.WifiOnly != nil {
		s.settings.SetWifiOnly(*body.WifiOnly)
	}
	if body.IntervalHours != nil {
		if err := s.settings.SetIntervalHours(*body.IntervalHours); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if body.WifiOnly != nil || body.IntervalHours != nil {
		s.controller.Reschedule()
	}

	c.JSON(http.StatusOK, s.currentSettings())
}

func (s *Server) currentSettings() gin.H {
	return gin.H{
		"wifi_only":      s.settings.GetWifiOnly(),
		"interval_hours": s.settings.GetIntervalHours(),
	}
}

// handleWebSocket upgrades the connection and keeps it registered until the client goes away.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()

	if art, err := s.store.CurrentArtwork(); err == nil && art != nil {
		s.clientsMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err = conn.WriteJSON(artworkMessage{Type: "artwork", Artwork: *art})
		s.clientsMu.Unlock()
		if err != nil {
			return
		}
	}

	for {
		// Incoming messages are ignored; reading keeps the close handshake working.
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
