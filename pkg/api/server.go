// Package api serves the local control API and pushes published artwork to WebSocket clients.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ulmus/onweekdays/pkg/artsource"
	"github.com/ulmus/onweekdays/pkg/store"
	"github.com/ulmus/onweekdays/util/log"
)

const writeWait = 5 * time.Second

// ArtworkStore is the read side of the state store.
type ArtworkStore interface {
	CurrentArtwork() (*artsource.Artwork, error)
	History(limit int) ([]store.HistoryEntry, error)
}

// Controller accepts user commands for the rotation.
type Controller interface {
	Next() bool
	Reschedule()
	NextUpdate() time.Time
}

// Settings are the user preferences editable through the API.
type Settings interface {
	GetWifiOnly() bool
	SetWifiOnly(enabled bool)
	GetIntervalHours() int
	SetIntervalHours(hours int) error
}

// Server represents the local REST/WebSocket server.
type Server struct {
	addr       string
	engine     *gin.Engine
	httpServer *http.Server
	upgrader   websocket.Upgrader

	store      ArtworkStore
	controller Controller
	settings   Settings

	// WebSocket management
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
}

// NewServer creates a new API server listening on addr.
func NewServer(addr string, st ArtworkStore, controller Controller, settings Settings) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		addr:       addr,
		engine:     gin.New(),
		store:      st,
		controller: controller,
		settings:   settings,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return allowedOrigin(r.Header.Get("Origin"))
			},
		},
		clients: make(map[*websocket.Conn]bool),
	}
	s.engine.Use(gin.Recovery(), corsMiddleware())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/artwork", s.handleArtwork)
	s.engine.GET("/history", s.handleHistory)
	s.engine.POST("/next", s.handleNext)
	s.engine.GET("/settings", s.handleGetSettings)
	s.engine.PUT("/settings", s.handlePutSettings)
	s.engine.GET("/ws", s.handleWebSocket)
}

// allowedOrigin reports whether a request with this Origin header may use the API.
// Local tools send none; web pages may not reach it, browser extensions may.
func allowedOrigin(origin string) bool {
	return origin == "" ||
		strings.HasPrefix(origin, "chrome-extension://") ||
		strings.HasPrefix(origin, "moz-extension://")
}

// corsMiddleware allows browser extensions to call the API on localhost and rejects web pages.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if !allowedOrigin(origin) {
			log.Debugf("Rejected API request from origin %q", origin)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Handler:           s.engine,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(listener)
	}()
	log.Printf("Local API listening on %s", listener.Addr())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeClients()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Publish sends the artwork to every connected WebSocket client.
func (s *Server) Publish(ctx context.Context, art artsource.Artwork) error {
	s.broadcast(artworkMessage{Type: "artwork", Artwork: art})
	return nil
}

type artworkMessage struct {
	Type    string            `json:"type"`
	Artwork artsource.Artwork `json:"artwork"`
}

func (s *Server) broadcast(msg any) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for client := range s.clients {
		client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteJSON(msg); err != nil {
			log.Printf("Failed to broadcast to client: %v", err)
			client.Close()
			delete(s.clients, client)
		}
	}
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for client := range s.clients {
		client.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		client.Close()
		delete(s.clients, client)
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}
