// Package api exposes a listener's decoded NatNet state over HTTP: a
// JSON status endpoint, the latest frame, a websocket frame stream and
// Prometheus metrics.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mocaptools/natnet-go/pkg/protocol"
	"github.com/mocaptools/natnet-go/pkg/version"
)

// Source is the decoded-state provider the server publishes, normally a
// *client.Client.
type Source interface {
	LatestFrame() *protocol.FrameOfData
	Sender() *protocol.Sender
	Version() version.Version
	FrameCount() uint64
	Started() time.Time
	Subscribe(buffer int) (<-chan *protocol.FrameOfData, func())
}

// Config holds server configuration.
type Config struct {
	Port         int
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:         8080,
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP status server.
type Server struct {
	source     Source
	router     *gin.Engine
	port       int
	httpServer *http.Server
}

// StatusResponse is the payload of GET /api/v1/status.
type StatusResponse struct {
	NatNetVersion string        `json:"natnet_version"`
	Uptime        string        `json:"uptime"`
	FramesDecoded uint64        `json:"frames_decoded"`
	HasFrame      bool          `json:"has_frame"`
	Sender        *SenderStatus `json:"sender,omitempty"`
}

// SenderStatus describes the producing application, when known.
type SenderStatus struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	NatNetVersion string `json:"natnet_version"`
}

// NewServer creates the HTTP API server around a state source.
func NewServer(source Source, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	if config.EnableCORS {
		router.Use(CORSMiddleware())
	}

	s := &Server{
		source: source,
		router: router,
		port:   config.Port,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/status", s.handleStatus)
		v1.GET("/frame/latest", s.handleLatestFrame)
		v1.GET("/stream", s.handleStream)
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start runs the server until Shutdown is called.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleStatus(c *gin.Context) {
	resp := StatusResponse{
		NatNetVersion: s.source.Version().String(),
		Uptime:        time.Since(s.source.Started()).Round(time.Second).String(),
		FramesDecoded: s.source.FrameCount(),
		HasFrame:      s.source.LatestFrame() != nil,
	}
	if sender := s.source.Sender(); sender != nil {
		resp.Sender = &SenderStatus{
			Name:          sender.Name,
			Version:       sender.Version.String(),
			NatNetVersion: sender.NatNetVersion.String(),
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleLatestFrame(c *gin.Context) {
	frame := s.source.LatestFrame()
	if frame == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no frame received yet"})
		return
	}
	c.JSON(http.StatusOK, frame)
}
