package http

import (
	"context"
	"log"

	"custodia/internal/config"
	"custodia/internal/domain"
	"custodia/internal/redact"
	"custodia/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Authenticate(*gin.Context) (domain.Actor, error)
}

type Authorizer interface {
	Allow(ctx context.Context, actor domain.Actor, action string) (bool, error)
}

// Server exposes the custody entry points over HTTP. Every mutating route
// goes through the tracker; nothing else writes events or artifacts.
type Server struct {
	cfg      config.Config
	r        *gin.Engine
	tracker  *usecase.CustodyTracker
	ledger   *usecase.Ledger
	verifier *usecase.Verifier
	blobs    usecase.BlobStore
	redactor *redact.Engine
	auth     Authenticator
	authz    Authorizer
	limiter  domain.RateLimiter
}

type ServerDeps struct {
	Tracker       *usecase.CustodyTracker
	Ledger        *usecase.Ledger
	Verifier      *usecase.Verifier
	Blobs         usecase.BlobStore
	Redactor      *redact.Engine
	Authenticator Authenticator
	Authorizer    Authorizer
	Limiter       domain.RateLimiter
}

func NewServer(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:      cfg,
		r:        r,
		tracker:  deps.Tracker,
		ledger:   deps.Ledger,
		verifier: deps.Verifier,
		blobs:    deps.Blobs,
		redactor: deps.Redactor,
		auth:     deps.Authenticator,
		authz:    deps.Authorizer,
		limiter:  deps.Limiter,
	}
	if s.redactor == nil {
		s.redactor = redact.New()
	}
	s.routes()
	return s
}

func (s *Server) Run() error {
	addr := s.cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("custodia listening on %s", addr)
	return s.r.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() *gin.Engine {
	return s.r
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := s.r.Group("/api", s.rateLimit())
	api.POST("/evidence", s.requireAction("ingest"), s.handleIngest)
	api.GET("/evidence/:id", s.requireAction("access"), s.handleAccess)
	api.GET("/evidence/:id/history", s.requireAction("history"), s.handleHistory)
	api.POST("/evidence/:id/redact", s.requireAction("redact"), s.handleRedact)
	api.POST("/evidence/:id/transcribe", s.requireAction("transcribe"), s.handleTranscribe)
	api.POST("/evidence/:id/summarize", s.requireAction("summarize"), s.handleSummarize)
	api.POST("/evidence/:id/export", s.requireAction("export"), s.handleExport)
	api.DELETE("/evidence/:id", s.requireAction("delete"), s.handleDelete)
	api.GET("/ledger", s.requireAction("history"), s.handleLedgerRange)
	api.GET("/verify/ledger", s.requireAction("verify"), s.handleVerifyLedger)
	api.GET("/verify/evidence/:id", s.requireAction("verify"), s.handleVerifyArtifact)
}
