package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeti47/reelpress/logging"
	"github.com/yeti47/reelpress/pipeline"
)

// SweepRunner triggers sweeps and reports counters. Manual runs may race a
// scheduled sweep; that is safe because every job's temp paths are
// job-local.
type SweepRunner interface {
	RunSweep(ctx context.Context) error
	Stats() pipeline.StatsSnapshot
}

// Server exposes the control surface: health, a manual run trigger and the
// recent post ledger. There is deliberately no dashboard UI here.
type Server struct {
	logger  logging.Logger
	runner  SweepRunner
	ledger  *pipeline.Ledger
	nextRun func() time.Time
}

// NewServer creates a new control server. ledger and nextRun may be nil.
func NewServer(logger logging.Logger, runner SweepRunner, ledger *pipeline.Ledger, nextRun func() time.Time) *Server {
	if logger == nil {
		logger = logging.NopLogger
	}

	return &Server{
		logger:  logger,
		runner:  runner,
		ledger:  ledger,
		nextRun: nextRun,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.health)

	api := router.Group("/api")
	api.POST("/run", s.runNow)
	api.GET("/posts", s.recentPosts)

	return router
}

// health handles GET /health
func (s *Server) health(c *gin.Context) {
	response := gin.H{
		"status":    "healthy",
		"service":   "reelpress",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"stats":     s.runner.Stats(),
	}
	if s.nextRun != nil {
		if next := s.nextRun(); !next.IsZero() {
			response["next_run"] = next.Format(time.RFC3339)
		}
	}

	c.JSON(http.StatusOK, response)
}

// runNow handles POST /api/run. The sweep runs in its own goroutine so the
// request returns immediately.
func (s *Server) runNow(c *gin.Context) {
	s.logger.Info("Manual sweep triggered")

	go func() {
		if err := s.runner.RunSweep(context.Background()); err != nil {
			s.logger.Error("Manual sweep failed", "error", err.Error())
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"success": true, "message": "sweep started"})
}

// recentPostLimit bounds the ledger page returned by the API.
const recentPostLimit = 50

// postResponse is the API representation of one ledger entry.
type postResponse struct {
	ID          string `json:"id"`
	CandidateID string `json:"candidate_id"`
	Title       string `json:"title"`
	Stage       string `json:"stage"`
	FailedStage string `json:"failed_stage,omitempty"`
	PublicURL   string `json:"public_url,omitempty"`
	MediaID     string `json:"media_id,omitempty"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// recentPosts handles GET /api/posts
func (s *Server) recentPosts(c *gin.Context) {
	if s.ledger == nil {
		c.JSON(http.StatusOK, gin.H{"posts": []postResponse{}})
		return
	}

	entries, err := s.ledger.Recent(c.Request.Context(), recentPostLimit)
	if err != nil {
		s.logger.Error("Failed to read post ledger", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read post ledger"})
		return
	}

	posts := make([]postResponse, 0, len(entries))
	for _, e := range entries {
		posts = append(posts, postResponse{
			ID:          e.ID,
			CandidateID: e.CandidateID,
			Title:       e.Title,
			Stage:       e.Stage,
			FailedStage: e.FailedStage,
			PublicURL:   e.PublicURL,
			MediaID:     e.MediaID,
			Error:       e.Error,
			CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}
