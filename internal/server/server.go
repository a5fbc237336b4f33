package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/studymesh/conceptgraph/internal/config"
	"github.com/studymesh/conceptgraph/internal/core"
	"github.com/studymesh/conceptgraph/internal/core/layout"
	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/core/similarity"
	"github.com/studymesh/conceptgraph/internal/driver"
	"github.com/studymesh/conceptgraph/internal/llm"
	"github.com/studymesh/conceptgraph/internal/viewport"
)

type Server struct {
	Engine    *core.Engine
	Viewports *viewport.Store
	Log       *zap.Logger
}

func NewServer() *Server {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Warn("could not load config file, using defaults", zap.String("path", cfgPath), zap.Error(err))
		cfg = config.Default()
	}

	// Env overrides for deploy-time settings.
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		cfg.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		cfg.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		cfg.Memgraph.Password = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.SQLite.Path = v
	}

	// Both collaborators are optional: without an LLM there are no conflict
	// recommendations, without Memgraph the graph lives only in memory.
	var llmClient llm.LLMClient
	var scorer similarity.Scorer
	if cfg.LLM.Provider != "" {
		client, embedder, err := llm.NewClient(context.Background(), cfg.LLM)
		if err != nil {
			log.Fatal("failed to initialize LLM client", zap.Error(err))
		}
		llmClient = client
		if embedder != nil {
			scorer = similarity.NewEmbeddingScorer(embedder)
		}
	}

	var graphDriver driver.GraphDriver
	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			log.Fatal("failed to connect to Memgraph", zap.Error(err))
		}
		if err := d.BuildIndices(context.Background()); err != nil {
			log.Warn("failed to build Memgraph indices", zap.Error(err))
		}
		graphDriver = d
	}

	viewports, err := viewport.Open(cfg.SQLite.Path)
	if err != nil {
		log.Fatal("failed to open viewport store", zap.Error(err))
	}

	return &Server{
		Engine:    core.NewEngine(cfg, scorer, llmClient, graphDriver, log),
		Viewports: viewports,
		Log:       log,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/documents/:id/ingest", s.Ingest)
	r.GET("/documents/:id/duplicates", s.FindDuplicates)
	r.POST("/documents/:id/merge", s.Merge)
	r.POST("/documents/:id/concepts/:conceptId/approve", s.ApproveConcept)
	r.POST("/documents/:id/concepts/:conceptId/reject", s.RejectConcept)
	r.PUT("/documents/:id/concepts/:conceptId", s.EditConcept)
	r.POST("/documents/:id/distinct", s.MarkDistinct)
	r.POST("/documents/:id/classify", s.Classify)
	r.GET("/documents/:id/layout/:type", s.ComputeLayout)

	r.POST("/conflicts/detect", s.DetectConflicts)
	r.GET("/conflicts", s.ListConflicts)
	r.POST("/conflicts/:id/resolve", s.ResolveConflict)
	r.POST("/conflicts/:id/dismiss", s.DismissConflict)

	r.GET("/viewports", s.GetViewport)
	r.PUT("/viewports", s.PutViewport)
	r.DELETE("/viewports", s.ResetViewport)

	return r
}

// fail maps the engine's error taxonomy onto HTTP statuses.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrInvalidMerge):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrStaleVersion), errors.Is(err, model.ErrConflictAlreadyResolved):
		status = http.StatusConflict
	case errors.Is(err, model.ErrCyclicSequence):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

type IngestRequest struct {
	Concepts      []model.ConceptCandidate      `json:"concepts"`
	Relationships []model.RelationshipCandidate `json:"relationships"`
}

func (s *Server) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	summary, err := s.Engine.IngestBatch(c.Request.Context(), c.Param("id"), req.Concepts, req.Relationships)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": summary,
		"version": s.Engine.Store.Version(c.Param("id")),
	})
}

func (s *Server) FindDuplicates(c *gin.Context) {
	pairs, err := s.Engine.FindDuplicates(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"duplicates": pairs})
}

type MergeRequest struct {
	Version     int64  `json:"version"`
	PrimaryID   string `json:"primary_id"`
	DuplicateID string `json:"duplicate_id"`
}

func (s *Server) Merge(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	merged, version, err := s.Engine.Merge(c.Request.Context(), c.Param("id"), req.Version, req.PrimaryID, req.DuplicateID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"concept": merged, "version": version})
}

type VersionRequest struct {
	Version int64 `json:"version"`
}

func (s *Server) ApproveConcept(c *gin.Context) {
	var req VersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	concept, version, err := s.Engine.Store.ApproveConcept(c.Param("id"), req.Version, c.Param("conceptId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"concept": concept, "version": version})
}

func (s *Server) RejectConcept(c *gin.Context) {
	var req VersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	version, err := s.Engine.Store.RejectConcept(c.Param("id"), req.Version, c.Param("conceptId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": version})
}

type EditConceptRequest struct {
	Version    int64  `json:"version"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

func (s *Server) EditConcept(c *gin.Context) {
	var req EditConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	concept, version, err := s.Engine.Store.EditConcept(c.Param("id"), req.Version, c.Param("conceptId"), req.Term, req.Definition)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"concept": concept, "version": version})
}

type MarkDistinctRequest struct {
	Version int64  `json:"version"`
	AID     string `json:"a_id"`
	BID     string `json:"b_id"`
}

func (s *Server) MarkDistinct(c *gin.Context) {
	var req MarkDistinctRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	version, err := s.Engine.Store.MarkDistinct(c.Param("id"), req.Version, req.AID, req.BID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": version})
}

func (s *Server) Classify(c *gin.Context) {
	var req VersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	version, err := s.Engine.ClassifyRelationships(c.Param("id"), req.Version)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": version})
}

func (s *Server) ComputeLayout(c *gin.Context) {
	result, version, err := s.Engine.ComputeLayout(c.Param("id"), layout.Type(c.Param("type")))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nodes": result.Nodes, "edges": result.Edges, "version": version})
}

type DetectConflictsRequest struct {
	DocumentNames map[string]string `json:"document_names"`
}

func (s *Server) DetectConflicts(c *gin.Context) {
	var req DetectConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	conflicts, err := s.Engine.DetectConflicts(c.Request.Context(), req.DocumentNames)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conflicts": conflicts})
}

func (s *Server) ListConflicts(c *gin.Context) {
	status := model.ConflictStatus(c.Query("status"))
	c.JSON(http.StatusOK, gin.H{"conflicts": s.Engine.Store.ListConflicts(status)})
}

type ResolveConflictRequest struct {
	SelectedSource   string `json:"selected_source"`
	CustomDefinition string `json:"custom_definition"`
	ResolvedBy       string `json:"resolved_by"`
}

func (s *Server) ResolveConflict(c *gin.Context) {
	var req ResolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	concept, err := s.Engine.ResolveConflict(c.Request.Context(), c.Param("id"), req.SelectedSource, req.CustomDefinition, req.ResolvedBy)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"concept": concept})
}

type DismissConflictRequest struct {
	DismissedBy string `json:"dismissed_by"`
}

func (s *Server) DismissConflict(c *gin.Context) {
	var req DismissConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	conflict, err := s.Engine.DismissConflict(c.Param("id"), req.DismissedBy)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conflict": conflict})
}

func (s *Server) GetViewport(c *gin.Context) {
	v, err := s.Viewports.Get(c.Query("document_id"), c.Query("user_id"), c.Query("layout_type"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"viewport": v})
}

type PutViewportRequest struct {
	DocumentID string         `json:"document_id"`
	UserID     string         `json:"user_id"`
	LayoutType string         `json:"layout_type"`
	Viewport   model.Viewport `json:"viewport"`
}

func (s *Server) PutViewport(c *gin.Context) {
	var req PutViewportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := s.Viewports.Put(req.DocumentID, req.UserID, req.LayoutType, req.Viewport); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (s *Server) ResetViewport(c *gin.Context) {
	if err := s.Viewports.Reset(c.Query("document_id"), c.Query("user_id"), c.Query("layout_type")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
