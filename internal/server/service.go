package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/finvoice-bridge/constants"
	"github.com/joseph-ayodele/finvoice-bridge/internal/entity"
	"github.com/joseph-ayodele/finvoice-bridge/internal/export"
	"github.com/joseph-ayodele/finvoice-bridge/internal/pipeline"
	"github.com/joseph-ayodele/finvoice-bridge/internal/repository"
)

// Service exposes the pipeline and the outcome archive over HTTP.
type Service struct {
	logger    *slog.Logger
	processor *pipeline.Processor
	outcomes  repository.OutcomeRepository
	exporter  *export.Service
	db        *sql.DB
}

func NewService(
	logger *slog.Logger,
	processor *pipeline.Processor,
	outcomes repository.OutcomeRepository,
	exporter *export.Service,
	db *sql.DB,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:    logger,
		processor: processor,
		outcomes:  outcomes,
		exporter:  exporter,
		db:        db,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Service) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.health)

	v1 := r.Group("/v1")
	v1.POST("/documents", s.processDocument)
	v1.GET("/outcomes", s.listOutcomes)
	v1.GET("/outcomes/:id/xml", s.getOutcomeXML)
	v1.GET("/export/review.xlsx", s.exportReview)

	return r
}

func (s *Service) health(c *gin.Context) {
	if err := repository.HealthCheck(c.Request.Context(), s.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type processRequest struct {
	DocumentID string  `json:"document_id" binding:"required"`
	RawText    string  `json:"raw_text" binding:"required"`
	Confidence float64 `json:"confidence"`
}

func (s *Service) processDocument(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc := entity.Document{ID: req.DocumentID, RawText: req.RawText, Confidence: req.Confidence}
	out := s.processor.ProcessDocument(c.Request.Context(), doc)

	if err := s.outcomes.Save(c.Request.Context(), &out); err != nil {
		s.logger.Error("archive save failed", "document_id", doc.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to archive outcome"})
		return
	}

	status := http.StatusOK
	if out.Status == constants.StatusRejected {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, out)
}

func (s *Service) listOutcomes(c *gin.Context) {
	status := constants.OutcomeStatus(c.DefaultQuery("status", string(constants.StatusNeedsReview)))
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 {
		limit = 100
	}

	outs, err := s.outcomes.ListByStatus(c.Request.Context(), status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": outs, "count": len(outs)})
}

func (s *Service) getOutcomeXML(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid outcome id"})
		return
	}

	out, err := s.outcomes.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "outcome not found"})
		return
	}
	if out.Status != constants.StatusSucceeded || len(out.XML) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "outcome has no XML", "status": out.Status})
		return
	}
	c.Data(http.StatusOK, "application/xml", out.XML)
}

func (s *Service) exportReview(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "500"))
	xlsx, err := s.exporter.ExportReviewXLSX(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="review.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", xlsx)
}
