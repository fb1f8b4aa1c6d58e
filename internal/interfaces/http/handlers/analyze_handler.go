package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fairwheel/fairwheel/internal/application/analysis"
	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
	apperrors "github.com/fairwheel/fairwheel/pkg/errors"
)

// AnalyzeHandler serves the price analysis endpoints.
type AnalyzeHandler struct {
	svc analysis.Service
	log logging.Logger
}

// NewAnalyzeHandler creates an AnalyzeHandler backed by svc.
func NewAnalyzeHandler(svc analysis.Service, log logging.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{svc: svc, log: log.Named("http.analyze")}
}

// AnalyzePrice handles POST /api/v1/vehicles/analyze-price.
//
// The request body is a vehicle query; make, model, year and price are
// required, everything else defaults. Validation failures map to 400 with
// the offending code, all other outcomes return the analysis result.
func (h *AnalyzeHandler) AnalyzePrice(c *gin.Context) {
	var q vehicle.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "request body is not valid JSON"))
		return
	}

	result, err := h.svc.AnalyzePrice(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CorpusInfo handles GET /api/v1/market/corpus.
func (h *AnalyzeHandler) CorpusInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.CorpusInfo(c.Request.Context()))
}
