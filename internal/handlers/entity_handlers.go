package handlers

import (
	"errors"
	"net/http"

	"github.com/epeers/bankmetrics/internal/edgar"
	"github.com/epeers/bankmetrics/internal/models"
	"github.com/epeers/bankmetrics/internal/repository"
	"github.com/epeers/bankmetrics/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// EntityHandler serves the published dataset
type EntityHandler struct {
	datasetSvc *services.DatasetService
}

// NewEntityHandler creates a new EntityHandler
func NewEntityHandler(datasetSvc *services.DatasetService) *EntityHandler {
	return &EntityHandler{
		datasetSvc: datasetSvc,
	}
}

// List handles GET /entities
// @Summary List published entities
// @Description Compact listing of every entity in the last published run, sorted by symbol
// @Tags entities
// @Produce json
// @Success 200 {array} models.EntityListItem
// @Failure 503 {object} models.ErrorResponse
// @Router /entities [get]
func (h *EntityHandler) List(c *gin.Context) {
	items, err := h.datasetSvc.ListEntities(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get handles GET /entities/:cik
// @Summary Get one entity record
// @Tags entities
// @Produce json
// @Param cik path string true "CIK, padded or not"
// @Success 200 {object} models.EntityRecord
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /entities/{cik} [get]
func (h *EntityHandler) Get(c *gin.Context) {
	cik, ok := paddedCIK(c)
	if !ok {
		return
	}
	record, err := h.datasetSvc.GetEntity(c.Request.Context(), cik)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Audit handles GET /entities/:cik/audit
// @Summary Get the audit trail of one entity
// @Description Raw facts selected for every resolved figure
// @Tags entities
// @Produce json
// @Param cik path string true "CIK, padded or not"
// @Success 200 {object} models.EntityAudit
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /entities/{cik}/audit [get]
func (h *EntityHandler) Audit(c *gin.Context) {
	cik, ok := paddedCIK(c)
	if !ok {
		return
	}
	audit, err := h.datasetSvc.GetAudit(c.Request.Context(), cik)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, audit)
}

// Summary handles GET /summary
// @Summary Get the summary of the published run
// @Tags runs
// @Produce json
// @Success 200 {object} models.RunSummary
// @Failure 503 {object} models.ErrorResponse
// @Router /summary [get]
func (h *EntityHandler) Summary(c *gin.Context) {
	summary, err := h.datasetSvc.GetSummary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func paddedCIK(c *gin.Context) (string, bool) {
	cik, err := edgar.PadCIK(c.Param("cik"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "invalid CIK",
		})
		return "", false
	}
	return cik, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrEntityNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "entity not in the published dataset",
		})
	case errors.Is(err, repository.ErrNoDataset):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "no_dataset",
			Message: "no dataset has been published yet",
		})
	default:
		log.Errorf("Failed to read dataset: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}
