package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"dealscope/internal/storage"
)

type alertRequest struct {
	TargetPrice decimal.Decimal `json:"target_price"`
	Enabled     *bool           `json:"enabled"`
}

type alertJSON struct {
	ProductID      string          `json:"product_id"`
	TargetPrice    decimal.Decimal `json:"target_price"`
	Enabled        bool            `json:"enabled"`
	LastNotifiedAt *string         `json:"last_notified_at,omitempty"`
}

func toAlertJSON(alert storage.TargetPriceAlert) alertJSON {
	out := alertJSON{
		ProductID:   alert.ProductID.String(),
		TargetPrice: alert.TargetPrice,
		Enabled:     alert.Enabled,
	}
	if alert.LastNotifiedAt != nil {
		at := alert.LastNotifiedAt.UTC().Format(time.RFC3339)
		out.LastNotifiedAt = &at
	}
	return out
}

func (s *Server) handleGetAlert(c *gin.Context) {
	userID := currentUserID(c)
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	alert, err := s.alerts.GetAlert(c.Request.Context(), userID, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "no alert for this product")
			return
		}
		s.logger.Error().Err(err).Stringer("user", userID).Msg("get alert failed")
		respondError(c, http.StatusInternalServerError, "failed to load alert")
		return
	}
	c.JSON(http.StatusOK, toAlertJSON(alert))
}

func (s *Server) handleUpsertAlert(c *gin.Context) {
	userID := currentUserID(c)
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid alert payload")
		return
	}
	if !req.TargetPrice.IsPositive() {
		respondError(c, http.StatusBadRequest, "target_price must be positive")
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	alert, err := s.alerts.UpsertAlert(c.Request.Context(), storage.TargetPriceAlert{
		UserID:      userID,
		ProductID:   productID,
		TargetPrice: req.TargetPrice,
		Enabled:     enabled,
	})
	if err != nil {
		s.logger.Error().Err(err).Stringer("user", userID).Msg("upsert alert failed")
		respondError(c, http.StatusInternalServerError, "failed to save alert")
		return
	}
	c.JSON(http.StatusOK, toAlertJSON(alert))
}

func (s *Server) handleDeleteAlert(c *gin.Context) {
	userID := currentUserID(c)
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	if err := s.alerts.DeleteAlert(c.Request.Context(), userID, productID); err != nil {
		s.logger.Error().Err(err).Stringer("user", userID).Msg("delete alert failed")
		respondError(c, http.StatusInternalServerError, "failed to delete alert")
		return
	}
	c.Status(http.StatusNoContent)
}

func productIDParam(c *gin.Context) (uuid.UUID, bool) {
	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid product id")
		return uuid.Nil, false
	}
	return productID, true
}
