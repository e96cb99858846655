package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type wishlistAddRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

func (s *Server) handleListWishlist(c *gin.Context) {
	userID := currentUserID(c)

	entries, err := s.wishlist.ListWishlist(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Stringer("user", userID).Msg("list wishlist failed")
		respondError(c, http.StatusInternalServerError, "failed to load wishlist")
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		item := gin.H{
			"product":  toProductJSON(entry.Product),
			"added_at": entry.AddedAt.UTC().Format(time.RFC3339),
		}
		// Best-effort price decoration; a failed lookup leaves the
		// entry without prices rather than failing the page.
		history, histErr := s.history.ListRecentSamples(c.Request.Context(), entry.Product.ID, 10)
		if histErr == nil && len(history) > 0 {
			item["prices"] = toPricesJSON(history)
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleAddWishlist(c *gin.Context) {
	userID := currentUserID(c)

	var req wishlistAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "product_id is required")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid product_id")
		return
	}

	if err := s.wishlist.AddToWishlist(c.Request.Context(), userID, productID); err != nil {
		s.logger.Error().Err(err).Stringer("user", userID).Msg("add wishlist failed")
		respondError(c, http.StatusInternalServerError, "failed to update wishlist")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRemoveWishlist(c *gin.Context) {
	userID := currentUserID(c)

	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := s.wishlist.RemoveFromWishlist(c.Request.Context(), userID, productID); err != nil {
		s.logger.Error().Err(err).Stringer("user", userID).Msg("remove wishlist failed")
		respondError(c, http.StatusInternalServerError, "failed to update wishlist")
		return
	}
	c.Status(http.StatusNoContent)
}
