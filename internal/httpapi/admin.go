package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dealscope/internal/storage"
)

type adminProductRequest struct {
	Name          string           `json:"name" binding:"required"`
	Slug          string           `json:"slug" binding:"required"`
	Category      string           `json:"category"`
	ImageURL      string           `json:"image_url"`
	AmazonRef     *string          `json:"amazon_ref"`
	FlipkartRef   *string          `json:"flipkart_ref"`
	AmazonURL     *string          `json:"amazon_url"`
	FlipkartURL   *string          `json:"flipkart_url"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
}

func (s *Server) handleAdminUpsertProduct(c *gin.Context) {
	var req adminProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "name and slug are required")
		return
	}
	if req.OriginalPrice != nil && !req.OriginalPrice.IsPositive() {
		respondError(c, http.StatusBadRequest, "original_price must be positive")
		return
	}

	product := storage.Product{
		Name:          req.Name,
		Slug:          req.Slug,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
		AmazonRef:     req.AmazonRef,
		FlipkartRef:   req.FlipkartRef,
		AmazonURL:     req.AmazonURL,
		FlipkartURL:   req.FlipkartURL,
		OriginalPrice: req.OriginalPrice,
	}

	// PUT updates an existing row; POST creates with a fresh id.
	if raw := c.Param("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}
		product.ID = id
	}

	saved, err := s.products.UpsertProduct(c.Request.Context(), product)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", req.Slug).Msg("upsert product failed")
		respondError(c, http.StatusInternalServerError, "failed to save product")
		return
	}
	c.JSON(http.StatusOK, toProductJSON(saved))
}

func (s *Server) handleAdminArchiveProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := s.products.ArchiveProduct(c.Request.Context(), id); err != nil {
		s.logger.Error().Err(err).Stringer("product", id).Msg("archive product failed")
		respondError(c, http.StatusInternalServerError, "failed to archive product")
		return
	}
	c.Status(http.StatusNoContent)
}

type adminArticleRequest struct {
	Slug      string `json:"slug" binding:"required"`
	Title     string `json:"title" binding:"required"`
	HTMLPath  string `json:"html_path" binding:"required"`
	Published bool   `json:"published"`
}

func (s *Server) handleAdminUpsertArticle(c *gin.Context) {
	var req adminArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "slug, title and html_path are required")
		return
	}

	article := storage.Article{
		Slug:      req.Slug,
		Title:     req.Title,
		HTMLPath:  req.HTMLPath,
		Published: req.Published,
	}
	if req.Published {
		now := time.Now().UTC()
		article.PublishedAt = &now
	}

	if err := s.articles.UpsertArticle(c.Request.Context(), article); err != nil {
		s.logger.Error().Err(err).Str("slug", req.Slug).Msg("upsert article failed")
		respondError(c, http.StatusInternalServerError, "failed to save article")
		return
	}
	c.Status(http.StatusNoContent)
}
