package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"dealscope/internal/deal"
	"dealscope/internal/storage"
)

// analysisDepth caps how much history feeds a deal analysis.
const analysisDepth = 365

type productJSON struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Category      string           `json:"category"`
	ImageURL      string           `json:"image_url"`
	AmazonURL     *string          `json:"amazon_url,omitempty"`
	FlipkartURL   *string          `json:"flipkart_url,omitempty"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
}

type pricesJSON struct {
	Amazon   *decimal.Decimal `json:"amazon,omitempty"`
	Flipkart *decimal.Decimal `json:"flipkart,omitempty"`
	Best     decimal.Decimal  `json:"best"`
	Cheapest deal.Retailer    `json:"cheapest"`
}

type sampleJSON struct {
	ObservedAt          time.Time        `json:"observed_at"`
	AmazonPrice         *decimal.Decimal `json:"amazon_price,omitempty"`
	FlipkartPrice       *decimal.Decimal `json:"flipkart_price,omitempty"`
	AmazonDiscountPct   *decimal.Decimal `json:"amazon_discount_pct,omitempty"`
	FlipkartDiscountPct *decimal.Decimal `json:"flipkart_discount_pct,omitempty"`
}

func toProductJSON(product storage.Product) productJSON {
	return productJSON{
		ID:            product.ID.String(),
		Name:          product.Name,
		Slug:          product.Slug,
		Category:      product.Category,
		ImageURL:      product.ImageURL,
		AmazonURL:     product.AmazonURL,
		FlipkartURL:   product.FlipkartURL,
		OriginalPrice: product.OriginalPrice,
	}
}

func toPricesJSON(history []storage.PriceSample) pricesJSON {
	amazon := deal.CurrentRetailerPrice(history, deal.RetailerAmazon)
	flipkart := deal.CurrentRetailerPrice(history, deal.RetailerFlipkart)
	return pricesJSON{
		Amazon:   amazon,
		Flipkart: flipkart,
		Best:     deal.BestPrice(amazon, flipkart),
		Cheapest: deal.CheapestRetailer(amazon, flipkart),
	}
}

func (s *Server) handleListProducts(c *gin.Context) {
	search := c.Query("search")
	limit := intQuery(c, "limit", 20, 100)
	offset := intQuery(c, "offset", 0, 1<<20)

	products, err := s.products.ListProducts(c.Request.Context(), search, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("list products failed")
		respondError(c, http.StatusInternalServerError, "failed to load products")
		return
	}

	items := make([]productJSON, 0, len(products))
	for _, product := range products {
		items = append(items, toProductJSON(product))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleGetProduct(c *gin.Context) {
	product, ok := s.lookupProduct(c)
	if !ok {
		return
	}

	history, err := s.history.ListRecentSamples(c.Request.Context(), product.ID, analysisDepth)
	if err != nil {
		s.logger.Error().Err(err).Str("product", product.Slug).Msg("load history failed")
		respondError(c, http.StatusInternalServerError, "failed to load prices")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": toProductJSON(product),
		"prices":  toPricesJSON(history),
	})
}

func (s *Server) handleGetHistory(c *gin.Context) {
	product, ok := s.lookupProduct(c)
	if !ok {
		return
	}

	days := intQuery(c, "days", 90, 730)
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	samples, err := s.history.ListSamplesBetween(c.Request.Context(), product.ID, from, to)
	if err != nil {
		s.logger.Error().Err(err).Str("product", product.Slug).Msg("load history failed")
		respondError(c, http.StatusInternalServerError, "failed to load price history")
		return
	}

	items := make([]sampleJSON, 0, len(samples))
	for _, sample := range samples {
		items = append(items, sampleJSON{
			ObservedAt:          sample.ObservedAt,
			AmazonPrice:         sample.AmazonPrice,
			FlipkartPrice:       sample.FlipkartPrice,
			AmazonDiscountPct:   sample.AmazonDiscountPct,
			FlipkartDiscountPct: sample.FlipkartDiscountPct,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleGetAnalysis(c *gin.Context) {
	product, ok := s.lookupProduct(c)
	if !ok {
		return
	}

	history, err := s.history.ListRecentSamples(c.Request.Context(), product.ID, analysisDepth)
	if err != nil {
		s.logger.Error().Err(err).Str("product", product.Slug).Msg("load history failed")
		respondError(c, http.StatusInternalServerError, "failed to load prices")
		return
	}

	currentPrice := deal.BestCurrentPrice(history)
	analysis := s.scorer.Analyze(history, currentPrice)
	if analysis == nil {
		// Not scorable: the client omits the panel entirely.
		c.Status(http.StatusNoContent)
		return
	}

	reasons := make([]gin.H, 0, len(analysis.Reasons))
	for _, reason := range analysis.Reasons {
		reasons = append(reasons, gin.H{
			"label": reason.Label,
			"value": reason.Value,
			"tone":  reason.Tone,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"score":   analysis.Score,
		"verdict": analysis.Verdict,
		"reasons": reasons,
		"stats": gin.H{
			"highest": analysis.Stats.Highest,
			"lowest":  analysis.Stats.Lowest,
			"average": analysis.Stats.Average,
			"current": analysis.Stats.Current,
		},
	})
}

func (s *Server) lookupProduct(c *gin.Context) (storage.Product, bool) {
	slug := c.Param("slug")
	product, err := s.products.GetProductBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "product not found")
			return storage.Product{}, false
		}
		s.logger.Error().Err(err).Str("slug", slug).Msg("load product failed")
		respondError(c, http.StatusInternalServerError, "failed to load product")
		return storage.Product{}, false
	}
	if product.Archived {
		respondError(c, http.StatusNotFound, "product not found")
		return storage.Product{}, false
	}
	return product, true
}

func intQuery(c *gin.Context, name string, def, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return def
	}
	if value > max {
		return max
	}
	return value
}
