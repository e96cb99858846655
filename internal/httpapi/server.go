package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"dealscope/internal/config"
	"dealscope/internal/deal"
	"dealscope/internal/sitemap"
	"dealscope/internal/storage"
)

// Server hosts the REST API, the sitemap endpoint, and the article
// static/SPA routing.
type Server struct {
	cfg      config.ServerConfig
	products storage.ProductStore
	history  storage.PriceHistoryStore
	alerts   storage.AlertStore
	wishlist storage.WishlistStore
	articles storage.ArticleStore
	scorer   *deal.Scorer
	sitemap  *sitemap.Builder
	logger   zerolog.Logger
	engine   *gin.Engine
}

// Stores bundles the persistence interfaces the API consumes.
type Stores struct {
	Products storage.ProductStore
	History  storage.PriceHistoryStore
	Alerts   storage.AlertStore
	Wishlist storage.WishlistStore
	Articles storage.ArticleStore
}

// New wires the router.
func New(cfg config.ServerConfig, stores Stores, scorer *deal.Scorer, sitemapBuilder *sitemap.Builder, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		products: stores.Products,
		history:  stores.History,
		alerts:   stores.Alerts,
		wishlist: stores.Wishlist,
		articles: stores.Articles,
		scorer:   scorer,
		sitemap:  sitemapBuilder,
		logger:   logger.With().Str("component", "httpapi").Logger(),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/sitemap.xml", s.handleSitemap)

	api := engine.Group("/api/v1")
	{
		api.GET("/products", s.handleListProducts)
		api.GET("/products/:slug", s.handleGetProduct)
		api.GET("/products/:slug/history", s.handleGetHistory)
		api.GET("/products/:slug/analysis", s.handleGetAnalysis)

		authed := api.Group("", s.authRequired())
		{
			authed.GET("/wishlist", s.handleListWishlist)
			authed.POST("/wishlist", s.handleAddWishlist)
			authed.DELETE("/wishlist/:productID", s.handleRemoveWishlist)

			authed.GET("/alerts/:productID", s.handleGetAlert)
			authed.PUT("/alerts/:productID", s.handleUpsertAlert)
			authed.DELETE("/alerts/:productID", s.handleDeleteAlert)
		}

		admin := api.Group("/admin", s.authRequired(), s.adminRequired())
		{
			admin.POST("/products", s.handleAdminUpsertProduct)
			admin.PUT("/products/:id", s.handleAdminUpsertProduct)
			admin.DELETE("/products/:id", s.handleAdminArchiveProduct)
			admin.POST("/articles", s.handleAdminUpsertArticle)
		}
	}

	engine.NoRoute(s.handleFallback)

	s.engine = engine
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Error().
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Msg("request failed")
		}
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
