package httpapi

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleSitemap(c *gin.Context) {
	articles, err := s.articles.ListPublishedArticles(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list articles failed")
		respondError(c, http.StatusInternalServerError, "failed to build sitemap")
		return
	}

	body, err := s.sitemap.Build(articles)
	if err != nil {
		s.logger.Error().Err(err).Msg("build sitemap failed")
		respondError(c, http.StatusInternalServerError, "failed to build sitemap")
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// handleFallback is the static/SPA rewrite: article routes serve their
// pre-rendered HTML file when one exists, everything else falls through
// to the single-page application shell.
func (s *Server) handleFallback(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		respondError(c, http.StatusNotFound, "not found")
		return
	}
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/api/") {
		respondError(c, http.StatusNotFound, "not found")
		return
	}

	if slug, ok := strings.CutPrefix(path, "/articles/"); ok && slug != "" {
		if file, found := s.articleFile(c, slug); found {
			c.File(file)
			return
		}
	}

	s.serveSPA(c)
}

func (s *Server) articleFile(c *gin.Context, slug string) (string, bool) {
	article, err := s.articles.GetArticleBySlug(c.Request.Context(), slug)
	if err != nil || !article.Published {
		return "", false
	}

	file := filepath.Join(s.cfg.StaticDir, filepath.Clean("/"+article.HTMLPath))
	if info, statErr := os.Stat(file); statErr != nil || info.IsDir() {
		return "", false
	}
	return file, true
}

func (s *Server) serveSPA(c *gin.Context) {
	if s.cfg.SPAIndex != "" {
		if _, err := os.Stat(s.cfg.SPAIndex); err == nil {
			c.File(s.cfg.SPAIndex)
			return
		}
	}
	respondError(c, http.StatusNotFound, "not found")
}
