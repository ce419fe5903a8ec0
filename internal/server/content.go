package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/alnah/go-folio/internal/assets"
	"github.com/alnah/go-folio/internal/content"
	"github.com/alnah/go-folio/internal/pipeline"
)

const msgQueryRequired = "Search query is required"

// HighlightStyle is the style name served from the chroma stylesheet
// rather than the asset loader.
const HighlightStyle = "highlight"

func (s *Server) registerContentRoutes(api *echo.Group) {
	for _, kind := range content.Kinds {
		g := api.Group("/" + string(kind))
		g.GET("", s.handleList(kind))
		g.GET("/featured", s.handleFeatured(kind))
		g.GET("/search", s.handleKindSearch(kind))
		g.GET("/tag/:tag", s.handleByTag(kind))
		g.GET("/category/:category", s.handleByCategory(kind))
		g.GET("/:slug", s.handleGet(kind))
	}
	api.GET("/search", s.handleSearch)
	api.POST("/refresh", s.handleRefresh)
}

// repository returns the repository for kind, or an error describing the
// content directory that could not be found.
func (s *Server) repository(kind content.Kind) (*content.Repository, error) {
	if rerr, ok := s.unavailable[kind]; ok {
		return nil, &APIError{
			Code: http.StatusInternalServerError,
			Body: ErrorResponse{
				Message:   "Content directory not found",
				Attempted: rerr.Attempted,
			},
			Err: rerr,
		}
	}
	repo, err := s.library.Repository(kind)
	if err != nil {
		return nil, &APIError{Code: http.StatusNotFound, Body: ErrorResponse{Message: kind.Title() + " not found"}, Err: err}
	}
	return repo, nil
}

// ListQuery holds the optional filters of GET /api/K.
type ListQuery struct {
	Featured bool
	Query    string
	Tag      string
	Category string
	Newest   bool
}

func parseListQuery(c echo.Context) ListQuery {
	return ListQuery{
		Featured: strings.EqualFold(c.QueryParam("featured"), "true"),
		Query:    strings.TrimSpace(c.QueryParam("q")),
		Tag:      strings.TrimSpace(c.QueryParam("tag")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		Newest:   strings.EqualFold(c.QueryParam("sort"), "newest"),
	}
}

// Apply filters repo's published documents. Filters combine with AND.
func (q ListQuery) Apply(repo *content.Repository) []content.Document {
	docs := repo.All()
	if q.Newest {
		docs = repo.Newest()
	}
	out := docs[:0]
	for _, d := range docs {
		switch {
		case q.Featured && !d.Featured:
		case q.Query != "" && !d.Matches(q.Query):
		case q.Tag != "" && !d.HasTag(q.Tag):
		case q.Category != "" && !strings.EqualFold(d.Category, q.Category):
		default:
			out = append(out, d)
		}
	}
	return out
}

func (s *Server) handleList(kind content.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		repo, err := s.repository(kind)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, parseListQuery(c).Apply(repo))
	}
}

func (s *Server) handleFeatured(kind content.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		repo, err := s.repository(kind)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, repo.Featured())
	}
}

func (s *Server) handleKindSearch(kind content.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := strings.TrimSpace(c.QueryParam("q"))
		if q == "" {
			return newAPIError(http.StatusBadRequest, msgQueryRequired)
		}
		repo, err := s.repository(kind)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, repo.Search(q))
	}
}

func (s *Server) handleByTag(kind content.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		repo, err := s.repository(kind)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, repo.ByTag(c.Param("tag")))
	}
}

func (s *Server) handleByCategory(kind content.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		repo, err := s.repository(kind)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, repo.ByCategory(c.Param("category")))
	}
}

func (s *Server) handleGet(kind content.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		repo, err := s.repository(kind)
		if err != nil {
			return err
		}
		doc, err := repo.Get(c.Param("slug"))
		if errors.Is(err, content.ErrNotFound) {
			return &APIError{Code: http.StatusNotFound, Body: ErrorResponse{Message: kind.Title() + " not found"}, Err: err}
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, doc)
	}
}

func (s *Server) handleSearch(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return newAPIError(http.StatusBadRequest, msgQueryRequired)
	}
	return c.JSON(http.StatusOK, s.library.Search(q))
}

// RefreshResponse is the body of POST /api/refresh.
type RefreshResponse struct {
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Counts    map[string]int `json:"counts"`
}

func (s *Server) handleRefresh(c echo.Context) error {
	counts, err := s.library.RefreshAll(c.Request().Context())
	if err != nil {
		return &APIError{Code: http.StatusInternalServerError, Body: ErrorResponse{Message: "Failed to refresh content"}, Err: err}
	}
	out := make(map[string]int, len(counts))
	for k, n := range counts {
		out[string(k)] = n
	}
	s.logger.Info("content refreshed", "counts", out)
	return c.JSON(http.StatusOK, RefreshResponse{
		Message:   "Content refreshed successfully",
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Counts:    out,
	})
}

func (s *Server) handleStyle(c echo.Context) error {
	name := c.Param("name")
	name = strings.TrimSuffix(name, ".css")

	var css string
	var err error
	if name == HighlightStyle {
		css, err = pipeline.HighlightCSS()
	} else {
		css, err = s.assets.LoadStyle(name)
	}
	switch {
	case errors.Is(err, assets.ErrStyleNotFound), errors.Is(err, assets.ErrInvalidAssetName):
		return &APIError{Code: http.StatusNotFound, Body: ErrorResponse{Message: "Style not found"}, Err: err}
	case err != nil:
		return err
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", []byte(css))
}
