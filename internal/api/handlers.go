package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/UnknownOlympus/locus/internal/models"
	"github.com/UnknownOlympus/locus/internal/resolver"
	"github.com/gin-gonic/gin"
)

type resolveFunc func(res *resolver.Resolver, ctx context.Context, raw string) (*models.ResolutionResult, error)

// resolve classifies ?q= and answers with the best location available.
func (s *Server) resolve(c *gin.Context) {
	source := c.DefaultQuery("source", resolver.SourceDefault)
	s.serveFrom(c, source, c.Query("q"), (*resolver.Resolver).Resolve)
}

// resolvePostalCode is the strict CEP lookup used by checkout autofill.
func (s *Server) resolvePostalCode(c *gin.Context) {
	source := c.DefaultQuery("source", resolver.SourceCheckout)
	s.serveFrom(c, source, c.Param("cep"), (*resolver.Resolver).ResolvePostalCode)
}

// search lists free-text candidates for map search.
func (s *Server) search(c *gin.Context) {
	source := c.DefaultQuery("source", resolver.SourceMapSearch)
	s.serveFrom(c, source, c.Query("q"), (*resolver.Resolver).Search)
}

func (s *Server) serveFrom(c *gin.Context, source, raw string, call resolveFunc) {
	res, err := s.registry.Get(source)
	if err != nil {
		s.writeError(c, err)
		return
	}

	result, err := call(res, c.Request.Context(), raw)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(c.Request.Context(), "Request failed", "path", c.FullPath(), "error", err)
	}

	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

// statusFor maps the resolution error taxonomy onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrEmptyQuery):
		return http.StatusBadRequest, "empty_query"
	case errors.Is(err, resolver.ErrUnknownSource):
		return http.StatusBadRequest, "unknown_source"
	case errors.Is(err, models.ErrInvalidPostalCodeFormat):
		return http.StatusUnprocessableEntity, "invalid_postal_code"
	case errors.Is(err, models.ErrPostalCodeNotFound):
		return http.StatusNotFound, "postal_code_not_found"
	case errors.Is(err, models.ErrNoResults):
		return http.StatusNotFound, "no_results"
	case errors.Is(err, models.ErrAlreadyResolving):
		return http.StatusConflict, "already_resolving"
	case errors.Is(err, models.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, "provider_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
