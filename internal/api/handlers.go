package api

import (
	"errors"
	"net/http"

	"asterbot/internal/config"
	"asterbot/internal/filters"
	"asterbot/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
)

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleHealth база обязательна, недоступный Redis только понижает статус.
func (s *HTTPServer) handleHealth(c *gin.Context) {
	ctx := c.Request.Context()
	resp := healthResponse{Status: statusOK, Checks: map[string]string{}}
	code := http.StatusOK

	if err := s.store.PingContext(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("database ping failed")
		resp.Status = "unavailable"
		resp.Checks["database"] = err.Error()
		code = http.StatusServiceUnavailable
	} else {
		resp.Checks["database"] = statusOK
	}

	switch {
	case s.redis == nil:
		resp.Checks["redis"] = "disabled"
	default:
		if err := s.redis(ctx); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("redis ping failed")
			resp.Checks["redis"] = err.Error()
			if code == http.StatusOK {
				resp.Status = statusDegraded
			}
		} else {
			resp.Checks["redis"] = statusOK
		}
	}

	c.JSON(code, resp)
}

type linkResponse struct {
	Filters  filters.Set         `json:"filters"`
	URL      string              `json:"url"`
	Rejected []filters.Rejection `json:"rejected,omitempty"`
}

func (s *HTTPServer) handleFiltersLink(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		abortError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	set, rejected, err := filters.Normalize(raw)
	if err != nil {
		if errors.Is(err, filters.ErrInvalidNumericValue) {
			abortError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	for _, r := range rejected {
		zerolog.Ctx(c.Request.Context()).Debug().Str("key", r.Key).Interface("value", r.Value).Str("reason", r.Reason).Msg("filter rejected")
	}

	c.JSON(http.StatusOK, linkResponse{
		Filters:  set,
		URL:      filters.BuildURL(s.cfg.Catalog.BaseURL, set),
		Rejected: rejected,
	})
}

func (s *HTTPServer) handleListAds(c *gin.Context) {
	ads, err := s.store.ListAds(c.Request.Context())
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to list ads")
		abortError(c, http.StatusInternalServerError, "failed to list ads")
		return
	}
	if ads == nil {
		ads = []*models.Ad{}
	}
	c.JSON(http.StatusOK, gin.H{"ads": ads})
}

func (s *HTTPServer) handleStats(c *gin.Context) {
	ctx := c.Request.Context()
	now := s.now()

	var (
		stats any
		err   error
	)
	if s.kind == config.KindSales {
		stats, err = s.store.GetSalesStats(ctx, now.AddDate(0, 0, -models.ActiveUsersDays))
	} else {
		stats, err = s.store.GetSelectionStats(ctx, now)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to get statistics")
		abortError(c, http.StatusInternalServerError, "failed to get statistics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": s.kind, "stats": stats})
}
