// Package fetch retrieves record pages from the stats site. All requests
// share one rate limiter; the site throttles aggressive crawlers, so the
// pool-wide request rate stays configurable and conservative.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/rkdansdlf/kbo-data/internal/config"
	"github.com/rkdansdlf/kbo-data/internal/pipeline"
	"github.com/rkdansdlf/kbo-data/internal/store"
)

// Detail-page paths per record type. The player ID and series selector
// ride in the query string.
const (
	battingPath  = "/Record/Player/HitterDetail/Total.aspx"
	pitchingPath = "/Record/Player/PitcherDetail/Total.aspx"
	fieldingPath = "/Record/Player/Defense/Basic.aspx"
	profilePath  = "/Record/Player/HitterDetail/Basic.aspx"
)

// Client fetches pages with retry and pool-wide rate limiting. It
// implements pipeline.Fetcher.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Client from config.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.FetchBaseURL).
		SetTimeout(cfg.FetchTimeout).
		SetHeader("User-Agent", cfg.FetchUserAgent).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)

	return &Client{
		http:    client,
		limiter: rate.NewLimiter(rate.Limit(cfg.FetchRatePerSec), 1),
		logger:  logger,
	}
}

func pathFor(recordType string) (string, error) {
	switch recordType {
	case store.TypeBatting:
		return battingPath, nil
	case store.TypePitching:
		return pitchingPath, nil
	case store.TypeFielding:
		return fieldingPath, nil
	case store.TypeProfile:
		return profilePath, nil
	}
	return "", fmt.Errorf("unknown record type %q", recordType)
}

// RecordPage fetches the detail page for one unit of work. A 404 returns
// (nil, nil): the site has no page for this unit, which the pipeline
// records as no-data rather than a failure.
func (c *Client) RecordPage(ctx context.Context, playerID int, series, recordType string) (*pipeline.PageSource, error) {
	path, err := pathFor(recordType)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("playerId", fmt.Sprintf("%d", playerID))
	if s, ok := config.SeriesRegistry[series]; ok {
		req.SetQueryParam("seriesId", s.Value)
	}

	res, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s for player %d: %w", recordType, playerID, err)
	}
	switch {
	case res.StatusCode() == http.StatusNotFound:
		c.logger.Debug("page not found", "player_id", playerID, "record_type", recordType)
		return nil, nil
	case res.StatusCode() != http.StatusOK:
		return nil, fmt.Errorf("fetch %s for player %d: status %d", recordType, playerID, res.StatusCode())
	}

	return &pipeline.PageSource{
		PlayerID:   playerID,
		Series:     series,
		RecordType: recordType,
		HTML:       string(res.Body()),
		FetchedAt:  time.Now(),
	}, nil
}
