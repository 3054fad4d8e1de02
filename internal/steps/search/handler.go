// internal/steps/search/handler.go
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SaiffMoh/FastTravelGraph/internal/common/config"
	stderrors "github.com/SaiffMoh/FastTravelGraph/internal/common/errors"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/logger"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/metrics"
	"github.com/SaiffMoh/FastTravelGraph/internal/models"
	"github.com/SaiffMoh/FastTravelGraph/internal/providers/amadeus"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/buildrequest"
)

const StepName = "search_flights"

// FlightSearcher is the provider call the fan-out depends on.
type FlightSearcher interface {
	SearchFlightOffers(ctx context.Context, token string, body *amadeus.FlightOffersRequest) (*amadeus.FlightOffersResponse, error)
}

// Result carries the merged window results to the formatter.
type Result struct {
	Offers    []amadeus.FlightOffer
	Locations map[string]amadeus.Location
}

// Handler fans one search out across the date window, one worker per day.
// A failed day contributes zero offers; only a fully empty window is
// reported as "no flights".
type Handler struct {
	cfg      config.SearchConfig
	timeout  time.Duration
	provider FlightSearcher
	builder  *buildrequest.Builder
	logger   logger.Logger
}

func NewHandler(cfg config.SearchConfig, perDayTimeout time.Duration, provider FlightSearcher, builder *buildrequest.Builder, log logger.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		timeout:  perDayTimeout,
		provider: provider,
		builder:  builder,
		logger:   log.With(map[string]interface{}{"step": StepName}),
	}
}

func (h *Handler) Execute(ctx context.Context, state *models.ConversationState) (*Result, error) {
	state.Visit(StepName)

	startDate, err := time.Parse("2006-01-02", state.Normalized.DepartureDate)
	if err != nil {
		return nil, fmt.Errorf("invalid departure date %q: %w", state.Normalized.DepartureDate, err)
	}

	window := h.cfg.WindowDays
	if window < 1 {
		window = 1
	}

	type daySlot struct {
		offers    []amadeus.FlightOffer
		locations map[string]amadeus.Location
	}
	slots := make([]daySlot, window)

	var wg sync.WaitGroup
	for offset := 0; offset < window; offset++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			day := startDate.AddDate(0, 0, offset).Format("2006-01-02")
			offers, locations := h.searchDay(ctx, state, day)
			slots[offset] = daySlot{offers: offers, locations: locations}
		}(offset)
	}
	wg.Wait()

	merged := &Result{Locations: make(map[string]amadeus.Location)}
	for _, slot := range slots {
		merged.Offers = append(merged.Offers, slot.offers...)
		for code, loc := range slot.locations {
			merged.Locations[code] = loc
		}
	}

	h.logger.Info("window search complete", map[string]interface{}{
		"threadId": state.ThreadID,
		"window":   window,
		"offers":   len(merged.Offers),
	})

	return merged, nil
}

// searchDay runs one day query under its own deadline. Failures degrade to
// zero offers so the rest of the window still counts.
func (h *Handler) searchDay(ctx context.Context, state *models.ConversationState, day string) ([]amadeus.FlightOffer, map[string]amadeus.Location) {
	body, err := h.builder.Build(
		state.Normalized.OriginCode,
		state.Normalized.DestinationCode,
		day,
		state.Normalized.Cabin,
		state.Fields.Duration,
	)
	if err != nil {
		metrics.DayQueriesFailed.Inc()
		h.logger.Warn("day query skipped", map[string]interface{}{"day": day, "error": err.Error()})
		return nil, nil
	}

	dayCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	resp, err := h.provider.SearchFlightOffers(dayCtx, state.Search.AccessToken, body)
	if err != nil {
		metrics.DayQueriesFailed.Inc()
		code := stderrors.ErrCodeFlightSearchFailed
		if errors.Is(err, context.DeadlineExceeded) {
			code = stderrors.ErrCodeFlightSearchTimeout
		}
		h.logger.Warn("day query failed", map[string]interface{}{"day": day, "errorCode": string(code), "error": err.Error()})
		return nil, nil
	}

	offers := resp.Data
	if h.cfg.MaxOffersPerDay > 0 && len(offers) > h.cfg.MaxOffersPerDay {
		offers = offers[:h.cfg.MaxOffersPerDay]
	}
	for i := range offers {
		offers[i].SearchDate = day
	}

	return offers, resp.Dictionaries.Locations
}
