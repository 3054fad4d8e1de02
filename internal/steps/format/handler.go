// internal/steps/format/handler.go
package format

import (
	"context"
	"math"
	"sort"
	"strconv"

	stderrors "github.com/SaiffMoh/FastTravelGraph/internal/common/errors"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/logger"
	"github.com/SaiffMoh/FastTravelGraph/internal/models"
	"github.com/SaiffMoh/FastTravelGraph/internal/providers/amadeus"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/search"
	"github.com/SaiffMoh/FastTravelGraph/internal/store"
)

const StepName = "display_results"

// Handler converts raw provider offers into the canonical display shape,
// ranks them by price, and caches the result for the next turn's selection.
type Handler struct {
	cache  store.OfferCache
	logger logger.Logger
}

func NewHandler(cache store.OfferCache, log logger.Logger) *Handler {
	return &Handler{
		cache:  cache,
		logger: log.With(map[string]interface{}{"step": StepName}),
	}
}

func (h *Handler) Execute(ctx context.Context, state *models.ConversationState, result *search.Result) error {
	state.Visit(StepName)

	if result == nil || len(result.Offers) == 0 {
		return stderrors.NewNoFlightsFoundError(state.Normalized.OriginCode, state.Normalized.DestinationCode)
	}

	formatted := make([]models.Offer, 0, len(result.Offers))
	for _, raw := range result.Offers {
		if len(raw.Itineraries) == 0 {
			continue
		}
		formatted = append(formatted, buildOffer(raw, result.Locations))
	}

	if len(formatted) == 0 {
		return stderrors.NewNoFlightsFoundError(state.Normalized.OriginCode, state.Normalized.DestinationCode)
	}

	// Stable so equally priced offers keep their arrival order.
	sort.SliceStable(formatted, func(i, j int) bool {
		return formatted[i].PriceValue < formatted[j].PriceValue
	})
	for i := range formatted {
		formatted[i].ID = i + 1
	}

	state.Search.FormattedOffers = formatted

	if err := h.cache.Set(ctx, state.ThreadID, formatted); err != nil {
		h.logger.Warn("failed to cache offers", map[string]interface{}{
			"threadId": state.ThreadID,
			"error":    err.Error(),
		})
	}

	return nil
}

func buildOffer(raw amadeus.FlightOffer, locations map[string]amadeus.Location) models.Offer {
	offer := models.Offer{
		Price:      raw.Price.Total,
		PriceValue: parsePrice(raw.Price.Total),
		Currency:   raw.Price.Currency,
		SearchDate: raw.SearchDate,
		Outbound:   buildLeg(raw.Itineraries[0]),
	}

	outSegments := raw.Itineraries[0].Segments
	if len(outSegments) > 0 {
		last := outSegments[len(outSegments)-1]
		offer.OutboundArrivalAt = last.Arrival.At
		offer.ArrivalCityCode = resolveCity(last.Arrival.IataCode, locations)
	}

	if len(raw.Itineraries) > 1 {
		leg := buildLeg(raw.Itineraries[1])
		offer.ReturnLeg = &leg
		if segments := raw.Itineraries[1].Segments; len(segments) > 0 {
			offer.ReturnDepartureAt = segments[0].Departure.At
		}
	}

	return offer
}

func buildLeg(itinerary amadeus.Itinerary) models.FlightLeg {
	segments := itinerary.Segments
	if len(segments) == 0 {
		return models.FlightLeg{}
	}

	var layovers []string
	for i := 0; i < len(segments)-1; i++ {
		layovers = append(layovers,
			segments[i].Arrival.IataCode+" "+formatClock(segments[i].Arrival.At)+" → "+formatClock(segments[i+1].Departure.At))
	}

	first := segments[0]
	last := segments[len(segments)-1]

	return models.FlightLeg{
		Airline:          first.CarrierCode,
		FlightNumber:     first.CarrierCode + first.Number,
		DepartureAirport: first.Departure.IataCode,
		ArrivalAirport:   last.Arrival.IataCode,
		DepartureTime:    formatClock(first.Departure.At),
		ArrivalTime:      formatClock(last.Arrival.At),
		Duration:         FormatDuration(itinerary.Duration),
		Stops:            len(segments) - 1,
		Layovers:         layovers,
	}
}

func resolveCity(airport string, locations map[string]amadeus.Location) string {
	if loc, ok := locations[airport]; ok && loc.CityCode != "" {
		return loc.CityCode
	}
	return airport
}

func parsePrice(total string) float64 {
	value, err := strconv.ParseFloat(total, 64)
	if err != nil {
		return math.Inf(1)
	}
	return value
}
