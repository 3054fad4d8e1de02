// internal/steps/buildrequest/builder.go
package buildrequest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SaiffMoh/FastTravelGraph/internal/common/config"
	"github.com/SaiffMoh/FastTravelGraph/internal/models"
	"github.com/SaiffMoh/FastTravelGraph/internal/providers/amadeus"
)

const StepName = "build_request"

// Builder assembles provider search bodies from normalized fields. Pure
// construction, no I/O. Trip type is always round trip, so every body
// carries an outbound and a return origin-destination.
type Builder struct {
	cfg config.SearchConfig
}

func NewBuilder(cfg config.SearchConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Build produces one flight-offers body for the given departure date. The
// return leg departs duration days later.
func (b *Builder) Build(originCode, destinationCode, departureDate, cabin string, duration int) (*amadeus.FlightOffersRequest, error) {
	depDate, err := time.Parse("2006-01-02", departureDate)
	if err != nil {
		return nil, fmt.Errorf("invalid departure date %q: %w", departureDate, err)
	}
	returnDate := depDate.AddDate(0, 0, duration).Format("2006-01-02")

	originDestinations := []amadeus.OriginDestination{
		{
			ID:                      "1",
			OriginLocationCode:      originCode,
			DestinationLocationCode: destinationCode,
			DepartureDateTimeRange: amadeus.DateTimeRange{
				Date: departureDate,
				Time: b.cfg.DepartureTime,
			},
		},
		{
			ID:                      "2",
			OriginLocationCode:      destinationCode,
			DestinationLocationCode: originCode,
			DepartureDateTimeRange: amadeus.DateTimeRange{
				Date: returnDate,
				Time: b.cfg.DepartureTime,
			},
		},
	}

	odIDs := make([]string, len(originDestinations))
	for i, od := range originDestinations {
		odIDs[i] = od.ID
	}

	return &amadeus.FlightOffersRequest{
		CurrencyCode:       b.cfg.Currency,
		OriginDestinations: originDestinations,
		Travelers: []amadeus.Traveler{
			{ID: "1", TravelerType: "ADULT"},
		},
		Sources: []string{"GDS"},
		SearchCriteria: amadeus.SearchCriteria{
			MaxFlightOffers: b.cfg.MaxOffersPerDay,
			FlightFilters: amadeus.FlightFilters{
				CabinRestrictions: []amadeus.CabinRestriction{
					{
						Cabin:                cabin,
						Coverage:             "MOST_SEGMENTS",
						OriginDestinationIDs: odIDs,
					},
				},
			},
		},
	}, nil
}

// Execute records the base request body on the state for diagnostics. The
// search step rebuilds per-day bodies with shifted dates.
func (b *Builder) Execute(_ context.Context, state *models.ConversationState) error {
	state.Visit(StepName)

	body, err := b.Build(
		state.Normalized.OriginCode,
		state.Normalized.DestinationCode,
		state.Normalized.DepartureDate,
		state.Normalized.Cabin,
		state.Fields.Duration,
	)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	state.Search.RequestBody = raw
	return nil
}
