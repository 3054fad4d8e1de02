// internal/steps/hotels/handler.go
package hotels

import (
	"context"
	"time"

	"github.com/SaiffMoh/FastTravelGraph/internal/common/config"
	stderrors "github.com/SaiffMoh/FastTravelGraph/internal/common/errors"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/logger"
	"github.com/SaiffMoh/FastTravelGraph/internal/models"
	"github.com/SaiffMoh/FastTravelGraph/internal/providers/amadeus"
)

const StepName = "hotel_search"

// HotelProvider covers the two lodging lookups the pipeline performs.
type HotelProvider interface {
	Token(ctx context.Context) (string, error)
	HotelIDsByCity(ctx context.Context, token, cityCode string, limit int) ([]string, error)
	HotelOffers(ctx context.Context, token string, hotelIDs []string, checkIn, checkOut, currency string) ([]amadeus.HotelOfferSet, error)
}

// Handler runs the city-to-hotels lookup and offer retrieval for a derived
// handoff. Failures surface as user-facing apologies with an empty list;
// nothing raises past the step boundary.
type Handler struct {
	cfg      config.HotelsConfig
	timeout  time.Duration
	provider HotelProvider
	logger   logger.Logger
}

func NewHandler(cfg config.HotelsConfig, timeout time.Duration, provider HotelProvider, log logger.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		timeout:  timeout,
		provider: provider,
		logger:   log.With(map[string]interface{}{"step": StepName}),
	}
}

func (h *Handler) Execute(ctx context.Context, state *models.ConversationState) error {
	state.Visit(StepName)
	state.Hotels = nil

	// Both lodging lookups share one deadline for the step.
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	handoff := state.Selection.Handoff
	if handoff == nil || !handoff.Complete() {
		return stderrors.NewHandoffIncompleteError(missingOf(handoff))
	}

	token := state.Search.AccessToken
	if token == "" {
		fresh, err := h.provider.Token(ctx)
		if err != nil {
			return stderrors.NewHotelLookupFailedError(handoff.CityCode, err)
		}
		token = fresh
	}

	ids, err := h.provider.HotelIDsByCity(ctx, token, handoff.CityCode, h.cfg.MaxHotelIDs)
	if err != nil {
		return stderrors.NewHotelLookupFailedError(handoff.CityCode, err)
	}
	if len(ids) == 0 {
		return stderrors.NewHotelLookupFailedError(handoff.CityCode, errNoHotels)
	}

	offerSets, err := h.provider.HotelOffers(ctx, token, ids, handoff.CheckInDate, handoff.CheckOutDate, handoff.Currency)
	if err != nil {
		return stderrors.NewHotelOffersFailedError(err)
	}

	hotels := make([]models.HotelOffer, 0, len(offerSets))
	for _, set := range offerSets {
		if len(set.Offers) == 0 {
			continue
		}
		best := set.Offers[0]
		hotels = append(hotels, models.HotelOffer{
			HotelID:      set.Hotel.HotelID,
			Name:         set.Hotel.Name,
			CheckInDate:  best.CheckInDate,
			CheckOutDate: best.CheckOutDate,
			Price:        best.Price.Total,
			Currency:     best.Price.Currency,
		})
	}

	state.Hotels = hotels
	state.Phase = models.PhaseDone

	h.logger.Info("hotel offers retrieved", map[string]interface{}{
		"threadId": state.ThreadID,
		"cityCode": handoff.CityCode,
		"hotels":   len(hotels),
	})

	return nil
}

func missingOf(handoff *models.HotelHandoff) string {
	if handoff == nil {
		return "handoff"
	}
	switch {
	case handoff.CityCode == "":
		return "city_code"
	case handoff.CheckInDate == "":
		return "checkin_date"
	default:
		return "checkout_date"
	}
}
