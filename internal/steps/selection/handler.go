// internal/steps/selection/handler.go
package selection

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SaiffMoh/FastTravelGraph/internal/common/config"
	stderrors "github.com/SaiffMoh/FastTravelGraph/internal/common/errors"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/logger"
	"github.com/SaiffMoh/FastTravelGraph/internal/models"
	"github.com/SaiffMoh/FastTravelGraph/internal/store"
)

const StepName = "selection"

var integerPattern = regexp.MustCompile(`\b(\d+)\b`)

// Handler resolves a free-text numeric choice against the most recently
// displayed offers and derives the hotel handoff from the chosen one. All
// three failure cases are distinct; none mutates the selection fields.
type Handler struct {
	cfg    config.HotelsConfig
	cache  store.OfferCache
	logger logger.Logger
}

func NewHandler(cfg config.HotelsConfig, cache store.OfferCache, log logger.Logger) *Handler {
	return &Handler{
		cfg:    cfg,
		cache:  cache,
		logger: log.With(map[string]interface{}{"step": StepName}),
	}
}

func (h *Handler) Execute(ctx context.Context, state *models.ConversationState) error {
	state.Visit(StepName)

	offers := state.Search.FormattedOffers
	if len(offers) == 0 {
		cached, err := h.cache.Get(ctx, state.ThreadID)
		if err != nil {
			h.logger.Warn("offer cache read failed", map[string]interface{}{
				"threadId": state.ThreadID,
				"error":    err.Error(),
			})
		}
		offers = cached
	}
	if len(offers) == 0 {
		return stderrors.NewSelectionNoOffersError(state.ThreadID)
	}

	selectedID, ok := ParseSelection(state.CurrentMessage)
	if !ok || selectedID < 1 || selectedID > len(offers) {
		return stderrors.NewSelectionUnparsableError(state.CurrentMessage, selectionPrompt(offers))
	}

	var selected *models.Offer
	for i := range offers {
		if offers[i].ID == selectedID {
			selected = &offers[i]
			break
		}
	}
	if selected == nil {
		return stderrors.NewSelectionNotFoundError(selectedID)
	}

	state.Selection.SelectedOfferID = selectedID
	state.Selection.SelectedOffer = selected
	state.Selection.Handoff = h.deriveHandoff(state, selected)
	state.Phase = models.PhaseHandoff

	h.logger.Info("offer selected", map[string]interface{}{
		"threadId": state.ThreadID,
		"offerId":  selectedID,
		"cityCode": state.Selection.Handoff.CityCode,
	})

	return nil
}

// ParseSelection extracts the first standalone integer from free text.
func ParseSelection(text string) (int, bool) {
	m := integerPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

func selectionPrompt(offers []models.Offer) string {
	lines := make([]string, 0, len(offers))
	for _, offer := range offers {
		lines = append(lines, fmt.Sprintf("%d: %s→%s | %s %s",
			offer.ID,
			offer.Outbound.DepartureAirport,
			offer.Outbound.ArrivalAirport,
			offer.Currency,
			offer.Price,
		))
	}
	return "Please enter the flight offer ID you prefer (e.g., 1 or 2).\nAvailable offers:\n" + strings.Join(lines, "\n")
}

// deriveHandoff maps the chosen offer onto the hotel domain. Check-in comes
// from the outbound arrival, check-out from the return departure, falling
// back to departure+duration, then check-in+1 day.
func (h *Handler) deriveHandoff(state *models.ConversationState, offer *models.Offer) *models.HotelHandoff {
	handoff := &models.HotelHandoff{
		ThreadID:       state.ThreadID,
		SelectedFlight: offer.ID,
		Currency:       h.cfg.Currency,
		RoomQuantity:   h.cfg.RoomQuantity,
		Adults:         h.cfg.Adults,
	}

	handoff.CityCode = offer.ArrivalCityCode
	if handoff.CityCode == "" {
		handoff.CityCode = offer.Outbound.ArrivalAirport
	}

	if date := dateOf(offer.OutboundArrivalAt); date != "" {
		handoff.CheckInDate = date
	} else if state.Fields.DepartureDate != "" {
		handoff.CheckInDate = state.Fields.DepartureDate
	}

	if date := dateOf(offer.ReturnDepartureAt); date != "" {
		handoff.CheckOutDate = date
	} else if state.Fields.DepartureDate != "" && state.Fields.Duration > 0 {
		if dep, err := time.Parse("2006-01-02", state.Fields.DepartureDate); err == nil {
			handoff.CheckOutDate = dep.AddDate(0, 0, state.Fields.Duration).Format("2006-01-02")
		}
	}
	if handoff.CheckOutDate == "" && handoff.CheckInDate != "" {
		if checkin, err := time.Parse("2006-01-02", handoff.CheckInDate); err == nil {
			handoff.CheckOutDate = checkin.AddDate(0, 0, 1).Format("2006-01-02")
		} else {
			handoff.CheckOutDate = handoff.CheckInDate
		}
	}

	return handoff
}

// dateOf extracts the calendar date from an ISO timestamp.
func dateOf(iso string) string {
	if iso == "" {
		return ""
	}
	iso = strings.Replace(iso, "Z", "+00:00", 1)
	for _, layout := range []string{"2006-01-02T15:04:05-07:00", "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if ts, err := time.Parse(layout, iso); err == nil {
			return ts.Format("2006-01-02")
		}
	}
	return ""
}
