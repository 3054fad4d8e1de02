// internal/steps/validate/handler.go
package validate

import (
	"context"
	"time"

	stderrors "github.com/SaiffMoh/FastTravelGraph/internal/common/errors"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/logger"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/metrics"
	"github.com/SaiffMoh/FastTravelGraph/internal/llm"
	"github.com/SaiffMoh/FastTravelGraph/internal/models"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/extract"
)

const StepName = "validate"

// Handler enforces format and business rules on extracted fields and derives
// the normalized values the request builder consumes. A stale or unparsable
// departure date is cleared and re-asked, never silently accepted.
type Handler struct {
	llm    llm.Client
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(client llm.Client, log logger.Logger) *Handler {
	return &Handler{
		llm:    client,
		logger: log.With(map[string]interface{}{"step": StepName}),
		now:    time.Now,
	}
}

func (h *Handler) Execute(ctx context.Context, state *models.ConversationState) {
	state.Visit(StepName)

	if state.Fields.DepartureDate != "" {
		parsed, err := time.Parse("2006-01-02", state.Fields.DepartureDate)
		if err != nil || parsed.Before(h.today()) {
			stale := stderrors.NewStaleDepartureDateError(state.Fields.DepartureDate)
			metrics.StepFailures.WithLabelValues(StepName, string(stale.Code)).Inc()
			h.logger.Info("clearing stale or unparsable departure date", map[string]interface{}{
				"threadId":      state.ThreadID,
				"departureDate": state.Fields.DepartureDate,
				"errorCode":     string(stale.Code),
			})
			state.Fields.DepartureDate = ""
			state.Normalized.DepartureDate = ""
			state.Control.FollowupQuestion = stale.UserMessage
		}
	}

	missing := state.MissingFields()
	if len(missing) > 0 {
		state.Control.InfoComplete = false
		state.Control.NeedsFollowup = true
		if state.Control.FollowupQuestion == "" {
			state.Control.FollowupQuestion = extract.FollowupFor(missing[0])
		}
		return
	}

	state.Normalized.OriginCode = h.resolveLocation(ctx, state.Fields.Origin)
	state.Normalized.DestinationCode = h.resolveLocation(ctx, state.Fields.Destination)
	state.Normalized.DepartureDate = state.Fields.DepartureDate
	state.Normalized.Cabin = NormalizeCabin(state.Fields.CabinClass)

	state.Control.InfoComplete = true
	state.Control.NeedsFollowup = false
	state.Control.FollowupQuestion = ""
}

func (h *Handler) today() time.Time {
	now := h.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
