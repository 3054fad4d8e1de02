// internal/steps/summarize/handler.go
package summarize

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SaiffMoh/FastTravelGraph/internal/common/logger"
	"github.com/SaiffMoh/FastTravelGraph/internal/llm"
	"github.com/SaiffMoh/FastTravelGraph/internal/models"
)

const StepName = "summarize"

const (
	defaultSummary  = "Here are your flight options:"
	fallbackSummary = "Great! I found your flight options. Here are the details:"
)

// Handler asks the model for a short recommendation over the top offers.
// Any model problem degrades to a canned line; a summary never fails a turn.
type Handler struct {
	llm    llm.Client
	logger logger.Logger
}

func NewHandler(client llm.Client, log logger.Logger) *Handler {
	return &Handler{
		llm:    client,
		logger: log.With(map[string]interface{}{"step": StepName}),
	}
}

func (h *Handler) Execute(ctx context.Context, state *models.ConversationState) {
	state.Visit(StepName)

	if len(state.Search.FormattedOffers) == 0 || h.llm == nil {
		state.Search.Summary = defaultSummary
		return
	}

	summary, err := h.llm.Complete(ctx, h.buildPrompt(state))
	if err != nil || summary == "" {
		if err != nil {
			h.logger.Warn("summary generation failed", map[string]interface{}{
				"threadId": state.ThreadID,
				"error":    err.Error(),
			})
		}
		state.Search.Summary = fallbackSummary
		return
	}

	state.Search.Summary = summary
}

func (h *Handler) buildPrompt(state *models.ConversationState) string {
	top := state.Search.FormattedOffers
	if len(top) > 3 {
		top = top[:3]
	}
	topJSON, _ := json.MarshalIndent(top, "", "  ")

	return fmt.Sprintf(`You are a helpful travel assistant.
Based on the flight search results, provide a concise, friendly summary and recommendation.
Keep it as brief as possible, plain text only, no markdown and no emojis.

Search Details:
- From: %s (%s)
- To: %s (%s)
- Date: %s
- Cabin: %s
- Duration: %d days

Found %d flight options across the search window.

Flight Results (sorted by price):
%s

Please provide:
1. A brief, enthusiastic summary of the search results
2. Your recommendation for the best option(s) considering price, timing, and convenience
3. Any helpful travel tips or considerations
4. Mention any concerns (long layovers, very early/late flights, etc.)

Keep it conversational and helpful. Start with something like "Great! I found several flight options for your trip..."`,
		state.Fields.Origin, state.Normalized.OriginCode,
		state.Fields.Destination, state.Normalized.DestinationCode,
		state.Fields.DepartureDate,
		state.Fields.CabinClass,
		state.Fields.Duration,
		len(state.Search.FormattedOffers),
		string(topJSON),
	)
}
