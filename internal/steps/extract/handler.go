// internal/steps/extract/handler.go
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	stderrors "github.com/SaiffMoh/FastTravelGraph/internal/common/errors"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/logger"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/metrics"
	"github.com/SaiffMoh/FastTravelGraph/internal/llm"
	"github.com/SaiffMoh/FastTravelGraph/internal/models"
)

const StepName = "extract"

// Handler turns raw conversation text into structured trip fields. The model
// is the primary path; the rule extractor takes over whenever the model is
// unavailable, times out, or returns output failing the schema.
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

// Execute updates state fields from the latest message. It never fails the
// turn: every model failure degrades to the rule extractor.
func (h *Handler) Execute(ctx context.Context, state *models.ConversationState) {
	state.Visit(StepName)

	result, err := h.modelExtract(ctx, state)
	if err != nil {
		stdErr := classifyModelFailure(err)
		h.logger.Warn("model extraction failed, using rule fallback", map[string]interface{}{
			"threadId":  state.ThreadID,
			"errorCode": string(stdErr.Code),
			"error":     stdErr.Details,
		})
		metrics.StepFailures.WithLabelValues(StepName, string(stdErr.Code)).Inc()
		metrics.ExtractorFallbacks.Inc()
		result = h.ruleExtract(state)
	}

	apply(state, result)
}

// classifyModelFailure maps a model error onto the standard taxonomy so the
// fallback reason shows up in logs and the step-failure counter.
func classifyModelFailure(err error) *stderrors.StandardError {
	if errors.Is(err, llm.ErrTimeout) {
		return stderrors.NewExtractionTimeoutError()
	}
	return stderrors.NewExtractionFailedError(err)
}

func (h *Handler) modelExtract(ctx context.Context, state *models.ConversationState) (*Result, error) {
	if h.llm == nil {
		return nil, llm.ErrUnavailable
	}

	raw, err := h.llm.Complete(ctx, h.buildPrompt(state))
	if err != nil {
		return nil, err
	}

	payload := []byte(llm.StripFences(raw))
	if err := llm.ValidateExtraction(payload); err != nil {
		return nil, err
	}

	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrBadResponse, err)
	}
	return &result, nil
}

func (h *Handler) buildPrompt(state *models.ConversationState) string {
	var conversation strings.Builder
	for _, m := range state.Conversation {
		conversation.WriteString(m.Role)
		conversation.WriteString(": ")
		conversation.WriteString(m.Content)
		conversation.WriteString("\n")
	}

	now := h.now()
	current := func(v string) string {
		if v == "" {
			return "Not provided"
		}
		return v
	}
	duration := "Not provided"
	if state.Fields.Duration > 0 {
		duration = fmt.Sprintf("%d", state.Fields.Duration)
	}

	return fmt.Sprintf(`You are an expert travel assistant helping users book flights. Today's date is %s.

CONVERSATION SO FAR:
%s
USER'S LATEST MESSAGE: %q

YOUR TASKS:
1. Extract/update flight information from the entire conversation
2. Intelligently parse dates and locations
3. Ask for ONE missing piece of information OR indicate completion

DATE PARSING RULES (CRITICAL):
- If the year is omitted: use %d, UNLESS the month is before %d, then use %d
- If month and year are omitted: use the current month/year, UNLESS the day is before %d, then next month
- If next month would be January, increment the year too
- Always output dates as YYYY-MM-DD

REQUIRED INFORMATION:
1. departure_date (YYYY-MM-DD format)
2. origin (city name)
3. destination (city name)
4. cabin_class (economy/business/first class)
5. duration (number of days for the round trip)

CURRENT STATE:
- departure_date: %s
- origin: %s
- destination: %s
- cabin_class: %s
- duration: %s
- trip_type: round trip (always round trip)

RESPONSE FORMAT (JSON only, no markdown):
{
  "departure_date": "YYYY-MM-DD or null",
  "origin": "City Name or null",
  "destination": "City Name or null",
  "cabin_class": "economy/business/first class or null",
  "duration": number_or_null,
  "followup_question": "Ask for ONE missing piece OR null if complete",
  "needs_followup": true_or_false,
  "info_complete": true_or_false
}

If the user provides multiple pieces of information at once, extract all of them. Ask natural, conversational questions.`,
		now.Format("2006-01-02"),
		conversation.String(),
		state.CurrentMessage,
		now.Year(), int(now.Month()), now.Year()+1, now.Day(),
		current(state.Fields.DepartureDate),
		current(state.Fields.Origin),
		current(state.Fields.Destination),
		current(state.Fields.CabinClass),
		duration,
	)
}

// apply merges a result into state. Absent fields never erase existing ones.
func apply(state *models.ConversationState, result *Result) {
	if result.DepartureDate != nil && *result.DepartureDate != "" {
		state.Fields.DepartureDate = *result.DepartureDate
	}
	if result.Origin != nil && *result.Origin != "" {
		state.Fields.Origin = *result.Origin
	}
	if result.Destination != nil && *result.Destination != "" {
		state.Fields.Destination = *result.Destination
	}
	if result.CabinClass != nil && *result.CabinClass != "" {
		state.Fields.CabinClass = *result.CabinClass
	}
	if result.Duration != nil && *result.Duration > 0 {
		state.Fields.Duration = *result.Duration
	}

	state.Control.NeedsFollowup = result.NeedsFollowup
	state.Control.InfoComplete = result.InfoComplete
	if result.FollowupQuestion != nil {
		state.Control.FollowupQuestion = *result.FollowupQuestion
	} else {
		state.Control.FollowupQuestion = ""
	}
}

// FollowupFor returns the fixed question for the highest-priority missing
// field.
func FollowupFor(field string) string {
	switch field {
	case "departure_date":
		return "What date would you like to depart?"
	case "duration":
		return "How many days will your round trip last?"
	case "origin":
		return "Which city are you flying from?"
	case "destination":
		return "Which city would you like to fly to?"
	case "cabin_class":
		return "Which cabin class would you prefer: economy, business, or first class?"
	}
	return "Could you tell me more about your trip?"
}
