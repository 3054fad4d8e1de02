// internal/steps/validate/handler_test.go
package validate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SaiffMoh/FastTravelGraph/internal/common/logger"
	"github.com/SaiffMoh/FastTravelGraph/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type stubLLM struct {
	response string
	err      error
	calls    int
}

func (s *stubLLM) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.response, s.err
}

func newTestHandler(t *testing.T, client *stubLLM) *Handler {
	var h *Handler
	if client != nil {
		h = NewHandler(client, logger.NewTestLogger(t))
	} else {
		h = NewHandler(nil, logger.NewTestLogger(t))
	}
	h.now = func() time.Time {
		return time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)
	}
	return h
}

func completeState() *models.ConversationState {
	state := models.NewConversationState("thread-1", nil, "")
	state.Fields = models.TripFields{
		DepartureDate: "2025-08-13",
		Origin:        "new york",
		Destination:   "paris",
		CabinClass:    "economy",
		Duration:      7,
		TripType:      models.TripTypeRoundTrip,
	}
	return state
}

// ==========================
// Completeness Tests
// ==========================

func TestExecute_AllFieldsPresentAndFutureDate(t *testing.T) {
	h := newTestHandler(t, nil)
	state := completeState()

	h.Execute(context.Background(), state)

	assert.True(t, state.Control.InfoComplete)
	assert.False(t, state.Control.NeedsFollowup)
	assert.Empty(t, state.Control.FollowupQuestion)
	assert.Equal(t, "JFK", state.Normalized.OriginCode)
	assert.Equal(t, "CDG", state.Normalized.DestinationCode)
	assert.Equal(t, "2025-08-13", state.Normalized.DepartureDate)
	assert.Equal(t, "ECONOMY", state.Normalized.Cabin)
}

func TestExecute_InfoCompleteIffDateNotPast(t *testing.T) {
	tests := []struct {
		name string
		date string
		want bool
	}{
		{"future date", "2025-08-13", true},
		{"today", "2025-08-01", true},
		{"past date", "2025-07-31", false},
		{"unparsable", "next week", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, nil)
			state := completeState()
			state.Fields.DepartureDate = tt.date

			h.Execute(context.Background(), state)

			assert.Equal(t, tt.want, state.Control.InfoComplete)
		})
	}
}

func TestExecute_StaleDateClearedAndReasked(t *testing.T) {
	h := newTestHandler(t, nil)
	state := completeState()
	state.Fields.DepartureDate = "2025-07-01"

	h.Execute(context.Background(), state)

	assert.Empty(t, state.Fields.DepartureDate)
	assert.True(t, state.Control.NeedsFollowup)
	assert.Equal(t, "That departure date has already passed. What date would you like to depart?", state.Control.FollowupQuestion)
}

func TestExecute_MissingFieldGetsFollowup(t *testing.T) {
	h := newTestHandler(t, nil)
	state := completeState()
	state.Fields.Origin = ""

	h.Execute(context.Background(), state)

	assert.False(t, state.Control.InfoComplete)
	assert.Equal(t, "Which city are you flying from?", state.Control.FollowupQuestion)
}

// ==========================
// Location Resolution Tests
// ==========================

func TestResolveLocation_Ladder(t *testing.T) {
	tests := []struct {
		name     string
		location string
		llm      *stubLLM
		want     string
	}{
		{"three-alpha passthrough", "cai", nil, "CAI"},
		{"static table", "new york", nil, "JFK"},
		{"static table case insensitive", "London", nil, "LHR"},
		{"model lookup", "casablanca", &stubLLM{response: "CMN"}, "CMN"},
		{"model lookup with prose", "casablanca", &stubLLM{response: "The code is CMN."}, "CMN"},
		{"model failure falls to prefix", "casablanca", &stubLLM{err: assert.AnError}, "CAS"},
		{"no model falls to prefix", "casablanca", nil, "CAS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.llm)
			assert.Equal(t, tt.want, h.resolveLocation(context.Background(), tt.location))
		})
	}
}

func TestResolveLocation_StaticTableSkipsModel(t *testing.T) {
	client := &stubLLM{response: "XXX"}
	h := newTestHandler(t, client)

	assert.Equal(t, "CDG", h.resolveLocation(context.Background(), "paris"))
	assert.Zero(t, client.calls)
}

// ==========================
// Cabin Tests
// ==========================

func TestNormalizeCabin(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"economy", "ECONOMY"},
		{"eco", "ECONOMY"},
		{"coach", "ECONOMY"},
		{"business", "BUSINESS"},
		{"biz class", "BUSINESS"},
		{"first class", "FIRST_CLASS"},
		{"", "ECONOMY"},
		{"whatever", "ECONOMY"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCabin(tt.input), "input %q", tt.input)
	}
}
