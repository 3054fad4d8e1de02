// internal/steps/summarize/handler_test.go
package summarize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SaiffMoh/FastTravelGraph/internal/common/logger"
	"github.com/SaiffMoh/FastTravelGraph/internal/models"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return s.response, s.err
}

func stateWithOffers() *models.ConversationState {
	state := models.NewConversationState("thread-1", nil, "")
	state.Fields = models.TripFields{
		Origin: "Cairo", Destination: "Paris",
		DepartureDate: "2025-08-13", CabinClass: "economy", Duration: 7,
	}
	state.Search.FormattedOffers = []models.Offer{{ID: 1, Price: "12139.00", Currency: "EGP"}}
	return state
}

func TestExecute_ModelSummary(t *testing.T) {
	h := NewHandler(&stubLLM{response: "Great! I found several flight options for your trip."}, logger.NewTestLogger(t))
	state := stateWithOffers()

	h.Execute(context.Background(), state)

	assert.Equal(t, "Great! I found several flight options for your trip.", state.Search.Summary)
	assert.Contains(t, state.Control.Trace, StepName)
}

func TestExecute_ModelFailureFallsBack(t *testing.T) {
	h := NewHandler(&stubLLM{err: assert.AnError}, logger.NewTestLogger(t))
	state := stateWithOffers()

	h.Execute(context.Background(), state)

	assert.Equal(t, fallbackSummary, state.Search.Summary)
}

func TestExecute_NoOffersUsesDefault(t *testing.T) {
	h := NewHandler(&stubLLM{response: "should not be used"}, logger.NewTestLogger(t))
	state := models.NewConversationState("thread-1", nil, "")

	h.Execute(context.Background(), state)

	assert.Equal(t, defaultSummary, state.Search.Summary)
}

func TestExecute_NoModelUsesDefault(t *testing.T) {
	h := NewHandler(nil, logger.NewTestLogger(t))
	state := stateWithOffers()

	h.Execute(context.Background(), state)

	assert.Equal(t, defaultSummary, state.Search.Summary)
}
