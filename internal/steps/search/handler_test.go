// internal/steps/search/handler_test.go
package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaiffMoh/FastTravelGraph/internal/common/config"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/logger"
	"github.com/SaiffMoh/FastTravelGraph/internal/models"
	"github.com/SaiffMoh/FastTravelGraph/internal/providers/amadeus"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/buildrequest"
)

// ==========================
// Test Helper Functions
// ==========================

// fakeSearcher answers per requested departure date.
type fakeSearcher struct {
	mu        sync.Mutex
	responses map[string]*amadeus.FlightOffersResponse
	errors    map[string]error
	requests  []string
}

func (f *fakeSearcher) SearchFlightOffers(ctx context.Context, token string, body *amadeus.FlightOffersRequest) (*amadeus.FlightOffersResponse, error) {
	day := body.OriginDestinations[0].DepartureDateTimeRange.Date
	f.mu.Lock()
	f.requests = append(f.requests, day)
	f.mu.Unlock()

	if err, ok := f.errors[day]; ok {
		return nil, err
	}
	if resp, ok := f.responses[day]; ok {
		return resp, nil
	}
	return &amadeus.FlightOffersResponse{}, nil
}

func offerWithID(id string) amadeus.FlightOffer {
	return amadeus.FlightOffer{
		ID:    id,
		Price: amadeus.Price{Currency: "EGP", Total: "12139.00"},
	}
}

func testConfig() config.SearchConfig {
	return config.SearchConfig{
		WindowDays:      3,
		MaxOffersPerDay: 5,
		Currency:        "EGP",
		DepartureTime:   "10:00:00",
	}
}

func newTestHandler(t *testing.T, provider FlightSearcher) *Handler {
	cfg := testConfig()
	return NewHandler(cfg, 2*time.Second, provider, buildrequest.NewBuilder(cfg), logger.NewTestLogger(t))
}

func searchState() *models.ConversationState {
	state := models.NewConversationState("thread-1", nil, "")
	state.Normalized = models.NormalizedFields{
		OriginCode:      "CAI",
		DestinationCode: "CDG",
		DepartureDate:   "2025-08-13",
		Cabin:           "ECONOMY",
	}
	state.Fields.Duration = 7
	state.Search.AccessToken = "test-token"
	return state
}

// ==========================
// Tests
// ==========================

func TestExecute_QueriesEveryWindowDay(t *testing.T) {
	provider := &fakeSearcher{
		responses: map[string]*amadeus.FlightOffersResponse{
			"2025-08-13": {Data: []amadeus.FlightOffer{offerWithID("a")}},
			"2025-08-14": {Data: []amadeus.FlightOffer{offerWithID("b")}},
			"2025-08-15": {Data: []amadeus.FlightOffer{offerWithID("c")}},
		},
	}
	h := newTestHandler(t, provider)

	result, err := h.Execute(context.Background(), searchState())
	require.NoError(t, err)

	assert.Len(t, result.Offers, 3)
	assert.ElementsMatch(t, []string{"2025-08-13", "2025-08-14", "2025-08-15"}, provider.requests)
}

func TestExecute_PartialFailureKeepsOtherDays(t *testing.T) {
	provider := &fakeSearcher{
		responses: map[string]*amadeus.FlightOffersResponse{
			"2025-08-13": {Data: []amadeus.FlightOffer{offerWithID("a"), offerWithID("b")}},
			"2025-08-15": {Data: []amadeus.FlightOffer{offerWithID("c")}},
		},
		errors: map[string]error{
			"2025-08-14": errors.New("upstream 500"),
		},
	}
	h := newTestHandler(t, provider)

	result, err := h.Execute(context.Background(), searchState())
	require.NoError(t, err)

	require.Len(t, result.Offers, 3)
	var ids []string
	for _, o := range result.Offers {
		ids = append(ids, o.ID)
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids)
}

func TestExecute_TagsOffersWithSearchDate(t *testing.T) {
	provider := &fakeSearcher{
		responses: map[string]*amadeus.FlightOffersResponse{
			"2025-08-14": {Data: []amadeus.FlightOffer{offerWithID("x")}},
		},
	}
	h := newTestHandler(t, provider)

	result, err := h.Execute(context.Background(), searchState())
	require.NoError(t, err)

	require.Len(t, result.Offers, 1)
	assert.Equal(t, "2025-08-14", result.Offers[0].SearchDate)
}

func TestExecute_ShiftsReturnDateWithDeparture(t *testing.T) {
	var capturedReturns []string
	var mu sync.Mutex
	provider := &capturingSearcher{onRequest: func(body *amadeus.FlightOffersRequest) {
		mu.Lock()
		capturedReturns = append(capturedReturns, body.OriginDestinations[1].DepartureDateTimeRange.Date)
		mu.Unlock()
	}}
	h := newTestHandler(t, provider)

	_, err := h.Execute(context.Background(), searchState())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"2025-08-20", "2025-08-21", "2025-08-22"}, capturedReturns)
}

func TestExecute_CapsOffersPerDay(t *testing.T) {
	many := make([]amadeus.FlightOffer, 8)
	for i := range many {
		many[i] = offerWithID("x")
	}
	provider := &fakeSearcher{
		responses: map[string]*amadeus.FlightOffersResponse{
			"2025-08-13": {Data: many},
		},
	}
	h := newTestHandler(t, provider)

	result, err := h.Execute(context.Background(), searchState())
	require.NoError(t, err)

	assert.Len(t, result.Offers, 5)
}

func TestExecute_MergesLocationDictionaries(t *testing.T) {
	provider := &fakeSearcher{
		responses: map[string]*amadeus.FlightOffersResponse{
			"2025-08-13": {
				Data:         []amadeus.FlightOffer{offerWithID("a")},
				Dictionaries: amadeus.Dictionaries{Locations: map[string]amadeus.Location{"CDG": {CityCode: "PAR"}}},
			},
			"2025-08-14": {
				Data:         []amadeus.FlightOffer{offerWithID("b")},
				Dictionaries: amadeus.Dictionaries{Locations: map[string]amadeus.Location{"ORY": {CityCode: "PAR"}}},
			},
		},
	}
	h := newTestHandler(t, provider)

	result, err := h.Execute(context.Background(), searchState())
	require.NoError(t, err)

	assert.Equal(t, "PAR", result.Locations["CDG"].CityCode)
	assert.Equal(t, "PAR", result.Locations["ORY"].CityCode)
}

func TestExecute_InvalidStartDate(t *testing.T) {
	h := newTestHandler(t, &fakeSearcher{})
	state := searchState()
	state.Normalized.DepartureDate = "bad"

	_, err := h.Execute(context.Background(), state)
	assert.Error(t, err)
}

// capturingSearcher records request bodies and returns an empty result.
type capturingSearcher struct {
	onRequest func(body *amadeus.FlightOffersRequest)
}

func (c *capturingSearcher) SearchFlightOffers(ctx context.Context, token string, body *amadeus.FlightOffersRequest) (*amadeus.FlightOffersResponse, error) {
	c.onRequest(body)
	return &amadeus.FlightOffersResponse{}, nil
}
