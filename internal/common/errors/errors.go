// Package errors provides standardized error handling for the trip workflow.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeExtractionFailed   ErrorCode = "EXTRACTION_FAILED"
	ErrCodeExtractionTimeout  ErrorCode = "EXTRACTION_TIMEOUT"
	ErrCodeStaleDepartureDate ErrorCode = "STALE_DEPARTURE_DATE"

	ErrCodeProviderAuthFailed  ErrorCode = "PROVIDER_AUTH_FAILED"
	ErrCodeFlightSearchFailed  ErrorCode = "FLIGHT_SEARCH_FAILED"
	ErrCodeFlightSearchTimeout ErrorCode = "FLIGHT_SEARCH_TIMEOUT"
	ErrCodeNoFlightsFound      ErrorCode = "NO_FLIGHTS_FOUND"

	ErrCodeSelectionNoOffers   ErrorCode = "SELECTION_NO_OFFERS"
	ErrCodeSelectionUnparsable ErrorCode = "SELECTION_UNPARSABLE"
	ErrCodeSelectionNotFound   ErrorCode = "SELECTION_NOT_FOUND"
	ErrCodeHandoffIncomplete   ErrorCode = "HANDOFF_INCOMPLETE"

	ErrCodeHotelLookupFailed ErrorCode = "HOTEL_LOOKUP_FAILED"
	ErrCodeHotelOffersFailed ErrorCode = "HOTEL_OFFERS_FAILED"

	ErrCodeFollowupLimitReached ErrorCode = "FOLLOWUP_LIMIT_REACHED"
	ErrCodeTransitionLimit      ErrorCode = "TRANSITION_LIMIT_REACHED"
)

// StandardError represents a structured application error. UserMessage is the
// text surfaced to the chat user when this error terminates a step; it is
// never empty for step-boundary errors.
type StandardError struct {
	Code        ErrorCode              `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	UserMessage string                 `json:"userMessage,omitempty"`
	Retryable   bool                   `json:"retryable"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewExtractionFailedError covers model-unavailable and unparsable-output cases.
func NewExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:        ErrCodeExtractionFailed,
		Message:     "Language-model extraction failed",
		Details:     err.Error(),
		UserMessage: "I had trouble understanding. Could you please tell me your departure city, destination, and preferred travel date?",
		Retryable:   true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewExtractionTimeoutError creates a retryable model timeout error.
func NewExtractionTimeoutError() *StandardError {
	return &StandardError{
		Code:        ErrCodeExtractionTimeout,
		Message:     "Language-model call timed out",
		Details:     "call exceeded timeout threshold",
		UserMessage: "I'm having technical difficulties. Please try again with your flight details.",
		Retryable:   true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewStaleDepartureDateError marks a cleared, re-asked departure date.
func NewStaleDepartureDateError(date string) *StandardError {
	return &StandardError{
		Code:        ErrCodeStaleDepartureDate,
		Message:     "Departure date is in the past or unparsable",
		Details:     fmt.Sprintf("departureDate: %s", date),
		UserMessage: "That departure date has already passed. What date would you like to depart?",
		Retryable:   false,
		Timestamp:   time.Now().UTC(),
	}
}

// NewProviderAuthFailedError creates a retryable provider token error.
func NewProviderAuthFailedError(err error) *StandardError {
	return &StandardError{
		Code:        ErrCodeProviderAuthFailed,
		Message:     "Provider token request failed",
		Details:     err.Error(),
		UserMessage: "Sorry, I had trouble connecting to the flight search service. Please try again later.",
		Retryable:   true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewFlightSearchFailedError creates a retryable search error.
func NewFlightSearchFailedError(err error) *StandardError {
	return &StandardError{
		Code:        ErrCodeFlightSearchFailed,
		Message:     "Flight offer search failed",
		Details:     err.Error(),
		UserMessage: "Sorry, I had trouble searching for flights. Please try again later.",
		Retryable:   true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewNoFlightsFoundError is distinct from a hard search failure.
func NewNoFlightsFoundError(origin, destination string) *StandardError {
	return &StandardError{
		Code:        ErrCodeNoFlightsFound,
		Message:     "No offers across the whole search window",
		Details:     fmt.Sprintf("route: %s-%s", origin, destination),
		UserMessage: "No flights found for your search criteria. Would you like to try different dates or destinations?",
		Retryable:   false,
		Timestamp:   time.Now().UTC(),
	}
}

// NewSelectionNoOffersError fires when neither state nor cache holds offers.
func NewSelectionNoOffersError(threadID string) *StandardError {
	return &StandardError{
		Code:        ErrCodeSelectionNoOffers,
		Message:     "No displayed offers to select from",
		Details:     fmt.Sprintf("threadId: %s", threadID),
		UserMessage: "I couldn't find flight offers to choose from. Would you like me to search again or change dates?",
		Retryable:   false,
		Timestamp:   time.Now().UTC(),
	}
}

// NewSelectionUnparsableError covers non-numeric and out-of-range choices.
// The selection prompt listing available offers is attached by the router.
func NewSelectionUnparsableError(input string, prompt string) *StandardError {
	return &StandardError{
		Code:        ErrCodeSelectionUnparsable,
		Message:     "Selection input is not a valid offer ID",
		Details:     fmt.Sprintf("input: %q", input),
		UserMessage: prompt,
		Retryable:   false,
		Timestamp:   time.Now().UTC(),
	}
}

// NewSelectionNotFoundError fires when a parsed ID matches no offer.
func NewSelectionNotFoundError(id int) *StandardError {
	return &StandardError{
		Code:        ErrCodeSelectionNotFound,
		Message:     "Offer ID did not match any displayed offer",
		Details:     fmt.Sprintf("offerId: %d", id),
		UserMessage: "That ID doesn't match any of the listed offers. Please choose a valid ID.",
		Retryable:   false,
		Timestamp:   time.Now().UTC(),
	}
}

// NewHandoffIncompleteError fires when hotel parameters cannot be derived.
func NewHandoffIncompleteError(missing string) *StandardError {
	return &StandardError{
		Code:        ErrCodeHandoffIncomplete,
		Message:     "Hotel handoff parameters incomplete",
		Details:     fmt.Sprintf("missing: %s", missing),
		UserMessage: "I couldn't work out the hotel stay details from that flight. Could you confirm your destination city and dates?",
		Retryable:   false,
		Timestamp:   time.Now().UTC(),
	}
}

// NewHotelLookupFailedError covers the city-to-hotel-IDs lookup.
func NewHotelLookupFailedError(cityCode string, err error) *StandardError {
	return &StandardError{
		Code:        ErrCodeHotelLookupFailed,
		Message:     "Hotel lookup by city failed",
		Details:     fmt.Sprintf("cityCode: %s, error: %s", cityCode, err.Error()),
		UserMessage: "Sorry, I had trouble finding hotels in your city. Please try again later.",
		Retryable:   true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewHotelOffersFailedError covers the hotel-offer retrieval.
func NewHotelOffersFailedError(err error) *StandardError {
	return &StandardError{
		Code:        ErrCodeHotelOffersFailed,
		Message:     "Hotel offer retrieval failed",
		Details:     err.Error(),
		UserMessage: "Sorry, I had trouble retrieving hotel offers. Please try again later.",
		Retryable:   true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewTransitionLimitError fires when the engine's hard iteration cap trips.
func NewTransitionLimitError(limit int) *StandardError {
	return &StandardError{
		Code:        ErrCodeTransitionLimit,
		Message:     "Workflow transition ceiling reached",
		Details:     fmt.Sprintf("limit: %d", limit),
		UserMessage: "Something went wrong while processing your request. Please start over with your flight details.",
		Retryable:   false,
		Timestamp:   time.Now().UTC(),
	}
}
