// internal/models/trip.go
package models

// Phase identifies where a conversation stands in the workflow.
type Phase string

const (
	PhaseCollecting        Phase = "collecting"
	PhaseSearching         Phase = "searching"
	PhaseAwaitingSelection Phase = "awaiting_selection"
	PhaseHandoff           Phase = "handoff"
	PhaseDone              Phase = "done"
)

// TripType is fixed to round trip for this assistant; one-way is unsupported.
const TripTypeRoundTrip = "round trip"

// TripFields holds the raw values collected from conversation. All fields are
// optional until populated; zero values mean "not yet provided".
type TripFields struct {
	DepartureDate string `json:"departureDate,omitempty"` // YYYY-MM-DD
	Origin        string `json:"origin,omitempty"`
	Destination   string `json:"destination,omitempty"`
	CabinClass    string `json:"cabinClass,omitempty"`
	Duration      int    `json:"duration,omitempty"` // days, round trip
	TripType      string `json:"tripType,omitempty"`
}

// NormalizedFields are derived from TripFields by the validator and never
// hand-edited.
type NormalizedFields struct {
	OriginCode      string `json:"originCode,omitempty"`      // 3-letter IATA
	DestinationCode string `json:"destinationCode,omitempty"` // 3-letter IATA
	DepartureDate   string `json:"departureDate,omitempty"`   // YYYY-MM-DD
	Cabin           string `json:"cabin,omitempty"`           // ECONOMY | BUSINESS | FIRST_CLASS
}

// Control carries the flow-control flags threaded through one workflow run.
type Control struct {
	NeedsFollowup    bool     `json:"needsFollowup"`
	InfoComplete     bool     `json:"infoComplete"`
	FollowupQuestion string   `json:"followupQuestion,omitempty"`
	FollowupCount    int      `json:"followupCount"`
	Trace            []string `json:"trace,omitempty"`
}

// SearchArtifacts holds everything produced on the way from a complete field
// set to a displayed offer list.
type SearchArtifacts struct {
	RequestBody     []byte  `json:"-"`
	AccessToken     string  `json:"-"`
	FormattedOffers []Offer `json:"formattedOffers,omitempty"` // price-ascending, 1-based IDs
	Summary         string  `json:"summary,omitempty"`
}

// Selection records a resolved user choice and the derived hotel parameters.
type Selection struct {
	SelectedOfferID int           `json:"selectedOfferId,omitempty"`
	SelectedOffer   *Offer        `json:"selectedOffer,omitempty"`
	Handoff         *HotelHandoff `json:"handoff,omitempty"`
}

// ConversationState is the single mutable record threaded through one
// workflow execution. Steps must never erase fields they did not derive.
type ConversationState struct {
	ThreadID       string    `json:"threadId"`
	Conversation   []Message `json:"conversation,omitempty"`
	CurrentMessage string    `json:"currentMessage"`
	Phase          Phase     `json:"phase"`

	Fields     TripFields       `json:"fields"`
	Normalized NormalizedFields `json:"normalized"`
	Control    Control          `json:"control"`
	Search     SearchArtifacts  `json:"search"`
	Selection  Selection        `json:"selection"`

	Hotels []HotelOffer `json:"hotels,omitempty"`
}

// NewConversationState seeds a state for one turn. Trip type always defaults
// to round trip.
func NewConversationState(threadID string, history []Message, currentMessage string) *ConversationState {
	return &ConversationState{
		ThreadID:       threadID,
		Conversation:   history,
		CurrentMessage: currentMessage,
		Phase:          PhaseCollecting,
		Fields:         TripFields{TripType: TripTypeRoundTrip},
		Control: Control{
			NeedsFollowup: true,
		},
	}
}

// MissingFields lists the required trip fields not yet populated, in the
// fixed follow-up priority order.
func (s *ConversationState) MissingFields() []string {
	var missing []string
	if s.Fields.DepartureDate == "" {
		missing = append(missing, "departure_date")
	}
	if s.Fields.Duration == 0 {
		missing = append(missing, "duration")
	}
	if s.Fields.Origin == "" {
		missing = append(missing, "origin")
	}
	if s.Fields.Destination == "" {
		missing = append(missing, "destination")
	}
	if s.Fields.CabinClass == "" {
		missing = append(missing, "cabin_class")
	}
	return missing
}

// Visit appends a step name to the diagnostic trace.
func (s *ConversationState) Visit(step string) {
	s.Control.Trace = append(s.Control.Trace, step)
}
