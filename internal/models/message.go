// internal/models/message.go
package models

import "time"

// Message is one entry of a conversation thread. Kind records, for assistant
// messages, which turn outcome produced them (a TurnResponseType value); it is
// empty for user and system messages.
type Message struct {
	Role      string    `json:"role"` // user | assistant | system
	Content   string    `json:"content"`
	Kind      string    `json:"kind,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// SystemPrompt seeds every new conversation thread.
const SystemPrompt = "You are a helpful AI travel assistant specializing in flight bookings. " +
	"Your goal is to help users find the best flights by gathering their preferences " +
	"in a natural, conversational way. You can understand flexible date formats, " +
	"casual location names, and abbreviated terms. Always be friendly and efficient."

// TurnRequest is the caller-facing turn contract input.
type TurnRequest struct {
	ThreadID string `json:"threadId"`
	UserMsg  string `json:"userMsg"`
}

// TurnResponseType enumerates what one turn produced.
type TurnResponseType string

const (
	TurnQuestion  TurnResponseType = "question"
	TurnResults   TurnResponseType = "results"
	TurnSelection TurnResponseType = "selection"
	TurnHotels    TurnResponseType = "hotels"
	TurnError     TurnResponseType = "error"
)

// TurnResponse is the caller-facing turn contract output: exactly one of the
// outcome kinds per processed message.
type TurnResponse struct {
	ThreadID     string           `json:"threadId"`
	ResponseType TurnResponseType `json:"responseType"`
	Message      string           `json:"message"`
	Fields       *TripFields      `json:"extractedInfo,omitempty"`
	Offers       []Offer          `json:"flights,omitempty"`
	Hotels       []HotelOffer     `json:"hotels,omitempty"`
	Summary      string           `json:"summary,omitempty"`
	Trace        []string         `json:"debugTrace,omitempty"`
}
