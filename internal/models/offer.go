// internal/models/offer.go
package models

// FlightLeg describes one itinerary of an offer (outbound or return).
type FlightLeg struct {
	Airline          string   `json:"airline"`
	FlightNumber     string   `json:"flightNumber"`
	DepartureAirport string   `json:"departureAirport"`
	ArrivalAirport   string   `json:"arrivalAirport"`
	DepartureTime    string   `json:"departureTime"` // local HH:MM
	ArrivalTime      string   `json:"arrivalTime"`   // local HH:MM
	Duration         string   `json:"duration"`      // e.g. "8h 15m"
	Stops            int      `json:"stops"`
	Layovers         []string `json:"layovers,omitempty"`
}

// Offer is the canonical priced itinerary produced by the formatter. It is
// immutable once produced and superseded wholesale on the next search. The
// ID is the 1-based position in the price-sorted display order and is the
// only selection handle exposed to the user.
type Offer struct {
	ID         int        `json:"offerId"`
	Price      string     `json:"price"`
	PriceValue float64    `json:"-"` // parsed; +Inf when Price is unparsable
	Currency   string     `json:"currency"`
	SearchDate string     `json:"searchDate,omitempty"` // day of the window that produced it
	Outbound   FlightLeg  `json:"outbound"`
	ReturnLeg  *FlightLeg `json:"returnLeg,omitempty"`

	// ISO timestamps and the resolved city kept for the hotel handoff, so the
	// selection router never needs the provider wire shape.
	OutboundArrivalAt string `json:"outboundArrivalAt,omitempty"`
	ReturnDepartureAt string `json:"returnDepartureAt,omitempty"`
	ArrivalCityCode   string `json:"arrivalCityCode,omitempty"`
}
