// internal/models/hotel.go
package models

// HotelHandoff is derived exactly once per successful flight selection and
// consumed by the hotel sub-pipeline.
type HotelHandoff struct {
	ThreadID       string `json:"threadId"`
	SelectedFlight int    `json:"selectedFlight"`
	CityCode       string `json:"cityCode"`
	CheckInDate    string `json:"checkinDate"`  // YYYY-MM-DD
	CheckOutDate   string `json:"checkoutDate"` // YYYY-MM-DD
	Currency       string `json:"currency"`
	RoomQuantity   int    `json:"roomQuantity"`
	Adults         int    `json:"adults"`
}

// Complete reports whether the pipeline can proceed without clarification.
func (h *HotelHandoff) Complete() bool {
	return h != nil && h.CityCode != "" && h.CheckInDate != "" && h.CheckOutDate != ""
}

// HotelOffer is one priced stay returned by the lodging provider.
type HotelOffer struct {
	HotelID      string `json:"hotelId"`
	Name         string `json:"name"`
	CheckInDate  string `json:"checkinDate"`
	CheckOutDate string `json:"checkoutDate"`
	Price        string `json:"price"`
	Currency     string `json:"currency"`
}
