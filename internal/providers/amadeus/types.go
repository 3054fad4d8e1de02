// internal/providers/amadeus/types.go
package amadeus

// Wire shapes for the flight-offers and hotel APIs. These never leave this
// package except through the formatter; the rest of the system works on the
// canonical models.Offer.

// FlightOffersRequest is the POST body for the offer-search endpoint.
type FlightOffersRequest struct {
	CurrencyCode       string              `json:"currencyCode"`
	OriginDestinations []OriginDestination `json:"originDestinations"`
	Travelers          []Traveler          `json:"travelers"`
	Sources            []string            `json:"sources"`
	SearchCriteria     SearchCriteria      `json:"searchCriteria"`
}

type OriginDestination struct {
	ID                      string        `json:"id"`
	OriginLocationCode      string        `json:"originLocationCode"`
	DestinationLocationCode string        `json:"destinationLocationCode"`
	DepartureDateTimeRange  DateTimeRange `json:"departureDateTimeRange"`
}

type DateTimeRange struct {
	Date string `json:"date"`
	Time string `json:"time,omitempty"`
}

type Traveler struct {
	ID           string `json:"id"`
	TravelerType string `json:"travelerType"`
}

type SearchCriteria struct {
	MaxFlightOffers int           `json:"maxFlightOffers"`
	FlightFilters   FlightFilters `json:"flightFilters"`
}

type FlightFilters struct {
	CabinRestrictions []CabinRestriction `json:"cabinRestrictions"`
}

type CabinRestriction struct {
	Cabin                string   `json:"cabin"`
	Coverage             string   `json:"coverage"`
	OriginDestinationIDs []string `json:"originDestinationIds"`
}

// FlightOffersResponse is the offer-search response envelope.
type FlightOffersResponse struct {
	Data         []FlightOffer `json:"data"`
	Dictionaries Dictionaries  `json:"dictionaries"`
}

type FlightOffer struct {
	ID          string      `json:"id"`
	Itineraries []Itinerary `json:"itineraries"`
	Price       Price       `json:"price"`

	// Tag added by the parallel search: which day of the window produced it.
	SearchDate string `json:"-"`
}

type Itinerary struct {
	Duration string    `json:"duration"` // ISO-8601, e.g. PT8H15M
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Departure   SegmentPoint `json:"departure"`
	Arrival     SegmentPoint `json:"arrival"`
	CarrierCode string       `json:"carrierCode"`
	Number      string       `json:"number"`
	Duration    string       `json:"duration"`
}

type SegmentPoint struct {
	IataCode string `json:"iataCode"`
	At       string `json:"at"` // ISO-8601 timestamp
}

type Price struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
}

type Dictionaries struct {
	Locations map[string]Location `json:"locations"`
}

type Location struct {
	CityCode    string `json:"cityCode"`
	CountryCode string `json:"countryCode"`
}

// Hotel API shapes.

type hotelsByCityResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
	} `json:"data"`
}

type hotelOffersResponse struct {
	Data []HotelOfferSet `json:"data"`
}

// HotelOfferSet groups a hotel with its available offers.
type HotelOfferSet struct {
	Hotel  HotelRef         `json:"hotel"`
	Offers []HotelStayOffer `json:"offers"`
}

type HotelRef struct {
	HotelID string `json:"hotelId"`
	Name    string `json:"name"`
}

type HotelStayOffer struct {
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	Price        Price  `json:"price"`
}
