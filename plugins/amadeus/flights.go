package amadeus

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// --- Structs for Flight Search ---

type FlightSearchResponse struct {
	Data []FlightOffer `json:"data"`
}

type FlightOffer struct {
	Type                  string            `json:"type"`
	ID                    string            `json:"id"`
	Source                string            `json:"source"`
	LastTicketingDate     string            `json:"lastTicketingDate"`
	NumberOfBookableSeats int               `json:"numberOfBookableSeats"`
	Itineraries           []Itinerary       `json:"itineraries"`
	Price                 Price             `json:"price"`
	TravelerPricings      []TravelerPricing `json:"travelerPricings"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Departure   FlightEndPoint `json:"departure"`
	Arrival     FlightEndPoint `json:"arrival"`
	CarrierCode string         `json:"carrierCode"`
	Number      string         `json:"number"`
	Aircraft    struct {
		Code string `json:"code"`
	} `json:"aircraft"`
	Duration      string `json:"duration"`
	ID            string `json:"id"`
	NumberOfStops int    `json:"numberOfStops"`
}

type FlightEndPoint struct {
	IataCode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

type Price struct {
	Currency   string `json:"currency"`
	Total      string `json:"total"`
	Base       string `json:"base"`
	GrandTotal string `json:"grandTotal,omitempty"`
}

type TravelerPricing struct {
	TravelerID           string       `json:"travelerId"`
	FareOption           string       `json:"fareOption"`
	TravelerType         string       `json:"travelerType"`
	Price                Price        `json:"price"`
	FareDetailsBySegment []FareDetail `json:"fareDetailsBySegment"`
}

// FareDetail is the per-segment cabin and baggage allowance of a traveler.
type FareDetail struct {
	SegmentID           string       `json:"segmentId"`
	Cabin               string       `json:"cabin"`
	FareBasis           string       `json:"fareBasis"`
	Class               string       `json:"class"`
	IncludedCheckedBags BagAllowance `json:"includedCheckedBags"`
	IncludedCabinBags   BagAllowance `json:"includedCabinBags"`
}

type BagAllowance struct {
	Quantity   int    `json:"quantity"`
	Weight     int    `json:"weight,omitempty"`
	WeightUnit string `json:"weightUnit,omitempty"`
}

// --- Structs for the POST search body ---

type FlightSearchRequest struct {
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
	Time string `json:"time"`
}

type SearchCriteria struct {
	MaxFlightOffers int `json:"maxFlightOffers"`
}

// Traveler types accepted by flight-offer search.
const (
	TravelerAdult      = "ADULT"
	TravelerChild      = "CHILD"
	TravelerHeldInfant = "HELD_INFANT"
)

type Traveler struct {
	ID                string `json:"id"`
	TravelerType      string `json:"travelerType"`
	AssociatedAdultID string `json:"associatedAdultId,omitempty"`
}

// TripRequest describes an outbound leg Origin→Destination and a return
// leg ReturnFrom→Origin. ReturnFrom differs from Destination for open-jaw
// trips.
type TripRequest struct {
	Origin        string
	Destination   string
	ReturnFrom    string
	DepartureDate string
	ReturnDate    string
	Infants       int
	Children      int
	Adults        int
}

// BuildTravelers lists adults, then children, then held infants with
// sequential ids starting at "1". Infant i rides with adult i+1.
func BuildTravelers(adults, children, infants int) ([]Traveler, error) {
	if adults < 0 || children < 0 || infants < 0 {
		return nil, fmt.Errorf("traveler counts must not be negative (adults=%d, children=%d, infants=%d)", adults, children, infants)
	}
	if adults == 0 {
		return nil, fmt.Errorf("at least one adult is required")
	}
	if infants > adults {
		return nil, fmt.Errorf("each infant needs an adult: %d infants for %d adults", infants, adults)
	}

	travelers := make([]Traveler, 0, adults+children+infants)
	id := 1
	for i := 0; i < adults; i++ {
		travelers = append(travelers, Traveler{ID: strconv.Itoa(id), TravelerType: TravelerAdult})
		id++
	}
	for i := 0; i < children; i++ {
		travelers = append(travelers, Traveler{ID: strconv.Itoa(id), TravelerType: TravelerChild})
		id++
	}
	for i := 0; i < infants; i++ {
		travelers = append(travelers, Traveler{
			ID:                strconv.Itoa(id),
			TravelerType:      TravelerHeldInfant,
			AssociatedAdultID: strconv.Itoa(i + 1),
		})
		id++
	}
	return travelers, nil
}

// BuildFlightSearchRequest assembles the two-leg search body.
func BuildFlightSearchRequest(trip TripRequest, currency string, maxOffers int) (*FlightSearchRequest, error) {
	if trip.Origin == "" || trip.Destination == "" || trip.ReturnFrom == "" {
		return nil, fmt.Errorf("origin, destination and return location codes are required")
	}
	if trip.DepartureDate == "" || trip.ReturnDate == "" {
		return nil, fmt.Errorf("departure and return dates are required")
	}

	travelers, err := BuildTravelers(trip.Adults, trip.Children, trip.Infants)
	if err != nil {
		return nil, err
	}

	return &FlightSearchRequest{
		CurrencyCode: currency,
		OriginDestinations: []OriginDestination{
			{
				ID:                      "1",
				OriginLocationCode:      trip.Origin,
				DestinationLocationCode: trip.Destination,
				DepartureDateTimeRange:  DateTimeRange{Date: trip.DepartureDate, Time: "00:00:00"},
			},
			{
				ID:                      "2",
				OriginLocationCode:      trip.ReturnFrom,
				DestinationLocationCode: trip.Origin,
				DepartureDateTimeRange:  DateTimeRange{Date: trip.ReturnDate, Time: "00:00:00"},
			},
		},
		Travelers:      travelers,
		Sources:        []string{"GDS"},
		SearchCriteria: SearchCriteria{MaxFlightOffers: maxOffers},
	}, nil
}

// SearchFlightOffers submits a prepared search body.
func (c *Client) SearchFlightOffers(ctx context.Context, body *FlightSearchRequest) (*FlightSearchResponse, error) {
	var searchResp FlightSearchResponse
	if err := c.do(ctx, http.MethodPost, "/v2/shopping/flight-offers", body, &searchResp); err != nil {
		return nil, err
	}
	return &searchResp, nil
}

// SearchFlights runs a two-leg search and returns the readable summary.
// API errors are returned unchanged.
func (c *Client) SearchFlights(ctx context.Context, trip TripRequest) (string, error) {
	body, err := BuildFlightSearchRequest(trip, c.Currency, c.Limits.Flight)
	if err != nil {
		return "", err
	}

	resp, err := c.SearchFlightOffers(ctx, body)
	if err != nil {
		return "", err
	}
	return SummarizeFlights(resp.Data), nil
}
