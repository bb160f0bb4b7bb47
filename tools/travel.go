package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/va6996/travelingman-mcp/plugins"
	"github.com/va6996/travelingman-mcp/plugins/amadeus"
	"github.com/va6996/travelingman-mcp/plugins/tripdoc"
)

var errNotConfigured = errors.New("not configured")

type FlightInput struct {
	OrigLocationCode  string `json:"orig_location_code" jsonschema:"IATA code of the trip origin, e.g. JFK"`
	DestLocationCode  string `json:"dest_location_code" jsonschema:"IATA code of the outbound destination"`
	Dest2LocationCode string `json:"dest2_location_code" jsonschema:"IATA code the return flight departs from"`
	OrigDate          string `json:"orig_date" jsonschema:"outbound departure date, YYYY-MM-DD"`
	DeptDate          string `json:"dept_date" jsonschema:"return departure date, YYYY-MM-DD"`
	InfantCount       int    `json:"infant_count" jsonschema:"number of infants held on an adult's lap"`
	ChildCount        int    `json:"child_count" jsonschema:"number of children"`
	AdultCount        int    `json:"adult_count" jsonschema:"number of adults, at least 1"`
}

type SearchInput struct {
	Query string `json:"gs_query" jsonschema:"free-text web search query"`
}

type HotelInput struct {
	CityCodes string `json:"city_codes_str" jsonschema:"comma-separated IATA city codes in visiting order, e.g. PAR,ROM"`
	OrigDate  string `json:"orig_date" jsonschema:"check-in date for the first city, YYYY-MM-DD"`
	DestDates string `json:"dest_dates_str" jsonschema:"comma-separated checkout dates, one per city, YYYY-MM-DD"`
	Adults    int    `json:"adults" jsonschema:"number of adult guests"`
}

type TripPDFInput struct {
	OrigCity       string `json:"orig_city" jsonschema:"origin city"`
	OrigDate       string `json:"orig_date" jsonschema:"departure date"`
	DestCities     string `json:"dest_cities" jsonschema:"destination cities"`
	DestDates      string `json:"dest_dates" jsonschema:"destination dates"`
	Flight         string `json:"flight" jsonschema:"chosen flight details"`
	Hotels         string `json:"hotels" jsonschema:"chosen hotels"`
	Itinerary      string `json:"itinerary" jsonschema:"day-by-day itinerary"`
	LocalTransport string `json:"local_transport,omitempty" jsonschema:"getting around within each city"`
	CityTransport  string `json:"city_transport,omitempty" jsonschema:"travel between cities"`
	Adults         int    `json:"adults,omitempty" jsonschema:"number of adults"`
	Children       int    `json:"children,omitempty" jsonschema:"number of children"`
	Infants        int    `json:"infants,omitempty" jsonschema:"number of infants"`
}

// TravelTools binds the travel adapters to tool handlers. A nil adapter
// makes its tool fail with a configuration error.
type TravelTools struct {
	Flights    plugins.FlightClient
	Hotels     plugins.HotelClient
	Search     plugins.SearchClient
	Docs       plugins.DocumentWriter
	DownloadAt string
}

// RegisterTools adds the four travel tools to r.
func (t *TravelTools) RegisterTools(r *Registry) {
	Register(r, "search_flights",
		"Search round-trip flight offers. The return leg departs from dest2_location_code, which may differ from the outbound destination.",
		t.searchFlights)
	Register(r, "google_search",
		"Search the web and return the top results with titles, URLs and descriptions.",
		t.googleSearch)
	Register(r, "search_hotels",
		"Search hotel offers for a multi-city stay. Each city is booked from the previous checkout date to its own checkout date.",
		t.searchHotels)
	Register(r, "create_trip_pdf",
		"Create a PDF summary of the planned trip and return where it can be downloaded.",
		t.createTripPDF)
}

func (t *TravelTools) searchFlights(ctx context.Context, in FlightInput) (string, error) {
	if t.Flights == nil {
		return "", fmt.Errorf("flight search: %w", errNotConfigured)
	}
	return t.Flights.SearchFlights(ctx, amadeus.TripRequest{
		Origin:        in.OrigLocationCode,
		Destination:   in.DestLocationCode,
		ReturnFrom:    in.Dest2LocationCode,
		DepartureDate: in.OrigDate,
		ReturnDate:    in.DeptDate,
		Infants:       in.InfantCount,
		Children:      in.ChildCount,
		Adults:        in.AdultCount,
	})
}

func (t *TravelTools) googleSearch(ctx context.Context, in SearchInput) (string, error) {
	if t.Search == nil {
		return "", fmt.Errorf("web search: %w", errNotConfigured)
	}
	return t.Search.Search(ctx, in.Query)
}

func (t *TravelTools) searchHotels(ctx context.Context, in HotelInput) (string, error) {
	if t.Hotels == nil {
		return "", fmt.Errorf("hotel search: %w", errNotConfigured)
	}
	stays, err := amadeus.ChainStays(in.CityCodes, in.OrigDate, in.DestDates)
	if err != nil {
		return "", err
	}
	return t.Hotels.SearchStays(ctx, stays, in.Adults)
}

func (t *TravelTools) createTripPDF(ctx context.Context, in TripPDFInput) (string, error) {
	if t.Docs == nil {
		return "", fmt.Errorf("trip pdf: %w", errNotConfigured)
	}
	name, err := t.Docs.Write(ctx, tripdoc.TripDocument{
		OrigCity:       in.OrigCity,
		OrigDate:       in.OrigDate,
		DestCities:     in.DestCities,
		DestDates:      in.DestDates,
		Flight:         in.Flight,
		Hotels:         in.Hotels,
		Itinerary:      in.Itinerary,
		LocalTransport: in.LocalTransport,
		CityTransport:  in.CityTransport,
		Adults:         in.Adults,
		Children:       in.Children,
		Infants:        in.Infants,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Trip summary saved as %s. Download it at %s%s", name, t.DownloadAt, name), nil
}
