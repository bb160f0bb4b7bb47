package plugins

import (
	"context"

	"github.com/va6996/travelingman-mcp/plugins/amadeus"
	"github.com/va6996/travelingman-mcp/plugins/tripdoc"
)

// FlightClient defines the interface for flight interaction
type FlightClient interface {
	SearchFlights(ctx context.Context, trip amadeus.TripRequest) (string, error)
}

// HotelClient defines the interface for hotel interaction
type HotelClient interface {
	SearchStays(ctx context.Context, stays []amadeus.Stay, adults int) (string, error)
}

// SearchClient answers free-text web queries.
type SearchClient interface {
	Search(ctx context.Context, query string) (string, error)
}

// DocumentWriter stores a trip summary and returns its file name.
type DocumentWriter interface {
	Write(ctx context.Context, doc tripdoc.TripDocument) (string, error)
}
