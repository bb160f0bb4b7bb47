package amadeus

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/va6996/travelingman-mcp/log"
)

// --- Structs for Hotel Search ---

type HotelSearchResponse struct {
	Data []HotelOfferData `json:"data"`
}

type HotelOfferData struct {
	Type      string       `json:"type"`
	Hotel     HotelInfo    `json:"hotel"`
	Available bool         `json:"available"`
	Offers    []HotelOffer `json:"offers"`
	Self      string       `json:"self"`
}

type HotelInfo struct {
	Type      string  `json:"type"`
	HotelId   string  `json:"hotelId"`
	ChainCode string  `json:"chainCode"`
	Name      string  `json:"name"`
	CityCode  string  `json:"cityCode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type HotelOffer struct {
	ID           string        `json:"id"`
	CheckInDate  string        `json:"checkInDate"`
	CheckOutDate string        `json:"checkOutDate"`
	RateCode     string        `json:"rateCode"`
	Room         HotelRoom     `json:"room"`
	Guests       HotelGuests   `json:"guests"`
	Price        HotelPrice    `json:"price"`
	Policies     HotelPolicies `json:"policies"`
	Self         string        `json:"self"`
}

type HotelRoom struct {
	Type          string `json:"type"`
	TypeEstimated struct {
		Category string `json:"category"`
		// Beds is a pointer so a missing count can default to one.
		Beds    *int   `json:"beds"`
		BedType string `json:"bedType"`
	} `json:"typeEstimated"`
	Description struct {
		Text string `json:"text"`
		Lang string `json:"lang"`
	} `json:"description"`
}

type HotelGuests struct {
	Adults   int `json:"adults"`
	Children int `json:"children,omitempty"`
}

type HotelPrice struct {
	Currency   string `json:"currency"`
	Base       string `json:"base"`
	Total      string `json:"total"`
	Variations struct {
		Average struct {
			Base string `json:"base"`
		} `json:"average"`
	} `json:"variations"`
}

type HotelPolicies struct {
	PaymentType   string               `json:"paymentType"`
	Cancellations []CancellationPolicy `json:"cancellations"`
	Refundable    struct {
		CancellationRefund string `json:"cancellationRefund"`
	} `json:"refundable"`
}

type CancellationPolicy struct {
	Deadline string `json:"deadline"`
	Amount   string `json:"amount"`
}

// HotelListResponse is the response from /v1/reference-data/locations/hotels/by-city
type HotelListResponse struct {
	Data []struct {
		ChainCode string `json:"chainCode"`
		IataCode  string `json:"iataCode"`
		Name      string `json:"name"`
		HotelId   string `json:"hotelId"`
		GeoCode   struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"geoCode"`
	} `json:"data"`
}

// ListHotelsByCity returns up to the configured number of hotel ids in city.
func (c *Client) ListHotelsByCity(ctx context.Context, cityCode string) ([]string, error) {
	if cityCode == "" {
		return nil, fmt.Errorf("city code is required")
	}

	q := url.Values{}
	q.Set("cityCode", cityCode)
	var listResp HotelListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/reference-data/locations/hotels/by-city?"+q.Encode(), nil, &listResp); err != nil {
		return nil, err
	}

	var ids []string
	for _, h := range listResp.Data {
		if len(ids) >= c.Limits.Hotel {
			break
		}
		ids = append(ids, h.HotelId)
	}
	return ids, nil
}

// SearchHotelOffers fetches offers for all hotelIDs in one request.
func (c *Client) SearchHotelOffers(ctx context.Context, hotelIDs []string, adults int, checkIn, checkOut string) ([]HotelOfferData, error) {
	if len(hotelIDs) == 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("hotelIds", strings.Join(hotelIDs, ","))
	q.Set("adults", strconv.Itoa(adults))
	q.Set("checkInDate", checkIn)
	q.Set("checkOutDate", checkOut)
	q.Set("roomQuantity", "1")

	var searchResp HotelSearchResponse
	if err := c.do(ctx, http.MethodGet, "/v3/shopping/hotel-offers?"+q.Encode(), nil, &searchResp); err != nil {
		return nil, err
	}
	return searchResp.Data, nil
}

// SearchHotels lists hotels in cityCode and fetches their offers.
func (c *Client) SearchHotels(ctx context.Context, cityCode, checkIn, checkOut string, adults int) ([]HotelOfferData, error) {
	ids, err := c.ListHotelsByCity(ctx, cityCode)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		log.Infof(ctx, "No hotels listed for city %s", cityCode)
		return nil, nil
	}

	log.Debugf(ctx, "Fetching offers for %d hotels in %s (%s to %s, %d adults)", len(ids), cityCode, checkIn, checkOut, adults)
	return c.SearchHotelOffers(ctx, ids, adults, checkIn, checkOut)
}

// Stay is one hotel booking window of a multi-city trip.
type Stay struct {
	City     string
	CheckIn  string
	CheckOut string
}

const dateLayout = "2006-01-02"

// ChainStays pairs comma-joined city codes with comma-joined checkout dates.
// The first stay starts on origDate and each later stay starts on the
// previous checkout.
func ChainStays(cityCodes, origDate, checkoutDates string) ([]Stay, error) {
	cities := splitList(cityCodes)
	outs := splitList(checkoutDates)
	if len(cities) == 0 {
		return nil, fmt.Errorf("at least one city code is required")
	}
	if len(cities) != len(outs) {
		return nil, fmt.Errorf("got %d city codes but %d checkout dates", len(cities), len(outs))
	}

	checkIn := strings.TrimSpace(origDate)
	stays := make([]Stay, 0, len(cities))
	for i, city := range cities {
		in, err := time.Parse(dateLayout, checkIn)
		if err != nil {
			return nil, fmt.Errorf("stay %d: invalid check-in date %q", i+1, checkIn)
		}
		out, err := time.Parse(dateLayout, outs[i])
		if err != nil {
			return nil, fmt.Errorf("stay %d: invalid checkout date %q", i+1, outs[i])
		}
		if !out.After(in) {
			return nil, fmt.Errorf("stay %d in %s: checkout %s is not after check-in %s", i+1, city, outs[i], checkIn)
		}
		stays = append(stays, Stay{City: city, CheckIn: checkIn, CheckOut: outs[i]})
		checkIn = outs[i]
	}
	return stays, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// SearchStays searches each stay in order and renders the combined text.
func (c *Client) SearchStays(ctx context.Context, stays []Stay, adults int) (string, error) {
	var b strings.Builder
	for _, s := range stays {
		offers, err := c.SearchHotels(ctx, s.City, s.CheckIn, s.CheckOut, adults)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "# Hotels in %s from %s to %s:\n", s.City, s.CheckIn, s.CheckOut)
		b.WriteString(HotelOffersToText(offers))
		b.WriteString("\n\n")
	}
	return b.String(), nil
}
