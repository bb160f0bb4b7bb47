package amadeus

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	hotelSeparator = "\n" + strings.Repeat("=", 50) + "\n"
	roomSizeRE     = regexp.MustCompile(`(\d+)sqft/(\d+)sqm`)
)

// HotelOffersToText renders hotel offers as numbered, human-readable blocks.
// An empty list renders a single unavailable placeholder.
func HotelOffersToText(hotels []HotelOfferData) string {
	if len(hotels) == 0 {
		hotels = []HotelOfferData{{Hotel: HotelInfo{Name: "No Hotels Found", CityCode: notAvailable}}}
	}

	var lines []string
	for i, h := range hotels {
		lines = append(lines,
			fmt.Sprintf("=== HOTEL OPTION %d ===\n", i+1),
			"HOTEL: "+orNA(h.Hotel.Name),
			"LOCATION: "+orNA(h.Hotel.CityCode),
		)
		if !h.Available {
			lines = append(lines, "STATUS: Not Available", hotelSeparator)
			continue
		}
		lines = append(lines, "STATUS: Available")

		for j, offer := range h.Offers {
			if len(h.Offers) > 1 {
				lines = append(lines, fmt.Sprintf("\n--- Offer %d ---", j+1))
			}
			lines = append(lines, offerLines(offer)...)
		}
		lines = append(lines, hotelSeparator)
	}
	return strings.Join(lines, "\n")
}

func offerLines(o HotelOffer) []string {
	checkIn, checkOut := orNA(o.CheckInDate), orNA(o.CheckOutDate)
	lines := []string{
		"CHECK-IN: " + formatDate(checkIn),
		"CHECK-OUT: " + formatDate(checkOut),
	}
	if in, err := time.Parse(dateLayout, checkIn); err == nil {
		if out, err := time.Parse(dateLayout, checkOut); err == nil {
			lines = append(lines, fmt.Sprintf("NIGHTS: %d", int(out.Sub(in).Hours()/24)))
		}
	}

	te := o.Room.TypeEstimated
	category := te.Category
	if category == "" {
		category = "Standard Room"
	}
	beds := 1
	if te.Beds != nil {
		beds = *te.Beds
	}
	bedType := te.BedType
	if bedType == "" {
		bedType = "Bed"
	}
	// A Caser keeps state between calls and cannot be shared.
	titleCaser := cases.Title(language.Und)
	lines = append(lines,
		"ROOM TYPE: "+titleCaser.String(strings.ReplaceAll(category, "_", " ")),
		fmt.Sprintf("BED: %d %s", beds, titleCaser.String(bedType)),
	)
	if size := roomSize(o.Room.Description.Text); size != "" {
		lines = append(lines, "ROOM SIZE: "+size)
	}

	guests := fmt.Sprintf("%d Adult(s)", o.Guests.Adults)
	if o.Guests.Children > 0 {
		guests += fmt.Sprintf(", %d Child(ren)", o.Guests.Children)
	}
	lines = append(lines, "GUESTS: "+guests)

	currency := o.Price.Currency
	if currency == "" {
		currency = "USD"
	}
	lines = append(lines,
		fmt.Sprintf("TOTAL PRICE: %s $%s", currency, orZeroAmount(o.Price.Total)),
		fmt.Sprintf("BASE PRICE: %s $%s", currency, orZeroAmount(o.Price.Base)),
	)
	if avg := orZeroAmount(o.Price.Variations.Average.Base); avg != "0" {
		lines = append(lines, fmt.Sprintf("AVG PER NIGHT: %s $%s", currency, avg))
	}

	if len(o.Policies.Cancellations) > 0 {
		cp := o.Policies.Cancellations[0]
		if cp.Deadline != "" {
			lines = append(lines, "CANCELLATION: Free until "+formatDeadline(cp.Deadline))
		}
		if fee := orZeroAmount(cp.Amount); fee != "0" {
			lines = append(lines, fmt.Sprintf("CANCELLATION FEE: %s $%s", currency, fee))
		}
	}

	if line := refundLine(o.Policies.Refundable.CancellationRefund); line != "" {
		lines = append(lines, line)
	}
	return lines
}

func refundLine(code string) string {
	switch {
	case strings.Contains(code, "NON_REFUNDABLE"):
		return "REFUNDABLE: No"
	case strings.Contains(code, "REFUNDABLE"):
		return "REFUNDABLE: Yes (with conditions)"
	}
	return ""
}

func orZeroAmount(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func roomSize(desc string) string {
	m := roomSizeRE.FindStringSubmatch(desc)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%s sq ft (%s sq m)", m[1], m[2])
}

func formatDate(s string) string {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("January 02, 2006")
}

// formatDeadline keeps the wall-clock part of a deadline and drops any
// zone suffix.
func formatDeadline(s string) string {
	datePart, timePart, ok := strings.Cut(s, "T")
	if !ok {
		return s
	}
	if i := strings.IndexAny(timePart, "+-Z"); i >= 0 {
		timePart = timePart[:i]
	}
	d, err := time.Parse(dateLayout, datePart)
	if err != nil {
		return s
	}
	t, err := time.Parse("15:04:05", timePart)
	if err != nil {
		return s
	}
	return d.Format("January 02, 2006") + " at " + t.Format("03:04 PM")
}
