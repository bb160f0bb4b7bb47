package amadeus

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const notAvailable = "N/A"

var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseISODuration renders an ISO-8601 duration such as "PT2H30M" as
// "2h 30m". Days fold into hours. Empty or malformed input gives "N/A".
func ParseISODuration(s string) string {
	m := isoDurationRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return notAvailable
	}
	days, _ := strconv.Atoi(orZero(m[1]))
	hours, _ := strconv.Atoi(orZero(m[2]))
	minutes, _ := strconv.Atoi(orZero(m[3]))
	return fmt.Sprintf("%dh %dm", days*24+hours, minutes)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

var timestampLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339, true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false},
}

func parseTimestamp(s string) (time.Time, bool, error) {
	for _, l := range timestampLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return t, l.zoned, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognised timestamp %q", s)
}

// Layover formats the gap between an arrival and the next departure as
// "Hh Mm". Whole days are dropped and a negative gap wraps around the clock.
// Timestamps that cannot be parsed or compared give "N/A".
func Layover(arrival, departure string) string {
	arr, arrZoned, err := parseTimestamp(arrival)
	if err != nil {
		return notAvailable
	}
	dep, depZoned, err := parseTimestamp(departure)
	if err != nil || arrZoned != depZoned {
		return notAvailable
	}

	secs := int64(dep.Sub(arr)/time.Second) % 86400
	if secs < 0 {
		secs += 86400
	}
	return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
}

func formatSegmentTime(s string) string {
	t, _, err := parseTimestamp(s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02 15:04")
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// SummarizeFlights reduces flight offers to the multi-line summary handed
// back to the caller.
func SummarizeFlights(offers []FlightOffer) string {
	var b strings.Builder
	for i, offer := range offers {
		writeOffer(&b, i+1, offer)
	}
	return b.String()
}

func writeOffer(b *strings.Builder, n int, offer FlightOffer) {
	cabin := notAvailable
	checked, cabinBags := 0, 0
	if len(offer.TravelerPricings) > 0 && len(offer.TravelerPricings[0].FareDetailsBySegment) > 0 {
		fd := offer.TravelerPricings[0].FareDetailsBySegment[0]
		cabin = orNA(fd.Cabin)
		checked = fd.IncludedCheckedBags.Quantity
		cabinBags = fd.IncludedCabinBags.Quantity
	}

	var durations, flights, aircraft []string
	seenAircraft := map[string]bool{}
	var timeline []string

	for idx, it := range offer.Itineraries {
		d := ParseISODuration(it.Duration)
		durations = append(durations, d)

		label := "Return"
		if idx == 0 {
			label = "Outbound"
		}
		timeline = append(timeline, fmt.Sprintf("  ### --- %s (%s) ---", label, d))

		for sIdx, seg := range it.Segments {
			flight := orNA(seg.CarrierCode) + orNA(seg.Number)
			timeline = append(timeline, "    - "+segmentLine(seg, flight))
			flights = append(flights, flight)

			code := orNA(seg.Aircraft.Code)
			if !seenAircraft[code] {
				seenAircraft[code] = true
				aircraft = append(aircraft, code)
			}

			if sIdx < len(it.Segments)-1 {
				next := it.Segments[sIdx+1]
				timeline = append(timeline, "    Layover: "+Layover(seg.Arrival.At, next.Departure.At))
			}
		}

		if idx < len(offer.Itineraries)-1 {
			timeline = append(timeline, "")
		}
	}

	fmt.Fprintf(b, "\n # --- Flight Option %d ---\n", n)
	fmt.Fprintf(b, "Flight ID: %s\n", orNA(offer.ID))
	fmt.Fprintf(b, "Price: %s %s\n", orNA(offer.Price.Total), orNA(offer.Price.Currency))
	fmt.Fprintf(b, "Duration: %s\n", strings.Join(durations, " + "))
	fmt.Fprintf(b, "Airlines/Flights: %s\n", strings.Join(flights, ", "))
	fmt.Fprintf(b, "Aircraft: %s\n", strings.Join(aircraft, ", "))
	fmt.Fprintf(b, "Cabin: %s\n", cabin)
	fmt.Fprintf(b, "Baggage: Checked: %d, Cabin: %d\n", checked, cabinBags)
	b.WriteString(" ## Itinerary:\n")
	for _, line := range timeline {
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func segmentLine(seg Segment, flight string) string {
	var b strings.Builder
	b.WriteString(orNA(seg.Departure.IataCode))
	if seg.Departure.Terminal != "" {
		fmt.Fprintf(&b, " (T%s)", seg.Departure.Terminal)
	}
	fmt.Fprintf(&b, " %s -> %s", formatSegmentTime(seg.Departure.At), orNA(seg.Arrival.IataCode))
	if seg.Arrival.Terminal != "" {
		fmt.Fprintf(&b, " (T%s)", seg.Arrival.Terminal)
	}
	fmt.Fprintf(&b, " %s | %s | %s", formatSegmentTime(seg.Arrival.At), flight, ParseISODuration(seg.Duration))
	return b.String()
}
