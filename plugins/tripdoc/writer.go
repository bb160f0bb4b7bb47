// Package tripdoc lays a planned trip out as a printable PDF summary.
package tripdoc

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/phpdave11/gofpdf"
	"github.com/va6996/travelingman-mcp/log"
)

// TripDocument holds the free-text parts of a trip summary. Fields may be
// percent-encoded.
type TripDocument struct {
	OrigCity       string
	OrigDate       string
	DestCities     string
	DestDates      string
	Flight         string
	Hotels         string
	Itinerary      string
	LocalTransport string
	CityTransport  string
	Adults         int
	Children       int
	Infants        int
}

// Writer stores trip summaries as OutputDir/FileName.
type Writer struct {
	OutputDir string
	FileName  string
}

func NewWriter(outputDir, fileName string) *Writer {
	if outputDir == "" {
		outputDir = "output"
	}
	if fileName == "" {
		fileName = "trip_summary.pdf"
	}
	return &Writer{OutputDir: outputDir, FileName: fileName}
}

// Write renders doc and returns the bare file name it was stored under.
func (w *Writer) Write(ctx context.Context, doc TripDocument) (string, error) {
	if err := os.MkdirAll(w.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(w.OutputDir, w.FileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := Render(doc, f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	log.Infof(ctx, "Wrote trip summary to %s", path)
	return w.FileName, nil
}

// Render writes doc as a single A4 PDF to out.
func Render(doc TripDocument, out io.Writer) error {
	if err := layout(doc).Output(out); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func layout(doc TripDocument) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Your Travel Summary", false)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, "Your Travel Summary", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	section := func(heading, body string) {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, heading, "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 12)
		pdf.MultiCell(0, 8, tr(body), "", "", false)
		pdf.Ln(5)
	}

	section("Travelers", fmt.Sprintf("Adults: %d\nChildren: %d\nInfants: %d", doc.Adults, doc.Children, doc.Infants))
	section("Origin", fmt.Sprintf("City: %s\nDate: %s", clean(doc.OrigCity), clean(doc.OrigDate)))
	section("Destinations", fmt.Sprintf("Cities: %s\nDates: %s", clean(doc.DestCities), clean(doc.DestDates)))
	section("Transport", fmt.Sprintf("Local: %s\nBetween cities: %s", clean(doc.LocalTransport), clean(doc.CityTransport)))
	section("Flight Details", clean(doc.Flight))
	section("Hotel Choices", clean(doc.Hotels))
	section("Itinerary", clean(doc.Itinerary))
	return pdf
}
