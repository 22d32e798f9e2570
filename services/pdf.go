package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ItinerarySheet is what the printable itinerary shows.
type ItinerarySheet struct {
	ID          string
	Traveler    string
	Destination string
	Date        time.Time
	Budget      float64
	Preferences PreferenceSet
	CreatedAt   time.Time
}

// GenerateItineraryPDF renders the itinerary to PDF bytes.
func GenerateItineraryPDF(data ItinerarySheet) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	// Core fonts are cp1252; destinations often carry accents.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(18, 52, 86)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "TravelleroTralala", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(255, 196, 87)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, tr("Votre itinéraire de voyage"), "", 1, "L", false, 0, "")

	pdf.SetY(38)
	pdf.SetTextColor(0, 0, 0)

	sectionHeader := func(title string) {
		pdf.SetFillColor(18, 52, 86)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+tr(title), "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, tr(value), "", 1, "L", false, 0, "")
	}

	sectionHeader("Voyageur")
	traveler := data.Traveler
	if traveler == "" {
		traveler = "Voyageur invité"
	}
	row("Nom", traveler)
	row("Référence", data.ID)
	row("Créé le", data.CreatedAt.UTC().Format("02 Jan 2006, 15:04 UTC"))
	pdf.Ln(4)

	sectionHeader("Voyage")
	row("Destination", data.Destination)
	row("Date de départ", data.Date.Format("02 Jan 2006 (Mon)"))
	row("Budget", fmt.Sprintf("%.0f €", data.Budget))
	row("Préférences", formatPreferences(data.Preferences))
	pdf.Ln(4)

	pdf.SetY(-22)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.3)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 8, tr("Généré par TravelleroTralala · Ceci n'est pas une confirmation de réservation"),
		"", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func formatPreferences(p PreferenceSet) string {
	if len(p) == 0 {
		return "Aucune"
	}
	names := make([]string, len(p))
	for i, name := range p {
		names[i] = strings.ToUpper(name[:1]) + name[1:]
	}
	return strings.Join(names, ", ")
}
