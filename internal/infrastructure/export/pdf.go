package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

const cjkFont = "cjk"

// ItineraryPDF renders trip itineraries with gofpdf.
// Chinese text needs a TrueType font with CJK glyphs; without one the core
// Helvetica font is used and characters outside cp1252 print as dots.
type ItineraryPDF struct {
	fontPath string
	logger   *zap.Logger
}

// NewItineraryPDF creates a PDF exporter. fontPath may be empty.
func NewItineraryPDF(fontPath string, logger *zap.Logger) *ItineraryPDF {
	return &ItineraryPDF{fontPath: fontPath, logger: logger}
}

// ExportItinerary renders the trip summary followed by one section per day
func (p *ItineraryPDF) ExportItinerary(trip *entity.Trip, currency string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(trip.Title, true)
	pdf.SetAutoPageBreak(true, 15)

	family := "Helvetica"
	text := pdf.UnicodeTranslatorFromDescriptor("")
	if p.fontPath != "" {
		pdf.AddUTF8Font(cjkFont, "", p.fontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("failed to load font %s: %w", p.fontPath, err)
		}
		family = cjkFont
		text = func(s string) string { return s }
	}
	// the UTF-8 font is registered without a bold variant
	bold := "B"
	if family == cjkFont {
		bold = ""
	}

	pdf.AddPage()

	pdf.SetFont(family, bold, 18)
	pdf.MultiCell(0, 10, text(trip.Title), "", "", false)
	pdf.Ln(2)

	pdf.SetFont(family, "", 11)
	lines := []string{
		"目的地: " + trip.Destination,
		fmt.Sprintf("天数: %d    人数: %d", trip.DurationDays, trip.TravelerCount),
		fmt.Sprintf("预算: %s %s", trip.Budget.StringFixed(2), currency),
	}
	if trip.StartDate != nil {
		lines = append(lines, "出发日期: "+trip.StartDate.Format("2006-01-02"))
	}
	if len(trip.Preferences) > 0 {
		lines = append(lines, "偏好: "+strings.Join(trip.Preferences, "、"))
	}
	if trip.SpecialRequirements != "" {
		lines = append(lines, "特殊需求: "+trip.SpecialRequirements)
	}
	for _, line := range lines {
		pdf.MultiCell(0, 7, text(line), "", "", false)
	}

	if len(trip.BudgetBreakdown) > 0 {
		pdf.Ln(4)
		pdf.SetFont(family, bold, 13)
		pdf.Cell(0, 8, text("预算分配"))
		pdf.Ln(9)
		pdf.SetFont(family, "", 11)
		for _, c := range entity.AllCategories {
			amount, ok := trip.BudgetBreakdown[c]
			if !ok {
				continue
			}
			pdf.Cell(0, 7, text(fmt.Sprintf("%s: %s %s", c.Label(), amount.StringFixed(2), currency)))
			pdf.Ln(7)
		}
	}

	for _, day := range trip.DailyPlans {
		pdf.Ln(4)
		pdf.SetFont(family, bold, 13)
		heading := fmt.Sprintf("第%d天", day.DayNumber)
		if day.Date != nil {
			heading += " " + day.Date.Format("01-02")
		}
		if day.Title != "" {
			heading += " " + day.Title
		}
		pdf.MultiCell(0, 8, text(heading), "B", "", false)
		pdf.Ln(1)

		pdf.SetFont(family, "", 11)
		if len(day.Activities) == 0 {
			pdf.MultiCell(0, 6, text("(待安排)"), "", "", false)
			continue
		}
		for _, a := range day.Activities {
			pdf.MultiCell(0, 6, text(activityLine(a, currency)), "", "", false)
			if a.Description != "" {
				pdf.SetX(pdf.GetX() + 8)
				pdf.MultiCell(0, 6, text(a.Description), "", "", false)
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	p.logger.Info("Itinerary PDF generated",
		zap.Int64("trip_id", trip.ID),
		zap.Int("days", len(trip.DailyPlans)),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func activityLine(a entity.Activity, currency string) string {
	var b strings.Builder
	if a.Time != "" {
		b.WriteString(a.Time)
		b.WriteString("  ")
	}
	b.WriteString(a.Name)
	if a.Location != "" && a.Location != a.Name {
		b.WriteString(" @ ")
		b.WriteString(a.Location)
	}
	if a.EstimatedCost.IsPositive() {
		fmt.Fprintf(&b, "  (%s %s)", a.EstimatedCost.StringFixed(0), currency)
	}
	return b.String()
}

// Verify interface compliance
var _ port.ItineraryExporter = (*ItineraryPDF)(nil)
