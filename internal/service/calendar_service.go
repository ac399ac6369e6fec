package service

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/peach-brawl/internal/dto"
	"github.com/noah-isme/peach-brawl/internal/models"
	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
	"github.com/noah-isme/peach-brawl/pkg/export"
)

// Export formats accepted by CalendarService.Export.
const (
	ExportCSV = "csv"
	ExportPDF = "pdf"
)

var calendarHeaders = []string{"Day", "Due", "Course", "Assignment"}

// CalendarExport is a rendered calendar file.
type CalendarExport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// CalendarService groups assignments into Monday-based weeks.
type CalendarService struct {
	dates     *DueDateFormatter
	validator *validator.Validate
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
}

// NewCalendarService constructs a calendar service.
func NewCalendarService(dates *DueDateFormatter) *CalendarService {
	if dates == nil {
		dates, _ = NewDueDateFormatter("UTC", DefaultDateLayout)
	}
	return &CalendarService{
		dates:     dates,
		validator: validator.New(),
		csv:       export.NewCSVExporter("Week"),
		pdf:       export.NewPDFExporter(),
	}
}

type datedAssignment struct {
	due    time.Time
	record models.AssignmentRecord
}

// Weeks sorts assignments by due date and groups them into weeks. Every week lists all seven
// days, empty ones included.
func (s *CalendarService) Weeks(list []models.AssignmentRecord) models.CalendarView {
	view := models.CalendarView{Weeks: []models.CalendarWeek{}}
	dated := make([]datedAssignment, 0, len(list))
	for _, record := range list {
		due, ok := s.dates.Parse(record.DueDate)
		if !ok {
			view.Undated = append(view.Undated, record)
			continue
		}
		dated = append(dated, datedAssignment{due: due, record: record})
	}
	sort.SliceStable(dated, func(i, j int) bool { return dated[i].due.Before(dated[j].due) })

	for _, item := range dated {
		start := weekStart(item.due)
		if n := len(view.Weeks); n == 0 || !view.Weeks[n-1].Start.Equal(start) {
			view.Weeks = append(view.Weeks, newWeek(start))
		}
		week := &view.Weeks[len(view.Weeks)-1]
		day := &week.Days[daysSinceMonday(item.due)]
		day.Assignments = append(day.Assignments, item.record)
	}
	return view
}

// WriteText prints the calendar in the plain week-by-week layout used by the CLI.
func (s *CalendarService) WriteText(w io.Writer, view models.CalendarView) error {
	var b strings.Builder
	for _, week := range view.Weeks {
		fmt.Fprintf(&b, "\nWeek of %s\n", week.Start.Format("January 02, 2006"))
		b.WriteString(strings.Repeat("-", 50))
		b.WriteString("\n")
		for _, day := range week.Days {
			fmt.Fprintf(&b, "\n%s:\n", day.Weekday)
			if len(day.Assignments) == 0 {
				b.WriteString("  No assignments\n")
				continue
			}
			for _, a := range day.Assignments {
				fmt.Fprintf(&b, "  - %s (%s)\n", a.Name, a.Course)
			}
		}
		b.WriteString("\n")
	}
	if len(view.Undated) > 0 {
		b.WriteString("\nUndated\n")
		b.WriteString(strings.Repeat("-", 50))
		b.WriteString("\n")
		for _, a := range view.Undated {
			fmt.Fprintf(&b, "  - %s (%s) due %q\n", a.Name, a.Course, a.DueDate)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Export renders the calendar as CSV or PDF.
func (s *CalendarService) Export(view models.CalendarView, format string) (*CalendarExport, error) {
	query := dto.CalendarExportQuery{Format: strings.ToLower(strings.TrimSpace(format))}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	doc := s.document(view)
	switch query.Format {
	case ExportCSV:
		body, err := s.csv.Render(doc)
		if err != nil {
			return nil, err
		}
		return &CalendarExport{Filename: "assignments.csv", ContentType: "text/csv; charset=utf-8", Body: body}, nil
	case ExportPDF:
		body, err := s.pdf.Render(doc)
		if err != nil {
			return nil, err
		}
		return &CalendarExport{Filename: "assignments.pdf", ContentType: "application/pdf", Body: body}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *CalendarService) document(view models.CalendarView) export.Document {
	doc := export.Document{Title: "Upcoming assignments"}
	for _, week := range view.Weeks {
		section := export.Section{
			Title: "Week of " + week.Start.Format("January 2, 2006"),
			Data:  export.Dataset{Headers: calendarHeaders},
		}
		for _, day := range week.Days {
			for _, a := range day.Assignments {
				due, _ := s.dates.Parse(a.DueDate)
				section.Data.Rows = append(section.Data.Rows, map[string]string{
					"Day":        day.Date.Format("Monday, Jan 2"),
					"Due":        due.Format("03:04 PM"),
					"Course":     a.Course,
					"Assignment": a.Name,
				})
			}
		}
		doc.Sections = append(doc.Sections, section)
	}
	if len(view.Undated) > 0 {
		section := export.Section{Title: "Undated", Data: export.Dataset{Headers: calendarHeaders}}
		for _, a := range view.Undated {
			section.Data.Rows = append(section.Data.Rows, map[string]string{"Due": a.DueDate, "Course": a.Course, "Assignment": a.Name})
		}
		doc.Sections = append(doc.Sections, section)
	}
	if len(doc.Sections) == 0 {
		// exporters need headers even for an empty calendar
		doc.Sections = append(doc.Sections, export.Section{Data: export.Dataset{Headers: calendarHeaders}})
	}
	return doc
}

func daysSinceMonday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func weekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d-daysSinceMonday(t), 0, 0, 0, 0, t.Location())
}

func newWeek(start time.Time) models.CalendarWeek {
	week := models.CalendarWeek{Start: start, Days: make([]models.CalendarDay, 7)}
	for i := range week.Days {
		date := start.AddDate(0, 0, i)
		week.Days[i] = models.CalendarDay{Date: date, Weekday: date.Weekday().String(), Assignments: []models.AssignmentRecord{}}
	}
	return week
}
