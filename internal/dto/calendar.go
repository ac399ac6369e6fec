package dto

// CalendarExportQuery carries the query string of the calendar export endpoint. Binding only
// checks presence; the format is normalised before the oneof check.
type CalendarExportQuery struct {
	Format string `form:"format" binding:"required" validate:"required,oneof=csv pdf"`
}
