//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

package etl

import (
	"time"

	"github.com/inkwave-data/inkwave-warehouse/internal/warehouse"
)

// TimeKeyFor returns the smart key YYYYMMDD for a calendar date.
func TimeKeyFor(date time.Time) int64 {
	return int64(date.Year())*10000 + int64(date.Month())*100 + int64(date.Day())
}

// isHoliday covers the fixed-date holidays the business closes for.
// Movable feasts are out; the flag exists for reporting, not payroll.
func isHoliday(date time.Time) bool {
	switch {
	case date.Month() == time.January && date.Day() == 1:
		return true
	case date.Month() == time.December && date.Day() == 25:
		return true
	case date.Month() == time.December && date.Day() == 26:
		return true
	}
	return false
}

// GenerateCalendar builds one time dimension row per day from start to end
// inclusive. Pure function; the caller persists the rows.
func GenerateCalendar(start, end time.Time) []warehouse.TimeDimRow {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var rows []warehouse.TimeDimRow
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		weekday := d.Weekday()
		_, week := d.ISOWeek()
		rows = append(rows, warehouse.TimeDimRow{
			TimeKey:      TimeKeyFor(d),
			CalendarDate: d,
			DayOfWeek:    int(weekday),
			DayName:      weekday.String(),
			DayOfMonth:   d.Day(),
			Month:        int(d.Month()),
			MonthName:    d.Month().String(),
			Quarter:      (int(d.Month())-1)/3 + 1,
			Year:         d.Year(),
			WeekOfYear:   week,
			IsWeekend:    weekday == time.Saturday || weekday == time.Sunday,
			IsHoliday:    isHoliday(d),
		})
	}
	return rows
}
