package shared

import (
	"strings"
	"time"
)

// Period identifies one payroll deduction cycle. The label is the human form
// used on ledger rows and failure notes ("MAY 2026"); Date is its parsed
// first-of-month instant used for month arithmetic.
type Period struct {
	Label string
	Date  time.Time
}

// ParsePeriod parses a period label of the form "MAY 2026" (any case,
// surrounding whitespace ignored). The canonical label is upper-cased.
func ParsePeriod(label string) (Period, error) {
	trimmed := strings.Join(strings.Fields(label), " ")
	if trimmed == "" {
		return Period{}, ErrInvalidPeriod
	}

	date, err := time.Parse("January 2006", titleCase(trimmed))
	if err != nil {
		return Period{}, ErrInvalidPeriod
	}

	return Period{
		Label: strings.ToUpper(trimmed),
		Date:  date,
	}, nil
}

// CurrentPeriod returns the period containing the given instant.
func CurrentPeriod(t time.Time) Period {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Label: strings.ToUpper(first.Format("January 2006")),
		Date:  first,
	}
}

// MonthsSince returns the number of whole months from start's month to the
// period's month. A loan disbursed in April has MonthsSince == 1 for MAY.
func (p Period) MonthsSince(start time.Time) int {
	return (p.Date.Year()-start.Year())*12 + int(p.Date.Month()) - int(start.Month())
}

func titleCase(s string) string {
	parts := strings.Fields(strings.ToLower(s))
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
