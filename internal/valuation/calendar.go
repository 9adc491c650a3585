package valuation

import (
	"fmt"
	"time"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

var monthsPerPeriod = map[models.Frequency]int{
	models.Monthly:    1,
	models.Bimonthly:  2,
	models.Quarterly:  3,
	models.SemiAnnual: 6,
	models.Annual:     12,
}

// PaymentDates returns totalPeriods+1 dates. Index 0 is the emission date and
// index i is the emission date moved i periods forward. Every date is derived
// from the emission date, so month-end clamping never accumulates.
func PaymentDates(emission time.Time, totalPeriods int, freq models.Frequency) ([]time.Time, error) {
	if totalPeriods < 0 {
		return nil, fmt.Errorf("PaymentDates: negative period count %d", totalPeriods)
	}
	step, monthly := monthsPerPeriod[freq]
	if !monthly && freq != models.Daily {
		return nil, fmt.Errorf("PaymentDates: unknown frequency %q", freq)
	}

	dates := make([]time.Time, totalPeriods+1)
	dates[0] = emission
	for i := 1; i <= totalPeriods; i++ {
		if monthly {
			dates[i] = addMonths(emission, i*step)
		} else {
			dates[i] = emission.AddDate(0, 0, i)
		}
	}
	return dates, nil
}

// addMonths behaves like Excel's EDATE: the day is clamped to the last day
// of the target month instead of overflowing into the next one.
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
