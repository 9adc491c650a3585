package valuation

import (
	"fmt"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

// DayCountConvention maps a frequency to its length in days.
type DayCountConvention struct {
	Name string
	days map[models.Frequency]int
}

var (
	// GermanDayCount is the 30-day month table.
	GermanDayCount = DayCountConvention{
		Name: "german",
		days: map[models.Frequency]int{
			models.Daily:      1,
			models.Monthly:    30,
			models.Bimonthly:  60,
			models.Quarterly:  90,
			models.SemiAnnual: 180,
			models.Annual:     360,
		},
	}

	// FrenchDayCount treats the quarterly frequency as a 120 day (four month) period.
	FrenchDayCount = DayCountConvention{
		Name: "french",
		days: map[models.Frequency]int{
			models.Daily:      1,
			models.Monthly:    30,
			models.Bimonthly:  60,
			models.Quarterly:  120,
			models.SemiAnnual: 180,
			models.Annual:     360,
		},
	}
)

// Days returns the number of days of one period at frequency f.
func (c DayCountConvention) Days(f models.Frequency) (int, error) {
	d, ok := c.days[f]
	if !ok {
		return 0, fmt.Errorf("%s day count has no entry for frequency %q", c.Name, f)
	}
	return d, nil
}
