package valuation

import "fmt"

// ConfigurationError reports an input that cannot describe a bond.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// ScheduleError reports a period grid that cannot be amortized.
type ScheduleError struct {
	Period int
	Reason string
}

func (e *ScheduleError) Error() string {
	if e.Period > 0 {
		return fmt.Sprintf("schedule error: period %d: %s", e.Period, e.Reason)
	}
	return fmt.Sprintf("schedule error: %s", e.Reason)
}

func configErr(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func scheduleErr(period int, format string, args ...any) error {
	return &ScheduleError{Period: period, Reason: fmt.Sprintf(format, args...)}
}
