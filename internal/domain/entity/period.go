package entity

import (
	"fmt"
	"time"
)

// ReportingPeriod identifica a safra mensal (ano, mês) de um arquivo publicado.
// The zero value is not a valid period; build one with NewReportingPeriod,
// PeriodFromTime or ParsePeriod.
type ReportingPeriod struct {
	year  int
	month int
}

// NewReportingPeriod validates month and returns the period.
func NewReportingPeriod(year, month int) (ReportingPeriod, error) {
	if month < 1 || month > 12 {
		return ReportingPeriod{}, fmt.Errorf("invalid month %d: must be between 1 and 12", month)
	}
	if year < 1 {
		return ReportingPeriod{}, fmt.Errorf("invalid year %d", year)
	}
	return ReportingPeriod{year: year, month: month}, nil
}

// PeriodFromTime returns the period containing t.
func PeriodFromTime(t time.Time) ReportingPeriod {
	return ReportingPeriod{year: t.Year(), month: int(t.Month())}
}

// ParsePeriod aceita "YYYY-MM" ou "YYYYMM".
func ParsePeriod(value string) (ReportingPeriod, error) {
	for _, layout := range []string{"2006-01", "200601"} {
		if t, err := time.Parse(layout, value); err == nil {
			return PeriodFromTime(t), nil
		}
	}
	return ReportingPeriod{}, fmt.Errorf("invalid period %q: expected YYYY-MM", value)
}

func (p ReportingPeriod) Year() int  { return p.year }
func (p ReportingPeriod) Month() int { return p.month }

// IsZero reports whether p was never initialised.
func (p ReportingPeriod) IsZero() bool { return p.month == 0 }

// MonthsAgo subtracts n months from p, rolling the year back across January.
// Negative n moves forward.
func (p ReportingPeriod) MonthsAgo(n int) ReportingPeriod {
	total := p.year*12 + (p.month - 1) - n
	year := total / 12
	month := total % 12
	if month < 0 {
		month += 12
		year--
	}
	return ReportingPeriod{year: year, month: month + 1}
}

// Compact retorna o período no formato YYYYMM usado nos nomes de arquivo.
func (p ReportingPeriod) Compact() string {
	return fmt.Sprintf("%04d%02d", p.year, p.month)
}

// Label formats the period as MM/YYYY for console output.
func (p ReportingPeriod) Label() string {
	return fmt.Sprintf("%02d/%04d", p.month, p.year)
}

func (p ReportingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.year, p.month)
}

// MarshalText keeps JSON reports readable.
func (p ReportingPeriod) MarshalText() ([]byte, error) {
	if p.IsZero() {
		return []byte(""), nil
	}
	return []byte(p.String()), nil
}
