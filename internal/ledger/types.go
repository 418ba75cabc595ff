package ledger

import (
	"sort"
	"strings"
	"time"
)

// Record is one (specification, month) observation of the canonical
// long-format revenue table.
type Record struct {
	Specification string    `json:"specification"`
	MonthYear     time.Time `json:"month_year"`
	Year          int       `json:"year"`
	Value         float64   `json:"value"`
}

// Table is the canonical long-format revenue series: the concatenation of
// every normalized source file, in file order then in-file emission order.
// Load never re-sorts globally; callers needing chronological order should
// use SortByDate on their own copy.
type Table []Record

// SeriesPoint is a (date, value) projection of a Record, the shape the
// forecasting subsystem consumes.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// FilterSpecification returns the records whose specification matches,
// ignoring case, preserving table order.
func (t Table) FilterSpecification(spec string) Table {
	var out Table
	for _, r := range t {
		if strings.EqualFold(r.Specification, spec) {
			out = append(out, r)
		}
	}
	return out
}

// FilterYears returns the records whose year falls within [from, to].
func (t Table) FilterYears(from, to int) Table {
	var out Table
	for _, r := range t {
		if r.Year >= from && r.Year <= to {
			out = append(out, r)
		}
	}
	return out
}

// Specifications returns the distinct specification labels, sorted.
func (t Table) Specifications() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t {
		if _, ok := seen[r.Specification]; !ok {
			seen[r.Specification] = struct{}{}
			out = append(out, r.Specification)
		}
	}
	sort.Strings(out)
	return out
}

// YearRange returns the smallest and largest source years in the table.
// ok is false for an empty table.
func (t Table) YearRange() (min, max int, ok bool) {
	if len(t) == 0 {
		return 0, 0, false
	}
	min, max = t[0].Year, t[0].Year
	for _, r := range t[1:] {
		if r.Year < min {
			min = r.Year
		}
		if r.Year > max {
			max = r.Year
		}
	}
	return min, max, true
}

// YearTotal is an annual aggregate of the table.
type YearTotal struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// MonthTotal is a monthly aggregate of the table.
type MonthTotal struct {
	MonthYear time.Time `json:"month_year"`
	Value     float64   `json:"value"`
}

// SumByYear sums record values per source year, returned in ascending year
// order.
func (t Table) SumByYear() []YearTotal {
	sums := make(map[int]float64)
	for _, r := range t {
		sums[r.Year] += r.Value
	}
	out := make([]YearTotal, 0, len(sums))
	for y, v := range sums {
		out = append(out, YearTotal{Year: y, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// SumByMonth sums record values per month, returned in chronological order.
func (t Table) SumByMonth() []MonthTotal {
	sums := make(map[time.Time]float64)
	for _, r := range t {
		sums[r.MonthYear] += r.Value
	}
	out := make([]MonthTotal, 0, len(sums))
	for d, v := range sums {
		out = append(out, MonthTotal{MonthYear: d, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthYear.Before(out[j].MonthYear) })
	return out
}

// Series projects the table to (date, value) pairs, preserving order.
func (t Table) Series() []SeriesPoint {
	out := make([]SeriesPoint, len(t))
	for i, r := range t {
		out[i] = SeriesPoint{Date: r.MonthYear, Value: r.Value}
	}
	return out
}

// SortByDate sorts the table chronologically in place and returns it.
func (t Table) SortByDate() Table {
	sort.SliceStable(t, func(i, j int) bool { return t[i].MonthYear.Before(t[j].MonthYear) })
	return t
}
