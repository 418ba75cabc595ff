package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// PayrollRecord is one month of the municipal payroll ledger. Monetary
// fields are NaN where the source cell was absent or unparseable; months
// missing from the transparency portal arrive that way.
type PayrollRecord struct {
	Year             int       `json:"year"`
	Month            int       `json:"month"`
	MonthYear        time.Time `json:"month_year"`
	BasicSalary      float64   `json:"basic_salary"`
	OtherBenefits    float64   `json:"other_benefits"`
	Vacation         float64   `json:"vacation"`
	ThirteenthSalary float64   `json:"thirteenth_salary"`
	TotalBenefits    float64   `json:"total_benefits"`
	PensionDeduction float64   `json:"pension_deduction"`
	IncomeTax        float64   `json:"income_tax"`
	OtherDeductions  float64   `json:"other_deductions"`
	NetTotal         float64   `json:"net_total"`
}

// MarshalJSON renders missing (NaN) monetary fields as null.
func (r PayrollRecord) MarshalJSON() ([]byte, error) {
	nullable := func(v float64) *float64 {
		if math.IsNaN(v) {
			return nil
		}
		return &v
	}
	return json.Marshal(struct {
		Year             int       `json:"year"`
		Month            int       `json:"month"`
		MonthYear        time.Time `json:"month_year"`
		BasicSalary      *float64  `json:"basic_salary"`
		OtherBenefits    *float64  `json:"other_benefits"`
		Vacation         *float64  `json:"vacation"`
		ThirteenthSalary *float64  `json:"thirteenth_salary"`
		TotalBenefits    *float64  `json:"total_benefits"`
		PensionDeduction *float64  `json:"pension_deduction"`
		IncomeTax        *float64  `json:"income_tax"`
		OtherDeductions  *float64  `json:"other_deductions"`
		NetTotal         *float64  `json:"net_total"`
	}{
		Year:             r.Year,
		Month:            r.Month,
		MonthYear:        r.MonthYear,
		BasicSalary:      nullable(r.BasicSalary),
		OtherBenefits:    nullable(r.OtherBenefits),
		Vacation:         nullable(r.Vacation),
		ThirteenthSalary: nullable(r.ThirteenthSalary),
		TotalBenefits:    nullable(r.TotalBenefits),
		PensionDeduction: nullable(r.PensionDeduction),
		IncomeTax:        nullable(r.IncomeTax),
		OtherDeductions:  nullable(r.OtherDeductions),
		NetTotal:         nullable(r.NetTotal),
	})
}

// PayrollTable is the loaded payroll ledger, in source row order.
type PayrollTable []PayrollRecord

// payrollColumns maps source workbook headers to record fields.
var payrollColumns = map[string]func(*PayrollRecord, float64){
	"Vencimento Básico":    func(r *PayrollRecord, v float64) { r.BasicSalary = v },
	"Outras Vantagens":     func(r *PayrollRecord, v float64) { r.OtherBenefits = v },
	"Férias":               func(r *PayrollRecord, v float64) { r.Vacation = v },
	"Décimo Terceiro":      func(r *PayrollRecord, v float64) { r.ThirteenthSalary = v },
	"total vantagens":      func(r *PayrollRecord, v float64) { r.TotalBenefits = v },
	"Desconto Previdência": func(r *PayrollRecord, v float64) { r.PensionDeduction = v },
	"Desconto IR":          func(r *PayrollRecord, v float64) { r.IncomeTax = v },
	"Outros Descontos":     func(r *PayrollRecord, v float64) { r.OtherDeductions = v },
	"Total Líquido":        func(r *PayrollRecord, v float64) { r.NetTotal = v },
}

// LoadPayroll reads the single wide payroll workbook. Unlike the revenue
// ledger the payroll file is already long-formatted (one row per month), so
// loading is column coercion plus the month/year composition.
func LoadPayroll(path string, logger *slog.Logger) (PayrollTable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q in %s: %w", sheet, path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDataset)
	}

	headerIdx := make(map[string]int)
	for i, h := range rows[0] {
		headerIdx[strings.TrimSpace(h)] = i
	}
	yearIdx, okYear := headerIdx["Ano"]
	monthIdx, okMonth := headerIdx["Mês"]
	if !okYear || !okMonth {
		return nil, fmt.Errorf("%s: missing Ano/Mês columns", path)
	}

	var table PayrollTable
	for i, row := range rows[1:] {
		sheetRow := i + 2

		year, okY := intCell(row, yearIdx)
		month, okM := intCell(row, monthIdx)
		if !okY || !okM || month < 1 || month > 12 {
			logger.Warn("skipping payroll row without a valid month/year",
				slog.String("file", filepath.Base(path)),
				slog.Int("row", sheetRow))
			continue
		}

		rec := PayrollRecord{
			Year:      year,
			Month:     month,
			MonthYear: time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
		}
		for header, set := range payrollColumns {
			idx, ok := headerIdx[header]
			if !ok {
				set(&rec, math.NaN())
				continue
			}
			set(&rec, coerceFloat(f, sheet, row, idx, sheetRow))
		}
		table = append(table, rec)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDataset)
	}

	logger.Debug("loaded payroll workbook",
		slog.String("file", filepath.Base(path)),
		slog.Int("months", len(table)))

	return table, nil
}

// MissingMonths counts months whose total-benefits cell is absent in the
// source, which the portal publishes as gaps.
func (t PayrollTable) MissingMonths() int {
	n := 0
	for _, r := range t {
		if math.IsNaN(r.TotalBenefits) {
			n++
		}
	}
	return n
}

// SumBenefitsByYear sums total benefits per year, skipping missing months.
func (t PayrollTable) SumBenefitsByYear() []YearTotal {
	sums := make(map[int]float64)
	for _, r := range t {
		if math.IsNaN(r.TotalBenefits) {
			continue
		}
		sums[r.Year] += r.TotalBenefits
	}
	out := make([]YearTotal, 0, len(sums))
	for y, v := range sums {
		out = append(out, YearTotal{Year: y, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func intCell(row []string, idx int) (int, bool) {
	if idx >= len(row) {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(row[idx]))
	if err != nil {
		return 0, false
	}
	return v, true
}

// coerceFloat converts a payroll cell leniently: numeric cells cast
// directly, strings go through the locale punctuation rules, and anything
// else coerces to NaN.
func coerceFloat(f *excelize.File, sheet string, row []string, idx, sheetRow int) float64 {
	if idx >= len(row) {
		return math.NaN()
	}
	cell := strings.TrimSpace(row[idx])
	if cell == "" {
		return math.NaN()
	}

	ref, err := excelize.CoordinatesToCellName(idx+1, sheetRow)
	if err != nil {
		return math.NaN()
	}
	cellType, err := f.GetCellType(sheet, ref)
	// Plain numeric cells carry no type attribute and report as unset.
	if err == nil && (cellType == excelize.CellTypeNumber || cellType == excelize.CellTypeUnset) {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64); err == nil {
			return v
		}
		return math.NaN()
	}

	v, err := strconv.ParseFloat(normalizePunctuation(cell), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
