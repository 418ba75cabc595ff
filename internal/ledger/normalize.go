package ledger

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DefaultLabelColumn is the header of the specification-label column as
// published by the transparency portal.
const DefaultLabelColumn = "ESPECIFICAÇÃO"

// monthHeaderPattern matches MM/YYYY month column headers. Headers that
// contain a slash but fail this pattern are trailing annotations, not data.
var monthHeaderPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{4}$`)

// excludedColumns are non-data columns dropped when present. Absence is not
// an error.
var excludedColumns = map[string]struct{}{
	"TOTAL":    {},
	"Previsão": {},
}

// Normalizer reshapes one wide-format revenue workbook into long-format
// records.
type Normalizer struct {
	mode        Mode
	labelColumn string
	logger      *slog.Logger
}

// NewNormalizer creates a normalizer for the given parsing mode.
func NewNormalizer(mode Mode, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		mode:        mode,
		labelColumn: DefaultLabelColumn,
		logger:      logger,
	}
}

// YearFromFilename extracts the declared year from a <prefix>-<YYYY>.<ext>
// filename. The file's declared year is authoritative for every record it
// yields, even where a month header implies otherwise.
func YearFromFilename(path string) (int, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.SplitN(stem, "-", 2)
	if len(parts) != 2 {
		return 0, &FilenameError{Path: path, Reason: "missing year segment"}
	}
	if len(parts[1]) != 4 {
		return 0, &FilenameError{Path: path, Reason: "year segment is not a 4-digit integer"}
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, &FilenameError{Path: path, Reason: "year segment is not a 4-digit integer"}
	}
	return year, nil
}

type monthColumn struct {
	index  int
	header string
	date   time.Time
}

// Normalize loads one workbook and emits its long-format records: one per
// (specification row, month column) pair, tagged with the file's year.
// Emission order follows the wide-to-long reshape, month column outer, data
// row inner.
func (n *Normalizer) Normalize(path string) ([]Record, error) {
	year, err := YearFromFilename(path)
	if err != nil {
		return nil, err
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

	labelIdx := -1
	var months []monthColumn
	for i, header := range rows[0] {
		h := strings.TrimSpace(header)
		if _, excluded := excludedColumns[h]; excluded {
			continue
		}
		if h == n.labelColumn {
			labelIdx = i
			continue
		}
		if !strings.Contains(h, "/") {
			continue
		}
		if !monthHeaderPattern.MatchString(h) {
			n.logger.Warn("skipping malformed month header",
				slog.String("file", filepath.Base(path)),
				slog.String("header", h))
			continue
		}
		date, err := time.Parse("01/2006", h)
		if err != nil {
			n.logger.Warn("skipping unparseable month header",
				slog.String("file", filepath.Base(path)),
				slog.String("header", h))
			continue
		}
		months = append(months, monthColumn{index: i, header: h, date: date})
	}
	if labelIdx == -1 {
		return nil, fmt.Errorf("%s: %w", path, ErrLabelColumnMissing)
	}

	// Column exclusion happens before the empty-row filter, so emptiness
	// is judged over the label column and the recognized month columns
	// only. A row whose sole content sits in TOTAL or an annotation column
	// carries no data.
	dataColumns := map[int]struct{}{labelIdx: {}}
	for _, mc := range months {
		dataColumns[mc.index] = struct{}{}
	}

	// Data rows, minus the entirely empty ones. Sheet row numbers are kept
	// for cell-type lookups and error reporting.
	type dataRow struct {
		sheetRow int
		label    string
		cells    []string
	}
	var dataRows []dataRow
	for i, row := range rows[1:] {
		empty := true
		for idx := range dataColumns {
			if idx < len(row) && strings.TrimSpace(row[idx]) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		label := ""
		if labelIdx < len(row) {
			label = strings.TrimSpace(row[labelIdx])
		}
		dataRows = append(dataRows, dataRow{sheetRow: i + 2, label: label, cells: row})
	}
	if len(dataRows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDataset)
	}

	records := make([]Record, 0, len(dataRows)*len(months))
	for _, mc := range months {
		for _, dr := range dataRows {
			cell := ""
			if mc.index < len(dr.cells) {
				cell = dr.cells[mc.index]
			}

			value, err := n.parseCell(f, sheet, path, mc, dr.sheetRow, cell)
			if err != nil {
				return nil, err
			}

			records = append(records, Record{
				// Re-trimmed after reshape; categorical round-trips can
				// reintroduce padding.
				Specification: strings.TrimSpace(dr.label),
				MonthYear:     mc.date,
				Year:          year,
				Value:         value,
			})
		}
	}

	n.logger.Debug("normalized revenue file",
		slog.String("file", filepath.Base(path)),
		slog.Int("year", year),
		slog.Int("month_columns", len(months)),
		slog.Int("rows", len(dataRows)),
		slog.Int("records", len(records)))

	return records, nil
}

// parseCell converts one value cell according to the configured mode.
// Numeric cells cast directly; string cells go through the punctuation
// parser. Hinted mode never fails, coercing unparseable cells to zero.
func (n *Normalizer) parseCell(f *excelize.File, sheet, path string, mc monthColumn, sheetRow int, cell string) (float64, error) {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return 0, nil
	}

	ref, err := excelize.CoordinatesToCellName(mc.index+1, sheetRow)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve cell reference: %w", err)
	}
	cellType, err := f.GetCellType(sheet, ref)
	if err != nil {
		return 0, fmt.Errorf("failed to read cell type at %s: %w", ref, err)
	}

	// Plain numeric cells carry no type attribute and report as unset.
	if cellType == excelize.CellTypeNumber || cellType == excelize.CellTypeUnset {
		v, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64)
		if err == nil {
			return v, nil
		}
		if n.mode == ModeHinted {
			return 0, nil
		}
		return 0, &ParseError{
			File:   filepath.Base(path),
			Row:    sheetRow,
			Column: mc.header,
			Cell:   trimmed,
			Err:    err,
		}
	}

	if n.mode == ModeHinted {
		return parseHinted(trimmed), nil
	}

	v, err := ParseValue(trimmed)
	if err != nil {
		return 0, &ParseError{
			File:   filepath.Base(path),
			Row:    sheetRow,
			Column: mc.header,
			Cell:   trimmed,
			Err:    err,
		}
	}
	return v, nil
}
