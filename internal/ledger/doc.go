// Package ledger implements the ingestion and normalization pipeline for
// municipal revenue and payroll spreadsheet exports.
//
// Revenue files arrive as wide-format workbooks (one row per budget
// specification, one column per month) with Brazilian locale punctuation in
// the numeric cells. The package reshapes them into a canonical long-format
// table of (specification, month, value) records, consolidating historically
// inconsistent category labels along the way.
//
// The loader is stateless: every Load call re-reads and re-parses the source
// directory. Memoization, when wanted, belongs to the calling layer.
package ledger
