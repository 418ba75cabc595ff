package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fiscaldash/internal/config"
	"fiscaldash/internal/ledger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeRevenueFixture writes one annual workbook with the full twelve month
// columns for each label, values base+100*month.
func writeRevenueFixture(t *testing.T, dir string, year int, labels []string, base float64) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetCellValue(sheet, "A1", "ESPECIFICAÇÃO"))
	for m := 1; m <= 12; m++ {
		ref, err := excelize.CoordinatesToCellName(m+1, 1)
		require.NoError(t, err)
		header := time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC).Format("01/2006")
		require.NoError(t, f.SetCellValue(sheet, ref, header))
	}
	for r, label := range labels {
		ref, err := excelize.CoordinatesToCellName(1, r+2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, ref, label))
		for m := 1; m <= 12; m++ {
			ref, err := excelize.CoordinatesToCellName(m+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, ref, base+float64(m)*100))
		}
	}

	name := filepath.Join(dir, fmt.Sprintf("RCL-%d.xlsx", year))
	require.NoError(t, f.SaveAs(name))
}

func testDataConfig(dir string) config.DataConfig {
	return config.DataConfig{
		RevenueDir: dir,
		FilePrefix: "RCL",
		FileExt:    ".xlsx",
		ParseMode:  "punctuated",
	}
}

func TestDataServiceRevenue(t *testing.T) {
	dir := t.TempDir()
	writeRevenueFixture(t, dir, 2020, []string{"IPTU", "ISS"}, 0)

	svc := NewDataService(testDataConfig(dir), discardLogger())
	table, err := svc.Revenue(context.Background())
	require.NoError(t, err)
	assert.Len(t, table, 24)
}

func TestDataServiceRevenueCacheInvalidation(t *testing.T) {
	dir := t.TempDir()
	writeRevenueFixture(t, dir, 2020, []string{"IPTU"}, 0)

	svc := NewDataService(testDataConfig(dir), discardLogger())
	ctx := context.Background()

	first, err := svc.Revenue(ctx)
	require.NoError(t, err)
	require.Len(t, first, 12)

	// Unchanged directory serves the cached table.
	again, err := svc.Revenue(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 12)

	// A new annual file invalidates the cache on the next call.
	writeRevenueFixture(t, dir, 2021, []string{"IPTU"}, 1200)
	reloaded, err := svc.Revenue(ctx)
	require.NoError(t, err)
	assert.Len(t, reloaded, 24)
}

func TestDataServiceCacheKeyIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	writeRevenueFixture(t, dir, 2020, []string{"IPTU"}, 0)

	svc := NewDataService(testDataConfig(dir), discardLogger())

	before, err := svc.currentKey()
	require.NoError(t, err)
	require.Equal(t, 1, before.matches)

	// Stray files outside the <prefix>-*<ext> pattern do not touch the key.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "~RCL-2020.xlsx.tmp"), []byte("scratch"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("todo"), 0644))

	after, err := svc.currentKey()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// Another annual file does.
	writeRevenueFixture(t, dir, 2021, []string{"IPTU"}, 1200)
	changed, err := svc.currentKey()
	require.NoError(t, err)
	assert.NotEqual(t, before, changed)
	assert.Equal(t, 2, changed.matches)
}

func TestDataServiceRevenueMissingDirectory(t *testing.T) {
	svc := NewDataService(testDataConfig("/nonexistent/revenue"), discardLogger())
	_, err := svc.Revenue(context.Background())
	assert.ErrorIs(t, err, ledger.ErrDirectoryNotFound)
}

func TestDataServiceSpecification(t *testing.T) {
	dir := t.TempDir()
	writeRevenueFixture(t, dir, 2020, []string{"IPTU", "ISS"}, 0)

	svc := NewDataService(testDataConfig(dir), discardLogger())
	ctx := context.Background()

	specs, err := svc.Specifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"IPTU", "ISS"}, specs)

	iptu, err := svc.Specification(ctx, "IPTU")
	require.NoError(t, err)
	assert.Len(t, iptu, 12)

	_, err = svc.Specification(ctx, "IRRF")
	assert.ErrorIs(t, err, ErrUnknownSpecification)
}

func TestDataServicePayroll(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Ano"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Mês"))
	require.NoError(t, f.SetCellValue(sheet, "C1", "total vantagens"))
	require.NoError(t, f.SetCellValue(sheet, "A2", 2021))
	require.NoError(t, f.SetCellValue(sheet, "B2", 1))
	require.NoError(t, f.SetCellValue(sheet, "C2", 1200.0))
	path := filepath.Join(dir, "folha.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	cfg := testDataConfig(dir)
	cfg.PayrollFile = path
	svc := NewDataService(cfg, discardLogger())

	payroll, err := svc.Payroll(context.Background())
	require.NoError(t, err)
	require.Len(t, payroll, 1)
	assert.InDelta(t, 1200, payroll[0].TotalBenefits, 1e-9)
}
