package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/weighbridge/internal/domain/models"
)

const sheetName = "Records"

var headers = []string{"Plate_Number", "Yuk_bilan (Kg)", "Sana (Date)", "Yuksiz (Kg)", "Sof_Vazin (Kg)", "Price", "Check Number"}

// Summary aggregates a set of records.
type Summary struct {
	Count      int     `json:"count"`
	LoadedKg   float64 `json:"loadedKg"`
	EmptyKg    float64 `json:"emptyKg"`
	NetKg      float64 `json:"netKg"`
	TotalPrice int64   `json:"totalPrice"`
}

// Summarize totals the weights and prices of records.
func Summarize(records []models.Record) Summary {
	s := Summary{Count: len(records)}
	for _, r := range records {
		s.LoadedKg += r.LoadedKg
		s.EmptyKg += r.EmptyKg
		s.NetKg += r.NetKg
		s.TotalPrice += r.Price
	}
	return s
}

// Service renders the record table into downloadable formats.
type Service struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, now: time.Now}
}

// Filename returns a timestamped download name with the given extension.
func (s *Service) Filename(ext string) string {
	return fmt.Sprintf("weighbridge-%s.%s", s.now().Format("20060102-150405"), ext)
}

// WriteXLSX writes a workbook with a styled header, one row per record and a
// totals row.
func (s *Service) WriteXLSX(w io.Writer, records []models.Record) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Debug("close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	numFmt := "#,##0"
	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment:    &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:       border,
		CustomNumFmt: &numFmt,
	})
	if err != nil {
		return fmt.Errorf("data style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment:    &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:       border,
		CustomNumFmt: &numFmt,
	})
	if err != nil {
		return fmt.Errorf("total style: %w", err)
	}

	if err := f.SetColWidth(sheetName, "A", "G", 16); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "G1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range records {
		row := i + 2
		values := []any{r.PlateNumber, r.LoadedKg, models.FormatDate(r.Date), r.EmptyKg, r.NetKg, r.Price, r.CheckNumber}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, start, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		end, _ := excelize.CoordinatesToCellName(len(headers), row)
		if err := f.SetCellStyle(sheetName, start, end, dataStyle); err != nil {
			return fmt.Errorf("style row %d: %w", row, err)
		}
	}

	sum := Summarize(records)
	totalRow := len(records) + 2
	totals := []any{"Total", sum.LoadedKg, fmt.Sprintf("%d records", sum.Count), sum.EmptyKg, sum.NetKg, sum.TotalPrice, ""}
	start, _ := excelize.CoordinatesToCellName(1, totalRow)
	end, _ := excelize.CoordinatesToCellName(len(headers), totalRow)
	if err := f.SetSheetRow(sheetName, start, &totals); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}
	if err := f.SetCellStyle(sheetName, start, end, totalStyle); err != nil {
		return fmt.Errorf("style totals: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Debug("workbook written", zap.Int("records", len(records)))
	return nil
}

// WriteCSV writes the table as UTF-8 CSV with a BOM so spreadsheet tools
// detect the encoding.
func (s *Service) WriteCSV(w io.Writer, records []models.Record) error {
	if _, err := io.WriteString(w, "\xEF\xBB\xBF"); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.PlateNumber,
			strconv.FormatFloat(r.LoadedKg, 'f', -1, 64),
			models.FormatDate(r.Date),
			strconv.FormatFloat(r.EmptyKg, 'f', -1, 64),
			strconv.FormatFloat(r.NetKg, 'f', -1, 64),
			strconv.FormatInt(r.Price, 10),
			r.CheckNumber,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
