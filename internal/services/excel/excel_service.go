package excel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/promoagente/promoagente-backend/internal/models"
)

// ErrExport marks a failure to produce the spreadsheet artifact. Export
// failures never prevent the caller from archiving state.
var ErrExport = errors.New("excel export failed")

const dateLayout = "02/01/2006"

var monthNames = map[time.Month]string{
	time.January:   "Janeiro",
	time.February:  "Fevereiro",
	time.March:     "Março",
	time.April:     "Abril",
	time.May:       "Maio",
	time.June:      "Junho",
	time.July:      "Julho",
	time.August:    "Agosto",
	time.September: "Setembro",
	time.October:   "Outubro",
	time.November:  "Novembro",
	time.December:  "Dezembro",
}

// Service generates Excel artifacts for finalized promotions
type Service struct {
	exportsDir string
}

// NewExcelService creates a new Excel service instance
func NewExcelService(exportsDir string) *Service {
	// Create exports directory if it doesn't exist
	if _, err := os.Stat(exportsDir); os.IsNotExist(err) {
		os.MkdirAll(exportsDir, 0755)
	}
	return &Service{exportsDir: exportsDir}
}

// ExportResult contains the result of an export operation
type ExportResult struct {
	Filename string
	Path     string
	Rows     int
}

var columns = []string{
	"Título", "Mecânica", "Descrição", "Público-Alvo", "Canal", "Categoria",
	"Início", "Fim", "Condições", "Recompensas", "Produtos", "Desconto %",
	"Qt. Mínima",
}

// Export writes one row per promotion to a timestamped xlsx file. A
// promotion whose period spans several calendar months becomes one row per
// month, clipped to month boundaries, with the month name appended to the
// title.
func (s *Service) Export(promotions []*models.PromoState) (*ExportResult, error) {
	if len(promotions) == 0 {
		return nil, fmt.Errorf("%w: no promotions to export", ErrExport)
	}

	var rows []*models.PromoState
	for _, promo := range promotions {
		rows = append(rows, splitByMonth(promo)...)
	}

	f := excelize.NewFile()
	sheet := "Promoções"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return nil, fmt.Errorf("%w: rename sheet: %v", ErrExport, err)
	}
	f.SetActiveSheet(0)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"4472C4"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: header style: %v", ErrExport, err)
	}

	for i, col := range columns {
		cell := fmt.Sprintf("%s1", columnToLetter(i+1))
		f.SetCellValue(sheet, cell, col)
	}
	f.SetCellStyle(sheet, "A1", columnToLetter(len(columns))+"1", headerStyle)

	for i, col := range columns {
		letter := columnToLetter(i + 1)
		width := 18.0
		switch col {
		case "Título", "Descrição", "Condições", "Recompensas":
			width = 35.0
		case "Início", "Fim", "Desconto %", "Qt. Mínima":
			width = 12.0
		}
		f.SetColWidth(sheet, letter, letter, width)
	}

	for i, row := range rows {
		rowNum := i + 2
		values := []interface{}{
			row.Titulo,
			row.Mecanica,
			row.Descricao,
			row.Segmentacao,
			"", // channel, not collected conversationally
			strings.Join(row.Categorias, ", "),
			row.PeriodoInicio,
			row.PeriodoFim,
			row.Condicoes,
			row.Recompensas,
			strings.Join(row.Produtos, ", "),
			row.DescontoPercentual,
			row.VolumeMinimo,
		}
		for j, value := range values {
			cell := fmt.Sprintf("%s%d", columnToLetter(j+1), rowNum)
			f.SetCellValue(sheet, cell, value)
		}
	}

	filename := fmt.Sprintf("promocoes_%s.xlsx", time.Now().Format("20060102_150405"))
	path := filepath.Join(s.exportsDir, filename)
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("%w: save file: %v", ErrExport, err)
	}

	return &ExportResult{
		Filename: filename,
		Path:     path,
		Rows:     len(rows),
	}, nil
}

// splitByMonth expands a promotion spanning multiple calendar months into
// one copy per month with clipped dates and a month-name title suffix.
// Unparseable or single-month periods come back unchanged.
func splitByMonth(promo *models.PromoState) []*models.PromoState {
	start, err := time.Parse(dateLayout, promo.PeriodoInicio)
	if err != nil {
		return []*models.PromoState{promo}
	}
	end, err := time.Parse(dateLayout, promo.PeriodoFim)
	if err != nil || end.Before(start) {
		return []*models.PromoState{promo}
	}
	if start.Year() == end.Year() && start.Month() == end.Month() {
		return []*models.PromoState{promo}
	}

	var out []*models.PromoState
	cursor := start
	for !cursor.After(end) {
		monthStart := time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, time.UTC)
		monthEnd := monthStart.AddDate(0, 1, -1)

		sliceStart := monthStart
		if cursor.Equal(start) {
			sliceStart = start
		}
		sliceEnd := monthEnd
		if monthEnd.After(end) {
			sliceEnd = end
		}

		copied := *promo
		copied.PeriodoInicio = sliceStart.Format(dateLayout)
		copied.PeriodoFim = sliceEnd.Format(dateLayout)
		copied.Titulo = fmt.Sprintf("%s - %s %d", promo.Titulo, monthNames[monthStart.Month()], monthStart.Year())
		out = append(out, &copied)

		cursor = monthStart.AddDate(0, 1, 0)
	}
	return out
}

// Helper function to convert column number to Excel column letter
func columnToLetter(col int) string {
	var result string
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
