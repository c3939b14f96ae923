package excel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/promoagente/promoagente-backend/internal/models"
)

func promo(titulo, inicio, fim string) *models.PromoState {
	s := models.NewPromoState("sess-1")
	s.Titulo = titulo
	s.Mecanica = "progressiva"
	s.Descricao = "A cada 3 unidades paga 2"
	s.Segmentacao = "Varejos de bairro"
	s.PeriodoInicio = inicio
	s.PeriodoFim = fim
	s.Condicoes = "Pedido mínimo"
	s.Recompensas = "Uma unidade grátis"
	return s
}

func TestSplitByMonthSingleMonth(t *testing.T) {
	rows := splitByMonth(promo("Promo Março", "05/03/2026", "25/03/2026"))

	require.Len(t, rows, 1)
	assert.Equal(t, "Promo Março", rows[0].Titulo)
	assert.Equal(t, "05/03/2026", rows[0].PeriodoInicio)
}

func TestSplitByMonthFourMonths(t *testing.T) {
	rows := splitByMonth(promo("Promoção de Outono", "01/03/2026", "30/06/2026"))

	require.Len(t, rows, 4)

	assert.Equal(t, "Promoção de Outono - Março 2026", rows[0].Titulo)
	assert.Equal(t, "01/03/2026", rows[0].PeriodoInicio)
	assert.Equal(t, "31/03/2026", rows[0].PeriodoFim)

	assert.Equal(t, "Promoção de Outono - Abril 2026", rows[1].Titulo)
	assert.Equal(t, "01/04/2026", rows[1].PeriodoInicio)
	assert.Equal(t, "30/04/2026", rows[1].PeriodoFim)

	assert.Equal(t, "Promoção de Outono - Junho 2026", rows[3].Titulo)
	assert.Equal(t, "01/06/2026", rows[3].PeriodoInicio)
	assert.Equal(t, "30/06/2026", rows[3].PeriodoFim)
}

func TestSplitByMonthClipsFirstAndLastSlice(t *testing.T) {
	rows := splitByMonth(promo("Promo", "15/03/2026", "10/04/2026"))

	require.Len(t, rows, 2)
	assert.Equal(t, "15/03/2026", rows[0].PeriodoInicio)
	assert.Equal(t, "31/03/2026", rows[0].PeriodoFim)
	assert.Equal(t, "01/04/2026", rows[1].PeriodoInicio)
	assert.Equal(t, "10/04/2026", rows[1].PeriodoFim)
}

func TestSplitByMonthAcrossYears(t *testing.T) {
	rows := splitByMonth(promo("Promo de Festas", "15/12/2026", "15/01/2027"))

	require.Len(t, rows, 2)
	assert.Equal(t, "Promo de Festas - Dezembro 2026", rows[0].Titulo)
	assert.Equal(t, "Promo de Festas - Janeiro 2027", rows[1].Titulo)
}

func TestSplitByMonthUnparseableDatesPassThrough(t *testing.T) {
	rows := splitByMonth(promo("Promo", "início de março", "final de junho"))

	require.Len(t, rows, 1)
	assert.Equal(t, "Promo", rows[0].Titulo)
	assert.Equal(t, "início de março", rows[0].PeriodoInicio)
}

func TestExportWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	svc := NewExcelService(dir)

	p := promo("Promoção de Outono", "01/03/2026", "30/06/2026")
	p.Produtos = []string{"Refrigerante 2L", "Suco 1L"}
	p.DescontoPercentual = "15"

	result, err := svc.Export([]*models.PromoState{p})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Rows)
	assert.Equal(t, filepath.Join(dir, result.Filename), result.Path)

	f, err := excelize.OpenFile(result.Path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Promoções")
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, "Título", rows[0][0])
	assert.Equal(t, "Promoção de Outono - Março 2026", rows[1][0])
	assert.Equal(t, "01/03/2026", rows[1][6])
	assert.Equal(t, "31/03/2026", rows[1][7])
	assert.Equal(t, "Refrigerante 2L, Suco 1L", rows[1][10])
}

func TestExportEmptyBatchFails(t *testing.T) {
	svc := NewExcelService(t.TempDir())

	_, err := svc.Export(nil)
	assert.ErrorIs(t, err, ErrExport)
}

func TestColumnToLetter(t *testing.T) {
	assert.Equal(t, "A", columnToLetter(1))
	assert.Equal(t, "M", columnToLetter(13))
	assert.Equal(t, "AA", columnToLetter(27))
}
