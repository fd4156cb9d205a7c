package catalog

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

var requiredColumns = []string{"nome", "preco", "estoque"}

// csvRow fila válida ya convertida.
type csvRow struct {
	product  entity.Product
	photoURL string
	publicID string
}

// ImportCSV da de alta productos activos desde un CSV. Las filas inválidas se saltan y se
// cuentan; solo un encabezado sin las columnas obligatorias rechaza el archivo.
func (uc *ProductLifecycle) ImportCSV(ctx context.Context, companyID int64, r io.Reader) (*dto.ImportResult, error) {
	company, err := uc.company(ctx, companyID)
	if err != nil {
		return nil, err
	}
	rows, skipped, err := parseProductsCSV(r)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	if len(rows) > 0 {
		err = uc.tx.RunCatalog(ctx, func(products repository.ProductRepository, photos repository.ProductPhotoRepository, _ repository.SaleRepository) error {
			for i := range rows {
				p := rows[i].product
				p.CompanyID = companyID
				p.Status = entity.ProductActive
				p.CreatedAt, p.UpdatedAt = now, now
				if err := products.Create(ctx, &p); err != nil {
					return fmt.Errorf("linha %d: %w", i+2, err)
				}
				if rows[i].photoURL == "" {
					continue
				}
				if err := photos.Create(ctx, &entity.ProductPhoto{ProductID: p.ID, URL: rows[i].photoURL, PublicID: rows[i].publicID}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		uc.invalidate(ctx, company.Slug)
	}

	uc.log.Info().Int64("company_id", companyID).Int("imported", len(rows)).Int("skipped", skipped).Msg("importação CSV concluída")
	return &dto.ImportResult{
		Message:  fmt.Sprintf("%d produto(s) importado(s), %d linha(s) ignorada(s).", len(rows), skipped),
		Imported: len(rows),
		Skipped:  skipped,
	}, nil
}

// parseProductsCSV lee el CSV (separador "," o ";", detectado en el encabezado).
// Devuelve las filas válidas y cuántas se descartaron.
func parseProductsCSV(r io.Reader) ([]csvRow, int, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, 0, fmt.Errorf("ler CSV: %w", err)
	}

	cr := csv.NewReader(br)
	cr.Comma = detectComma(header)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	cols, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, domain.Invalid("arquivo", "arquivo CSV vazio")
	}
	if err != nil {
		return nil, 0, domain.Invalid("arquivo", "cabeçalho CSV inválido")
	}
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		c = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(c, "\ufeff")))
		index[c] = i
	}
	for _, req := range requiredColumns {
		if _, ok := index[req]; !ok {
			return nil, 0, domain.Invalid("arquivo", "coluna obrigatória ausente: "+req)
		}
	}

	var rows []csvRow
	skipped := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if isBlank(rec) {
			continue
		}
		if len(rec) != len(cols) {
			skipped++
			continue
		}
		row, ok := parseRow(rec, index)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func parseRow(rec []string, index map[string]int) (csvRow, bool) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	name, priceRaw, stockRaw := get("nome"), get("preco"), get("estoque")
	if name == "" || priceRaw == "" || stockRaw == "" {
		return csvRow{}, false
	}
	price, err := ParseDecimal(priceRaw)
	if err != nil || price.IsNegative() || !priceFits(price) {
		return csvRow{}, false
	}
	stockDec, err := ParseDecimal(stockRaw)
	if err != nil || !stockDec.Equal(stockDec.Truncate(0)) {
		return csvRow{}, false
	}
	if stockDec.IsNegative() || stockDec.GreaterThan(decimal.NewFromInt(MaxStock)) {
		return csvRow{}, false
	}
	stock := int(stockDec.IntPart())

	return csvRow{
		product: entity.Product{
			Name:        name,
			Description: get("descricao"),
			Price:       price.Round(2),
			Stock:       stock,
			Category:    get("categoria"),
			Code:        defaultCode(get("codigo")),
		},
		photoURL: get("foto_url"),
		publicID: get("foto_public_id"),
	}, true
}

// ParseDecimal acepta "12.50" y "12,50"; un separador de miles con punto ("1.234,56") también.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

func detectComma(header []byte) rune {
	line := string(header)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
