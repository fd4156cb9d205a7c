// Package pdf genera el comprobante (recibo) de una venda con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + telefone   │  Recibo N° + Data            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE / VENDEDOR                                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABELA: Qtd | Produto | Preço unit. | Subtotal              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PAGAMENTOS + TOTAL                                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR com a referência + aviso "não é documento fiscal"│
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/raposo-pdv/pdv-api/internal/application/sales"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
)

var _ sales.ReceiptGenerator = (*MarotoReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 33, Green: 37, Blue: 41}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReceiptGenerator implementa sales.ReceiptGenerator usando Maroto v2.
type MarotoReceiptGenerator struct {
	loc *time.Location
}

// NewMarotoReceiptGenerator construye el generador; las fechas se imprimen en loc.
func NewMarotoReceiptGenerator(loc *time.Location) *MarotoReceiptGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &MarotoReceiptGenerator{loc: loc}
}

// GenerateReceipt genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateReceipt(company *entity.Company, sale *entity.Sale) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Recibo da venda %d", sale.ID), true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(company, sale, g.loc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(sale.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(paymentRows(sale)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(company, sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: gerar recibo: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(company *entity.Company, sale *entity.Sale, loc *time.Location) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Tel: "+nonEmpty(company.Phone, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("RECIBO DE VENDA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %06d", sale.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Data: "+sale.SoldAt.In(loc).Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func partiesRow(sale *entity.Sale) core.Row {
	return row.New(12).Add(
		col.New(6).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(sale.ClientName, "Consumidor final"), props.Text{Size: 9, Top: 6}),
		),
		col.New(6).Add(
			text.New("VENDEDOR", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1, Align: align.Right}),
			text.New(nonEmpty(sale.UserName, "—"), props.Text{Size: 9, Top: 6, Align: align.Right}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qtd.", 1, align.Center),
		h("Produto", 6, align.Left),
		h("Preço unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func itemRows(items []entity.SaleItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(it.ProductName, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(FormatBRL(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(FormatBRL(it.Subtotal()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// paymentRows: una línea por forma de pago y el total en destaque.
func paymentRows(sale *entity.Sale) []core.Row {
	rows := make([]core.Row, 0, len(sale.Payments)+2)
	rows = append(rows, row.New(6).Add(col.New(12).Add(
		text.New("PAGAMENTOS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	)))
	for _, p := range sale.Payments {
		rows = append(rows, row.New(5).Add(
			col.New(6),
			col.New(3).Add(text.New(p.Method+":", props.Text{Size: 9, Align: align.Right, Right: 2})),
			col.New(3).Add(text.New(FormatBRL(p.Amount), props.Text{Size: 9, Align: align.Right, Right: 1})),
		))
	}
	rows = append(rows, row.New(9).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New(FormatBRL(sale.Total), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	))
	return rows
}

func footerRow(company *entity.Company, sale *entity.Sale) core.Row {
	ref := fmt.Sprintf("%s/venda/%d", company.Slug, sale.ID)
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(ref, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Referência: "+ref, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New("Este recibo não é documento fiscal.", props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 14, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// FormatBRL formatea en reais: 1234.5 → "R$ 1.234,50".
func FormatBRL(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	s := v.StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	return "R$ " + sign + thousands(intPart) + "," + frac
}

// thousands inserta puntos de miles: "1000000" → "1.000.000".
func thousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
