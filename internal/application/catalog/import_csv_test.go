package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
)

func TestParseDecimal(t *testing.T) {
	cases := map[string]string{
		"12.50":       "12.5",
		"12,50":       "12.5",
		"R$ 1.234,56": "1234.56",
		" 7 ":         "7",
	}
	for in, want := range cases {
		got, err := ParseDecimal(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%q → %s", in, got)
	}
	_, err := ParseDecimal("dez reais")
	assert.Error(t, err)
}

func TestParseProductsCSV_PuntoYComa(t *testing.T) {
	in := "\ufeffNome;Preco;Estoque;Categoria\n" +
		"Café;12,50;10;Bebidas\n" +
		"Pão;0,75;abc;Padaria\n" + // estoque inválido
		"Leite;-1;3;Bebidas\n" + // preço negativo
		";;;\n" +
		"Bolo;30;2\n" + // columnas de menos
		"Açúcar;4,99;2.5;Mercearia\n" + // estoque fracionado
		"Manteiga;9;5;\n"

	rows, skipped, err := parseProductsCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 4, skipped)

	assert.Equal(t, "Café", rows[0].product.Name)
	assert.True(t, rows[0].product.Price.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, 10, rows[0].product.Stock)
	assert.Equal(t, "0", rows[0].product.Code)
	assert.Equal(t, "Manteiga", rows[1].product.Name)
}

func TestParseProductsCSV_ComaYColumnaFaltante(t *testing.T) {
	rows, skipped, err := parseProductsCSV(strings.NewReader("nome,preco,estoque,foto_url\nSuco,5.5,3,https://cdn.test/x.jpg\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, skipped)
	assert.Equal(t, "https://cdn.test/x.jpg", rows[0].photoURL)

	_, _, err = parseProductsCSV(strings.NewReader("nome,preco\nSuco,5\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = parseProductsCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestImportCSV_CreaProductosActivos(t *testing.T) {
	f := newFixture(today)
	csv := "nome;preco;estoque;codigo;foto_url;foto_public_id\n" +
		"Café;12,50;10;789;https://cdn.test/cafe.jpg;legado/cafe\n" +
		"Pão;x;1;;;\n" +
		"Leite;4;6;;;\n"

	out, err := f.uc.ImportCSV(context.Background(), testCompanyID, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, out.Imported)
	assert.Equal(t, 1, out.Skipped)

	require.Len(t, f.st.products, 2)
	for _, p := range f.st.products {
		assert.Equal(t, entity.ProductActive, p.Status)
		assert.Equal(t, testCompanyID, p.CompanyID)
	}
	assert.Len(t, f.st.photosOf(1), 1, "foto_url vira uma foto do produto")
	assert.Empty(t, f.st.photosOf(2))
	assert.Contains(t, f.cache.invalidated, testSlug)
}

func TestImportCSV_FilasFueraDeRangoSeIgnoran(t *testing.T) {
	f := newFixture(today)
	csv := "nome,preco,estoque\n" +
		"A,10,3000000000\n" + // estoque além de INTEGER
		"B,99999999999999,1\n" + // preço além de NUMERIC(12,2)
		"C,5,2\n"

	out, err := f.uc.ImportCSV(context.Background(), testCompanyID, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Imported)
	assert.Equal(t, 2, out.Skipped)
	require.Len(t, f.st.products, 1)
	for _, p := range f.st.products {
		assert.Equal(t, "C", p.Name)
	}
}

func TestImportCSV_FalloEnDB_RevierteTodo(t *testing.T) {
	f := newFixture(today)
	f.st.failPhotoDB = true
	csv := "nome;preco;estoque;foto_url\nCafé;1;1;\nLeite;2;2;https://cdn.test/l.jpg\n"

	_, err := f.uc.ImportCSV(context.Background(), testCompanyID, strings.NewReader(csv))
	require.Error(t, err)
	assert.Empty(t, f.st.products, "nenhum produto deve ficar gravado")
}
