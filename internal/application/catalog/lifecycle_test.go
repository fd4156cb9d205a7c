package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/domain"
	domcatalog "github.com/raposo-pdv/pdv-api/internal/domain/catalog"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
)

var (
	createdDay = time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)
	today      = time.Date(2025, 12, 3, 14, 30, 0, 0, time.UTC)
)

func photo(name, body string) dto.PhotoUpload {
	return dto.PhotoUpload{Filename: name, ContentType: "image/jpeg", Size: int64(len(body)), Content: strings.NewReader(body)}
}

func productInput(name string) dto.ProductInput {
	return dto.ProductInput{Name: name, Price: decimal.RequireFromString("9.90"), Stock: 3, Category: "Bebidas"}
}

// seedProduct crea el producto 7 con fotos bajo la carpeta del status indicado.
func seedProduct(f *fixture, status entity.ProductStatus, files ...string) []int64 {
	f.st.addProduct(entity.Product{ID: 7, CompanyID: testCompanyID, Name: "Café", Status: status, Price: decimal.NewFromInt(5)})
	folder, _ := domcatalog.FolderFor(status)
	var ids []int64
	for _, name := range files {
		id := domcatalog.PublicID(testSlug, createdDay, folder, 7, name)
		f.storage.objects[id] = "img"
		ids = append(ids, f.st.addPhoto(7, id))
	}
	return ids
}

// assertPhotosMatchStatus verifica que cada foto esté bajo la carpeta del status del producto.
func assertPhotosMatchStatus(t *testing.T, f *fixture, productID int64) {
	t.Helper()
	p := f.st.products[productID]
	want, err := domcatalog.FolderFor(p.Status)
	require.NoError(t, err)
	for _, ph := range f.st.photosOf(productID) {
		assert.Equal(t, want, domcatalog.FolderOf(ph.PublicID), "foto %s con status %s", ph.PublicID, p.Status)
		assert.True(t, f.storage.has(ph.PublicID), "el storage debe tener %s", ph.PublicID)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create / Update
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_SubeFotosEnCarpetaDeHoy(t *testing.T) {
	f := newFixture(today)
	out, err := f.uc.Create(context.Background(), testCompanyID, dto.CreateProductRequest{
		ProductInput: productInput("Suco"),
		Photos:       []dto.PhotoUpload{photo("a.jpg", "A"), photo("b.JPG", "B")},
	})
	require.NoError(t, err)
	require.NotZero(t, out.ProductID)

	p := f.st.products[out.ProductID]
	assert.Equal(t, entity.ProductActive, p.Status)
	assert.Equal(t, "0", p.Code, "código vacío pasa a \"0\"")

	photos := f.st.photosOf(out.ProductID)
	require.Len(t, photos, 2)
	for _, ph := range photos {
		assert.True(t, strings.HasPrefix(ph.PublicID, "tenant-x/03-12-25/products/1/"), ph.PublicID)
	}
	assert.True(t, strings.HasSuffix(photos[1].PublicID, ".jpg"))
	assert.Equal(t, 2, f.storage.count())
	assert.Equal(t, []string{testSlug}, f.cache.invalidated)
}

func TestCreate_ValoresQueNoCabenEnLaTabla(t *testing.T) {
	f := newFixture(today)
	ctx := context.Background()

	caro := productInput("Caro")
	caro.Price = decimal.RequireFromString("99999999999999")
	_, err := f.uc.Create(ctx, testCompanyID, dto.CreateProductRequest{ProductInput: caro})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// 9999999999.995 se redondea a 10^10 al guardarse.
	caro.Price = decimal.RequireFromString("9999999999.995")
	_, err = f.uc.Create(ctx, testCompanyID, dto.CreateProductRequest{ProductInput: caro})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	muitos := productInput("Muitos")
	muitos.Stock = MaxStock + 1
	_, err = f.uc.Create(ctx, testCompanyID, dto.CreateProductRequest{ProductInput: muitos})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	seedProduct(f, entity.ProductActive)
	assert.ErrorIs(t, f.uc.Update(ctx, testCompanyID, 7, dto.UpdateProductRequest{ProductInput: muitos}), domain.ErrInvalidInput)

	limite := productInput("Limite")
	limite.Price = decimal.RequireFromString("9999999999.99")
	limite.Stock = MaxStock
	_, err = f.uc.Create(ctx, testCompanyID, dto.CreateProductRequest{ProductInput: limite})
	require.NoError(t, err)
}

func TestCreate_FalloEnUpload_NoDejaNada(t *testing.T) {
	f := newFixture(today)
	f.storage.failUploadAt = 2

	_, err := f.uc.Create(context.Background(), testCompanyID, dto.CreateProductRequest{
		ProductInput: productInput("Suco"),
		Photos:       []dto.PhotoUpload{photo("a.jpg", "A"), photo("b.jpg", "B")},
	})
	require.Error(t, err)
	assert.Empty(t, f.st.products, "la transacción debe revertirse")
	assert.Empty(t, f.st.photos)
	assert.Equal(t, 0, f.storage.count(), "la foto ya subida debe borrarse")
}

func TestCreate_FalloEnCommit_BorraFotos(t *testing.T) {
	f := newFixture(today)
	f.tx.failCommit = true

	_, err := f.uc.Create(context.Background(), testCompanyID, dto.CreateProductRequest{
		ProductInput: productInput("Suco"),
		Photos:       []dto.PhotoUpload{photo("a.jpg", "A")},
	})
	require.Error(t, err)
	assert.Equal(t, 0, f.storage.count())
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(today)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, testCompanyID, dto.CreateProductRequest{ProductInput: dto.ProductInput{Name: "  "}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in := productInput("X")
	in.Price = decimal.NewFromInt(-1)
	_, err = f.uc.Create(ctx, testCompanyID, dto.CreateProductRequest{ProductInput: in})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = productInput("X")
	in.Stock = -2
	_, err = f.uc.Create(ctx, testCompanyID, dto.CreateProductRequest{ProductInput: in})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, testCompanyID, dto.CreateProductRequest{
		ProductInput: productInput("X"),
		Photos:       []dto.PhotoUpload{{Filename: "x.gif", ContentType: "image/gif", Content: strings.NewReader("")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, 99, dto.CreateProductRequest{ProductInput: productInput("X")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_RemueveYAgregaFotos(t *testing.T) {
	f := newFixture(today)
	ids := seedProduct(f, entity.ProductActive, "img1.jpg", "img2.jpg")
	oldID := f.st.photos[ids[0]].PublicID

	in := productInput("Café Especial")
	err := f.uc.Update(context.Background(), testCompanyID, 7, dto.UpdateProductRequest{
		ProductInput: in,
		Photos:       []dto.PhotoUpload{photo("nova.png", "N")},
		Remove:       []dto.PhotoRef{{ID: ids[0], PublicID: oldID}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Café Especial", f.st.products[7].Name)
	_, still := f.st.photos[ids[0]]
	assert.False(t, still, "la foto removida no debe quedar en la tabla")
	assert.False(t, f.storage.has(oldID), "la foto removida debe borrarse del storage")

	photos := f.st.photosOf(7)
	require.Len(t, photos, 2)
	assert.True(t, strings.HasPrefix(photos[1].PublicID, "tenant-x/03-12-25/products/7/"))
}

func TestUpdate_ProductoInactivo_SubeEnInactive(t *testing.T) {
	f := newFixture(today)
	seedProduct(f, entity.ProductInactive)

	err := f.uc.Update(context.Background(), testCompanyID, 7, dto.UpdateProductRequest{
		ProductInput: productInput("Café"),
		Photos:       []dto.PhotoUpload{photo("x.jpg", "X")},
	})
	require.NoError(t, err)
	assertPhotosMatchStatus(t, f, 7)
}

func TestUpdate_LimiteDeFotos(t *testing.T) {
	f := newFixture(today)
	names := make([]string, MaxPhotosPerProduct)
	for i := range names {
		names[i] = string(rune('a'+i)) + ".jpg"
	}
	seedProduct(f, entity.ProductActive, names...)

	err := f.uc.Update(context.Background(), testCompanyID, 7, dto.UpdateProductRequest{
		ProductInput: productInput("Café"),
		Photos:       []dto.PhotoUpload{photo("extra.jpg", "E")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, f.st.photosOf(7), MaxPhotosPerProduct)
}

func TestUpdate_FallaStorageAlBorrar_NoFallaRequest(t *testing.T) {
	f := newFixture(today)
	ids := seedProduct(f, entity.ProductActive, "img1.jpg")
	f.storage.failDelete = true

	err := f.uc.Update(context.Background(), testCompanyID, 7, dto.UpdateProductRequest{
		ProductInput: productInput("Café"),
		Remove:       []dto.PhotoRef{{ID: ids[0]}},
	})
	require.NoError(t, err)
	assert.Empty(t, f.st.photosOf(7))
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones
// ──────────────────────────────────────────────────────────────────────────────

func TestDeactivate_MueveFotosAInactiveConFechaDeHoy(t *testing.T) {
	f := newFixture(today)
	ids := seedProduct(f, entity.ProductActive, "img1.jpg")
	require.Equal(t, "tenant-x/10-11-25/products/7/img1.jpg", f.st.photos[ids[0]].PublicID)

	require.NoError(t, f.uc.Deactivate(context.Background(), testCompanyID, 7))

	assert.Equal(t, entity.ProductInactive, f.st.products[7].Status)
	ph := f.st.photos[ids[0]]
	assert.Equal(t, "tenant-x/03-12-25/inactive/7/img1.jpg", ph.PublicID)
	assert.Equal(t, "https://cdn.test/tenant-x/03-12-25/inactive/7/img1.jpg", ph.URL)
	assert.False(t, f.storage.has("tenant-x/10-11-25/products/7/img1.jpg"))
	assertPhotosMatchStatus(t, f, 7)
	assert.Contains(t, f.cache.invalidated, testSlug)
}

func TestDeactivate_OmiteFotosYaEnInactiveYExternas(t *testing.T) {
	f := newFixture(today)
	seedProduct(f, entity.ProductActive, "img1.jpg")
	already := "tenant-x/01-11-25/inactive/7/old.jpg"
	f.storage.objects[already] = "img"
	f.st.addPhoto(7, already)
	f.st.addPhoto(7, "catalogo-externo/foto123")

	require.NoError(t, f.uc.Deactivate(context.Background(), testCompanyID, 7))
	assert.Equal(t, 1, f.storage.renames, "solo la foto bajo products se mueve")
	assert.True(t, f.storage.has(already))
}

func TestDeactivate_FalloEnUnMovimiento_RevierteTodo(t *testing.T) {
	f := newFixture(today)
	ids := seedProduct(f, entity.ProductActive, "img1.jpg", "img2.jpg", "img3.jpg")
	before := map[int64]string{}
	for _, id := range ids {
		before[id] = f.st.photos[id].PublicID
	}
	f.storage.failRename[before[ids[1]]] = true

	err := f.uc.Deactivate(context.Background(), testCompanyID, 7)
	require.Error(t, err)

	assert.Equal(t, entity.ProductActive, f.st.products[7].Status, "el status no debe cambiar")
	for _, id := range ids {
		assert.Equal(t, before[id], f.st.photos[id].PublicID)
		assert.True(t, f.storage.has(before[id]), "el objeto %s debe volver a su lugar", before[id])
	}
	assert.Equal(t, 3, f.storage.count())
	assertPhotosMatchStatus(t, f, 7)
}

func TestReactivate_FalloEnUnMovimiento_TambienAborta(t *testing.T) {
	f := newFixture(today)
	ids := seedProduct(f, entity.ProductInactive, "img1.jpg", "img2.jpg")
	f.storage.failRename[f.st.photos[ids[1]].PublicID] = true

	err := f.uc.Reactivate(context.Background(), testCompanyID, 7)
	require.Error(t, err)
	assert.Equal(t, entity.ProductInactive, f.st.products[7].Status)
	assertPhotosMatchStatus(t, f, 7)
}

func TestReactivate_VuelveAProductsConFechaDeReactivacion(t *testing.T) {
	f := newFixture(today)
	ids := seedProduct(f, entity.ProductInactive, "img1.jpg")

	require.NoError(t, f.uc.Reactivate(context.Background(), testCompanyID, 7))
	assert.Equal(t, entity.ProductActive, f.st.products[7].Status)
	assert.Equal(t, "tenant-x/03-12-25/products/7/img1.jpg", f.st.photos[ids[0]].PublicID)
}

func TestCiclo_ActivoInactivoActivo_SegmentoSiempreCoincide(t *testing.T) {
	f := newFixture(today)
	seedProduct(f, entity.ProductActive, "a.jpg", "b.jpg", "c.jpg")
	ctx := context.Background()

	require.NoError(t, f.uc.Deactivate(ctx, testCompanyID, 7))
	assertPhotosMatchStatus(t, f, 7)
	require.NoError(t, f.uc.Reactivate(ctx, testCompanyID, 7))
	assertPhotosMatchStatus(t, f, 7)
	require.NoError(t, f.uc.Deactivate(ctx, testCompanyID, 7))
	assertPhotosMatchStatus(t, f, 7)
	assert.Equal(t, 3, f.storage.count())
}

func TestTransiciones_Invalidas(t *testing.T) {
	f := newFixture(today)
	seedProduct(f, entity.ProductInactive)
	ctx := context.Background()

	assert.ErrorIs(t, f.uc.Deactivate(ctx, testCompanyID, 7), domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.uc.Deactivate(ctx, 2, 7), domain.ErrNotFound, "otra empresa no ve el producto")
	assert.ErrorIs(t, f.uc.Reactivate(ctx, testCompanyID, 404), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Operaciones en masa
// ──────────────────────────────────────────────────────────────────────────────

func TestDeactivateMany_NoMueveFotos(t *testing.T) {
	f := newFixture(today)
	seedProduct(f, entity.ProductActive, "img1.jpg")
	f.st.addProduct(entity.Product{ID: 8, CompanyID: testCompanyID, Name: "Pão", Status: entity.ProductActive})

	out, err := f.uc.DeactivateMany(context.Background(), testCompanyID, []int64{7, 8, 8})
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Affected)
	assert.Equal(t, entity.ProductInactive, f.st.products[7].Status)
	assert.Equal(t, 0, f.storage.renames)
	assert.True(t, f.storage.has("tenant-x/10-11-25/products/7/img1.jpg"))
}

func TestDeletePermanently_BorraFotosYMarcaDeleted(t *testing.T) {
	f := newFixture(today)
	seedProduct(f, entity.ProductActive, "img1.jpg", "img2.jpg")

	out, err := f.uc.DeletePermanently(context.Background(), testCompanyID, []int64{7})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Affected)
	assert.Equal(t, entity.ProductDeleted, f.st.products[7].Status, "el producto se marca, no se borra")
	assert.Empty(t, f.st.photosOf(7))
	assert.Equal(t, 0, f.storage.count())

	_, err = f.uc.Get(context.Background(), testCompanyID, 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeletePermanently_ProductoVendido_FallaSinCambios(t *testing.T) {
	f := newFixture(today)
	seedProduct(f, entity.ProductActive, "img1.jpg")
	f.st.addProduct(entity.Product{ID: 8, CompanyID: testCompanyID, Name: "Pão", Status: entity.ProductInactive})
	f.st.referenced[8] = true

	_, err := f.uc.DeletePermanently(context.Background(), testCompanyID, []int64{7, 8})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProductInUse))

	assert.Equal(t, entity.ProductActive, f.st.products[7].Status)
	assert.Equal(t, entity.ProductInactive, f.st.products[8].Status)
	assert.Len(t, f.st.photosOf(7), 1)
	assert.Equal(t, 1, f.storage.count(), "ninguna foto debe borrarse")
}

func TestDeletePermanently_IDDeOtraEmpresa(t *testing.T) {
	f := newFixture(today)
	seedProduct(f, entity.ProductActive)
	f.st.addProduct(entity.Product{ID: 9, CompanyID: 2, Name: "Alheio", Status: entity.ProductActive})

	_, err := f.uc.DeletePermanently(context.Background(), testCompanyID, []int64{7, 9})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, entity.ProductActive, f.st.products[7].Status)
}

func TestDeletePermanently_FalloDelStorageSeRegistraYSigue(t *testing.T) {
	f := newFixture(today)
	seedProduct(f, entity.ProductActive, "img1.jpg")
	f.storage.failDelete = true

	_, err := f.uc.DeletePermanently(context.Background(), testCompanyID, []int64{7})
	require.NoError(t, err)
	assert.Equal(t, entity.ProductDeleted, f.st.products[7].Status)
}

func TestDeletePermanently_SinIDs(t *testing.T) {
	f := newFixture(today)
	_, err := f.uc.DeletePermanently(context.Background(), testCompanyID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestListYGet(t *testing.T) {
	f := newFixture(today)
	seedProduct(f, entity.ProductActive, "img1.jpg")
	f.st.addProduct(entity.Product{ID: 8, CompanyID: testCompanyID, Name: "Açúcar", Status: entity.ProductInactive})
	ctx := context.Background()

	active, err := f.uc.List(ctx, testCompanyID, "desconhecido", "")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Café", active[0].Name)
	assert.NotEmpty(t, active[0].PhotoURL)

	inactive, err := f.uc.ListInactive(ctx, testCompanyID)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, int64(8), inactive[0].ID)

	detail, err := f.uc.Get(ctx, testCompanyID, 7)
	require.NoError(t, err)
	assert.Len(t, detail.Photos, 1)
	assert.Equal(t, "active", detail.Status)
}

func TestNormalizeSort(t *testing.T) {
	assert.Equal(t, "preco-desc", NormalizeSort("preco-desc"))
	assert.Equal(t, "id-asc", NormalizeSort("id-asc"))
	assert.Equal(t, "nome-asc", NormalizeSort(""))
	assert.Equal(t, "nome-asc", NormalizeSort("preco; DROP TABLE"))
}
