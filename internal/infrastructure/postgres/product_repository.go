package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, company_id, name, description, price, stock, category, code, status, created_at, updated_at`

// productOrder traduce las claves de ordenamiento; lo desconocido cae en nombre.
var productOrder = map[string]string{
	repository.SortPriceAsc:  "p.price ASC, p.id ASC",
	repository.SortPriceDesc: "p.price DESC, p.id ASC",
	repository.SortNameAsc:   "p.name ASC, p.id ASC",
	repository.SortIDAsc:     "p.id ASC",
	repository.SortIDDesc:    "p.id DESC",
}

func scanProduct(row interface{ Scan(...any) error }) (*entity.Product, error) {
	var p entity.Product
	var status string
	if err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.Category, &p.Code, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = entity.ProductStatus(status)
	return &p, nil
}

// Create persiste un nuevo producto y asigna ID.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.Code == "" {
		product.Code = "0"
	}
	if product.Status == "" {
		product.Status = entity.ProductActive
	}
	query := `
		INSERT INTO products (company_id, name, description, price, stock, category, code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		product.CompanyID, product.Name, product.Description, product.Price, product.Stock,
		product.Category, product.Code, string(product.Status),
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto de la empresa.
func (r *ProductRepo) GetByID(ctx context.Context, companyID, id int64) (*entity.Product, error) {
	return r.findOne(ctx, "get product", ``, companyID, id)
}

// Lock igual que GetByID pero bloquea la fila hasta el fin de la tx.
func (r *ProductRepo) Lock(ctx context.Context, companyID, id int64) (*entity.Product, error) {
	return r.findOne(ctx, "lock product", ` FOR UPDATE`, companyID, id)
}

func (r *ProductRepo) findOne(ctx context.Context, label, suffix string, companyID, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND company_id = $2`+suffix, id, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return p, nil
}

// Update actualiza los campos editables. El status se cambia solo vía SetStatus.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $3, description = $4, price = $5, stock = $6, category = $7, code = $8, updated_at = now()
		WHERE id = $1 AND company_id = $2
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		product.ID, product.CompanyID, product.Name, product.Description, product.Price,
		product.Stock, product.Category, product.Code,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// SetStatus cambia el status de un producto.
func (r *ProductRepo) SetStatus(ctx context.Context, companyID, id int64, status entity.ProductStatus) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET status = $3, updated_at = now() WHERE id = $1 AND company_id = $2`,
		id, companyID, string(status))
	if err != nil {
		return fmt.Errorf("set product status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStatusMany cambia el status en bloque; ignora ids ajenos, borrados o ya en ese status.
func (r *ProductRepo) SetStatusMany(ctx context.Context, companyID int64, ids []int64, status entity.ProductStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET status = $3, updated_at = now()
		WHERE company_id = $1 AND id = ANY($2) AND status <> 'deleted' AND status <> $3`,
		companyID, ids, string(status))
	if err != nil {
		return 0, fmt.Errorf("set products status: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// CountOwned cuenta los ids de la empresa que no están borrados.
func (r *ProductRepo) CountOwned(ctx context.Context, companyID int64, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE company_id = $1 AND id = ANY($2) AND status <> 'deleted'`,
		companyID, ids).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count owned products: %w", err)
	}
	return n, nil
}

// List productos de la empresa en un status, con la primera foto.
func (r *ProductRepo) List(ctx context.Context, companyID int64, f repository.ProductFilter) ([]*entity.ProductSummary, error) {
	status := f.Status
	if status == "" {
		status = entity.ProductActive
	}
	order, ok := productOrder[f.Sort]
	if !ok {
		order = productOrder[repository.SortNameAsc]
	}
	args := []any{companyID, string(status)}
	where := `p.company_id = $1 AND p.status = $2`
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where += ` AND (p.name ILIKE $3 OR p.code ILIKE $3 OR p.category ILIKE $3)`
	}
	query := `
		SELECT p.id, p.name, p.description, p.price, p.stock, p.category, p.code, p.status, p.updated_at,
		       COALESCE((SELECT ph.url FROM product_photos ph WHERE ph.product_id = p.id ORDER BY ph.id LIMIT 1), '')
		FROM products p
		WHERE ` + where + `
		ORDER BY ` + order
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductSummary
	for rows.Next() {
		var s entity.ProductSummary
		var st string
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.Stock, &s.Category, &s.Code,
			&st, &s.UpdatedAt, &s.PhotoURL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		s.Status = entity.ProductStatus(st)
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Categories categorías distintas de los productos activos.
func (r *ProductRepo) Categories(ctx context.Context, companyID int64) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT DISTINCT category FROM products
		WHERE company_id = $1 AND status = 'active' AND category <> ''
		ORDER BY category`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DecrementStock baja el stock solo si el producto está activo y alcanza; la condición
// en el WHERE hace la operación atómica frente a vendas concurrentes.
func (r *ProductRepo) DecrementStock(ctx context.Context, companyID, id int64, qty int) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `
		UPDATE products SET stock = stock - $3, updated_at = now()
		WHERE id = $1 AND company_id = $2 AND status = 'active' AND stock >= $3
		RETURNING `+productColumns, id, companyID, qty))
	if err == nil {
		return p, nil
	}
	if !isNoRows(err) {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}
	// Sin fila: distinguir producto inexistente/inactivo de stock insuficiente.
	var exists bool
	if err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1 AND company_id = $2 AND status = 'active')`,
		id, companyID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrInsufficientStock
}

// IncrementStock devuelve unidades al stock (cancelamento de venda). Aplica a cualquier status.
func (r *ProductRepo) IncrementStock(ctx context.Context, companyID, id int64, qty int) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock = stock + $3, updated_at = now() WHERE id = $1 AND company_id = $2`,
		id, companyID, qty)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Invalid("quantidade", "estoque inválido")
		}
		return fmt.Errorf("increment stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ── fotos ────────────────────────────────────────────────────────────────────

var _ repository.ProductPhotoRepository = (*ProductPhotoRepo)(nil)

// ProductPhotoRepo filas de product_photos.
type ProductPhotoRepo struct {
	q Querier
}

// NewProductPhotoRepository construye el adaptador. Pasar pool o tx.
func NewProductPhotoRepository(q Querier) *ProductPhotoRepo {
	return &ProductPhotoRepo{q: q}
}

// Create inserta la foto y asigna ID.
func (r *ProductPhotoRepo) Create(ctx context.Context, photo *entity.ProductPhoto) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO product_photos (product_id, url, public_id) VALUES ($1, $2, $3) RETURNING id`,
		photo.ProductID, photo.URL, photo.PublicID).Scan(&photo.ID)
	if err != nil {
		return fmt.Errorf("insert product photo: %w", err)
	}
	return nil
}

func collectPhotos(rows pgx.Rows) ([]entity.ProductPhoto, error) {
	defer rows.Close()
	var out []entity.ProductPhoto
	for rows.Next() {
		var ph entity.ProductPhoto
		if err := rows.Scan(&ph.ID, &ph.ProductID, &ph.URL, &ph.PublicID); err != nil {
			return nil, fmt.Errorf("scan product photo: %w", err)
		}
		out = append(out, ph)
	}
	return out, rows.Err()
}

// ListByProduct fotos del producto en orden de carga.
func (r *ProductPhotoRepo) ListByProduct(ctx context.Context, productID int64) ([]entity.ProductPhoto, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, product_id, url, public_id FROM product_photos WHERE product_id = $1 ORDER BY id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list product photos: %w", err)
	}
	return collectPhotos(rows)
}

// ListByProducts fotos de varios productos agrupadas por producto.
func (r *ProductPhotoRepo) ListByProducts(ctx context.Context, productIDs []int64) (map[int64][]entity.ProductPhoto, error) {
	out := make(map[int64][]entity.ProductPhoto)
	if len(productIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT id, product_id, url, public_id FROM product_photos WHERE product_id = ANY($1) ORDER BY id`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list product photos: %w", err)
	}
	photos, err := collectPhotos(rows)
	if err != nil {
		return nil, err
	}
	for _, ph := range photos {
		out[ph.ProductID] = append(out[ph.ProductID], ph)
	}
	return out, nil
}

// CountByProduct cantidad de fotos del producto.
func (r *ProductPhotoRepo) CountByProduct(ctx context.Context, productID int64) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM product_photos WHERE product_id = $1`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count product photos: %w", err)
	}
	return n, nil
}

// UpdateLocation registra el nuevo public_id/url tras mover la foto.
func (r *ProductPhotoRepo) UpdateLocation(ctx context.Context, id int64, publicID, url string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE product_photos SET public_id = $2, url = $3 WHERE id = $1`, id, publicID, url)
	if err != nil {
		return fmt.Errorf("update product photo: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra fotos del producto y devuelve las filas borradas.
func (r *ProductPhotoRepo) Delete(ctx context.Context, productID int64, ids []int64) ([]entity.ProductPhoto, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		DELETE FROM product_photos WHERE product_id = $1 AND id = ANY($2)
		RETURNING id, product_id, url, public_id`, productID, ids)
	if err != nil {
		return nil, fmt.Errorf("delete product photos: %w", err)
	}
	return collectPhotos(rows)
}

// DeleteByProducts borra todas las fotos de los productos.
func (r *ProductPhotoRepo) DeleteByProducts(ctx context.Context, productIDs []int64) ([]entity.ProductPhoto, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		DELETE FROM product_photos WHERE product_id = ANY($1)
		RETURNING id, product_id, url, public_id`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("delete product photos: %w", err)
	}
	return collectPhotos(rows)
}
