package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Estado en memoria con rollback: simula la transacción de PostgreSQL.
// ──────────────────────────────────────────────────────────────────────────────

type memState struct {
	products    map[int64]entity.Product
	photos      map[int64]entity.ProductPhoto
	referenced  map[int64]bool
	nextProduct int64
	nextPhoto   int64
	failPhotoDB bool
}

func newMemState() *memState {
	return &memState{
		products:   map[int64]entity.Product{},
		photos:     map[int64]entity.ProductPhoto{},
		referenced: map[int64]bool{},
	}
}

func (s *memState) clone() memState {
	c := *s
	c.products = make(map[int64]entity.Product, len(s.products))
	for k, v := range s.products {
		c.products[k] = v
	}
	c.photos = make(map[int64]entity.ProductPhoto, len(s.photos))
	for k, v := range s.photos {
		c.photos[k] = v
	}
	return c
}

func (s *memState) addProduct(p entity.Product) {
	if p.ID == 0 {
		s.nextProduct++
		p.ID = s.nextProduct
	} else if p.ID > s.nextProduct {
		s.nextProduct = p.ID
	}
	s.products[p.ID] = p
}

func (s *memState) addPhoto(productID int64, publicID string) int64 {
	s.nextPhoto++
	s.photos[s.nextPhoto] = entity.ProductPhoto{ID: s.nextPhoto, ProductID: productID, PublicID: publicID, URL: "https://cdn.test/" + publicID}
	return s.nextPhoto
}

func (s *memState) photosOf(productID int64) []entity.ProductPhoto {
	var out []entity.ProductPhoto
	for _, ph := range s.photos {
		if ph.ProductID == productID {
			out = append(out, ph)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeTx struct {
	st         *memState
	failCommit bool
}

func (t *fakeTx) RunCatalog(ctx context.Context, fn func(repository.ProductRepository, repository.ProductPhotoRepository, repository.SaleRepository) error) error {
	snap := t.st.clone()
	if err := fn(&memProducts{st: t.st}, &memPhotos{st: t.st}, &memSales{st: t.st}); err != nil {
		*t.st = snap
		return err
	}
	if t.failCommit {
		*t.st = snap
		return errors.New("commit transaction: conexão perdida")
	}
	return nil
}

// ── productos ──

type memProducts struct {
	repository.ProductRepository
	st *memState
}

func (r *memProducts) Create(_ context.Context, p *entity.Product) error {
	r.st.nextProduct++
	p.ID = r.st.nextProduct
	r.st.products[p.ID] = *p
	return nil
}

func (r *memProducts) GetByID(_ context.Context, companyID, id int64) (*entity.Product, error) {
	p, ok := r.st.products[id]
	if !ok || p.CompanyID != companyID {
		return nil, nil
	}
	return &p, nil
}

func (r *memProducts) Lock(ctx context.Context, companyID, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *memProducts) Update(_ context.Context, p *entity.Product) error {
	r.st.products[p.ID] = *p
	return nil
}

func (r *memProducts) SetStatus(_ context.Context, companyID, id int64, status entity.ProductStatus) error {
	p, ok := r.st.products[id]
	if !ok || p.CompanyID != companyID {
		return domain.ErrNotFound
	}
	p.Status = status
	r.st.products[id] = p
	return nil
}

func (r *memProducts) SetStatusMany(_ context.Context, companyID int64, ids []int64, status entity.ProductStatus) (int64, error) {
	var n int64
	for _, id := range ids {
		p, ok := r.st.products[id]
		if !ok || p.CompanyID != companyID || p.Status == entity.ProductDeleted || p.Status == status {
			continue
		}
		p.Status = status
		r.st.products[id] = p
		n++
	}
	return n, nil
}

func (r *memProducts) CountOwned(_ context.Context, companyID int64, ids []int64) (int, error) {
	n := 0
	for _, id := range ids {
		if p, ok := r.st.products[id]; ok && p.CompanyID == companyID && p.Status != entity.ProductDeleted {
			n++
		}
	}
	return n, nil
}

func (r *memProducts) List(_ context.Context, companyID int64, f repository.ProductFilter) ([]*entity.ProductSummary, error) {
	var out []*entity.ProductSummary
	for _, p := range r.st.products {
		if p.CompanyID != companyID || p.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		s := &entity.ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock, Category: p.Category, Code: p.Code, Status: p.Status}
		if photos := r.st.photosOf(p.ID); len(photos) > 0 {
			s.PhotoURL = photos[0].URL
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memProducts) Categories(_ context.Context, companyID int64) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range r.st.products {
		if p.CompanyID == companyID && p.Status == entity.ProductActive && p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ── fotos ──

type memPhotos struct {
	st *memState
}

func (r *memPhotos) Create(_ context.Context, ph *entity.ProductPhoto) error {
	if r.st.failPhotoDB {
		return errors.New("insert product photo: falha simulada")
	}
	r.st.nextPhoto++
	ph.ID = r.st.nextPhoto
	r.st.photos[ph.ID] = *ph
	return nil
}

func (r *memPhotos) ListByProduct(_ context.Context, productID int64) ([]entity.ProductPhoto, error) {
	return r.st.photosOf(productID), nil
}

func (r *memPhotos) ListByProducts(_ context.Context, ids []int64) (map[int64][]entity.ProductPhoto, error) {
	out := map[int64][]entity.ProductPhoto{}
	for _, id := range ids {
		if photos := r.st.photosOf(id); len(photos) > 0 {
			out[id] = photos
		}
	}
	return out, nil
}

func (r *memPhotos) CountByProduct(_ context.Context, productID int64) (int, error) {
	return len(r.st.photosOf(productID)), nil
}

func (r *memPhotos) UpdateLocation(_ context.Context, id int64, publicID, url string) error {
	ph, ok := r.st.photos[id]
	if !ok {
		return domain.ErrNotFound
	}
	ph.PublicID, ph.URL = publicID, url
	r.st.photos[id] = ph
	return nil
}

func (r *memPhotos) Delete(_ context.Context, productID int64, ids []int64) ([]entity.ProductPhoto, error) {
	var out []entity.ProductPhoto
	for _, id := range ids {
		if ph, ok := r.st.photos[id]; ok && ph.ProductID == productID {
			out = append(out, ph)
			delete(r.st.photos, id)
		}
	}
	return out, nil
}

func (r *memPhotos) DeleteByProducts(_ context.Context, productIDs []int64) ([]entity.ProductPhoto, error) {
	var out []entity.ProductPhoto
	for _, pid := range productIDs {
		for _, ph := range r.st.photosOf(pid) {
			out = append(out, ph)
			delete(r.st.photos, ph.ID)
		}
	}
	return out, nil
}

// ── vendas (solo referencias) ──

type memSales struct {
	repository.SaleRepository
	st *memState
}

func (r *memSales) ReferencedProducts(_ context.Context, ids []int64) ([]int64, error) {
	var out []int64
	for _, id := range ids {
		if r.st.referenced[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// ── empresas ──

type fakeCompanies struct {
	repository.CompanyRepository
	byID map[int64]*entity.Company
}

func (r *fakeCompanies) GetByID(_ context.Context, id int64) (*entity.Company, error) {
	return r.byID[id], nil
}

func (r *fakeCompanies) GetBySlug(_ context.Context, slug string) (*entity.Company, error) {
	for _, c := range r.byID {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Storage en memoria con fallos inyectables.
// ──────────────────────────────────────────────────────────────────────────────

type fakeStorage struct {
	mu           sync.Mutex
	objects      map[string]string
	failRename   map[string]bool // por public_id origen
	failUploadAt int             // 1-based; 0 = nunca
	failDelete   bool
	uploads      int
	renames      int
}

func newFakeStorage(existing ...string) *fakeStorage {
	s := &fakeStorage{objects: map[string]string{}, failRename: map[string]bool{}}
	for _, id := range existing {
		s.objects[id] = "img"
	}
	return s
}

func (s *fakeStorage) Upload(_ context.Context, publicID string, content io.Reader, _ string) (*StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	if s.failUploadAt == s.uploads {
		return nil, errors.New("storage: upload recusado")
	}
	b, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	s.objects[publicID] = string(b)
	return &StoredObject{PublicID: publicID, URL: "https://cdn.test/" + publicID}, nil
}

func (s *fakeStorage) Rename(_ context.Context, from, to string) (*StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRename[from] {
		return nil, fmt.Errorf("storage: rename %s falhou", from)
	}
	body, ok := s.objects[from]
	if !ok {
		return nil, fmt.Errorf("storage: %s não existe", from)
	}
	delete(s.objects, from)
	s.objects[to] = body
	s.renames++
	return &StoredObject{PublicID: to, URL: "https://cdn.test/" + to}, nil
}

func (s *fakeStorage) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return errors.New("storage: delete indisponível")
	}
	for _, id := range ids {
		delete(s.objects, id)
	}
	return nil
}

func (s *fakeStorage) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[id]
	return ok
}

func (s *fakeStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// ── cache y reloj ──

type fakeCache struct {
	data        map[string][]byte
	invalidated []string
	gets        int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, slug string) ([]byte, bool, error) {
	c.gets++
	b, ok := c.data[slug]
	return b, ok, nil
}

func (c *fakeCache) Set(_ context.Context, slug string, payload []byte) error {
	c.data[slug] = payload
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, slug string) error {
	c.invalidated = append(c.invalidated, slug)
	delete(c.data, slug)
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = int64(1)
	testSlug      = "tenant-x"
)

type fixture struct {
	st      *memState
	tx      *fakeTx
	storage *fakeStorage
	cache   *fakeCache
	uc      *ProductLifecycle
}

func newFixture(today time.Time, existing ...string) *fixture {
	st := newMemState()
	tx := &fakeTx{st: st}
	storage := newFakeStorage(existing...)
	cache := newFakeCache()
	companies := &fakeCompanies{byID: map[int64]*entity.Company{
		testCompanyID: {ID: testCompanyID, Name: "Tenant X", Slug: testSlug, Active: true},
		2:             {ID: 2, Name: "Outra", Slug: "outra", Active: true},
	}}
	uc := NewProductLifecycle(tx, &memProducts{st: st}, &memPhotos{st: st}, companies, storage, cache, fixedClock{t: today}, zerolog.Nop())
	return &fixture{st: st, tx: tx, storage: storage, cache: cache, uc: uc}
}
