package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/application/sales"
	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
	"github.com/raposo-pdv/pdv-api/pkg/document"
)

// ClientUseCase CRUD de clientes y su historial de compras.
type ClientUseCase struct {
	repo repository.ClientRepository
}

// NewClientUseCase construye el caso de uso con el puerto de persistencia.
func NewClientUseCase(repo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo}
}

// Create da de alta un cliente.
func (uc *ClientUseCase) Create(ctx context.Context, companyID int64, in dto.ClientRequest) (*dto.ClientResponse, error) {
	if err := validateClient(in); err != nil {
		return nil, err
	}
	c := &entity.Client{CompanyID: companyID, CreatedAt: time.Now()}
	applyClient(c, in)
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// Update edita un cliente de la empresa.
func (uc *ClientUseCase) Update(ctx context.Context, companyID, id int64, in dto.ClientRequest) (*dto.ClientResponse, error) {
	if err := validateClient(in); err != nil {
		return nil, err
	}
	c, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	applyClient(c, in)
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// Delete borra el cliente; domain.ErrClientHasSales si tiene vendas.
func (uc *ClientUseCase) Delete(ctx context.Context, companyID, id int64) error {
	if _, err := uc.get(ctx, companyID, id); err != nil {
		return err
	}
	stats, err := uc.repo.Stats(ctx, companyID, id)
	if err != nil {
		return err
	}
	if stats.SalesCount > 0 {
		return domain.ErrClientHasSales
	}
	return uc.repo.Delete(ctx, companyID, id)
}

// List clientes de la empresa, filtrados por nombre, teléfono o documento.
func (uc *ClientUseCase) List(ctx context.Context, companyID int64, search string) ([]dto.ClientResponse, error) {
	list, err := uc.repo.List(ctx, companyID, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toClientResponse(c))
	}
	return out, nil
}

// Get un cliente.
func (uc *ClientUseCase) Get(ctx context.Context, companyID, id int64) (*dto.ClientResponse, error) {
	c, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// Details cliente con total gastado, total a prazo y sus vendas.
func (uc *ClientUseCase) Details(ctx context.Context, companyID, id int64) (*dto.ClientDetailsResponse, error) {
	c, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	stats, err := uc.repo.Stats(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.Sales(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	out := &dto.ClientDetailsResponse{
		Client:         *toClientResponse(c),
		SalesCount:     stats.SalesCount,
		TotalSpent:     stats.TotalSpent,
		OnAccountTotal: stats.OnAccountTotal,
		Sales:          make([]dto.SaleListItem, 0, len(list)),
	}
	for _, s := range list {
		out.Sales = append(out.Sales, sales.ToListItem(s))
	}
	return out, nil
}

func (uc *ClientUseCase) get(ctx context.Context, companyID, id int64) (*entity.Client, error) {
	c, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func validateClient(in dto.ClientRequest) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Invalid("nome", "nome é obrigatório")
	}
	if e := strings.TrimSpace(in.Email); e != "" && !strings.Contains(e, "@") {
		return domain.Invalid("email", "email inválido")
	}
	if doc := strings.TrimSpace(in.Document); doc != "" && document.Validate(doc) != nil {
		return domain.Invalid("cpf", "CPF/CNPJ inválido")
	}
	return nil
}

func applyClient(c *entity.Client, in dto.ClientRequest) {
	c.Name = strings.TrimSpace(in.Name)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c.Document = strings.TrimSpace(in.Document)
	c.Address = strings.TrimSpace(in.Address)
	c.Notes = strings.TrimSpace(in.Notes)
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Document:  c.Document,
		Address:   c.Address,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	}
}
