// Package sales implementa el ledger de vendas: alta con baja de stock y pagos, cancelación
// con devolución de stock, consultas y comprobante.
package sales

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/application/ports"
	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
	domsales "github.com/raposo-pdv/pdv-api/internal/domain/sales"
)

// Ledger casos de uso de vendas.
type Ledger struct {
	tx        TxRunner
	sales     repository.SaleRepository
	clients   repository.ClientRepository
	companies repository.CompanyRepository
	receipts  ReceiptGenerator
	observer  Observer
	clock     ports.Clock
	log       zerolog.Logger
}

// NewLedger construye el caso de uso. observer puede ser nil.
func NewLedger(
	tx TxRunner,
	sales repository.SaleRepository,
	clients repository.ClientRepository,
	companies repository.CompanyRepository,
	receipts ReceiptGenerator,
	observer Observer,
	clock ports.Clock,
	log zerolog.Logger,
) *Ledger {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Ledger{
		tx:        tx,
		sales:     sales,
		clients:   clients,
		companies: companies,
		receipts:  receipts,
		observer:  observer,
		clock:     clock,
		log:       log,
	}
}

// Create registra la venda: baja el stock de cada ítem de forma condicional, guarda
// encabezado, ítems con el precio vigente y pagos. Todo o nada.
func (uc *Ledger) Create(ctx context.Context, companyID, userID int64, in dto.CreateSaleRequest) (*dto.CreatedSaleResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.Invalid("itens", "a venda precisa de ao menos um item")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 {
			return nil, domain.Invalid("itens", "produto inválido")
		}
		if it.Quantity <= 0 {
			return nil, domain.Invalid("itens", "quantidade deve ser maior que zero")
		}
	}
	payments := make([]entity.SalePayment, 0, len(in.Payments))
	for _, p := range in.Payments {
		payments = append(payments, entity.SalePayment{Method: p.Method, Amount: p.Amount})
	}
	if err := domsales.ValidatePayments(payments); err != nil {
		return nil, err
	}

	clientID := in.ClientID
	if clientID != nil && *clientID <= 0 {
		clientID = nil
	}
	if domsales.IsOnAccount(payments) && clientID == nil {
		return nil, domain.Invalid("cliente_id", "venda a prazo exige um cliente")
	}
	if clientID != nil {
		c, err := uc.clients.GetByID(ctx, companyID, *clientID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.Invalid("cliente_id", "cliente não encontrado")
		}
	}

	sale := &entity.Sale{
		CompanyID: companyID,
		UserID:    userID,
		ClientID:  clientID,
		SoldAt:    uc.clock.Now(),
		Payments:  payments,
	}
	err := uc.tx.RunSales(ctx, func(sales repository.SaleRepository, products repository.ProductRepository) error {
		sale.Items = make([]entity.SaleItem, 0, len(in.Items))
		for _, it := range in.Items {
			p, err := products.DecrementStock(ctx, companyID, it.ProductID, it.Quantity)
			if err != nil {
				return fmt.Errorf("produto %d: %w", it.ProductID, err)
			}
			sale.Items = append(sale.Items, entity.SaleItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    it.Quantity,
				UnitPrice:   p.Price,
			})
		}
		sale.Total = domsales.Total(sale.Items)
		return sales.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	methods := make([]string, 0, len(payments))
	for _, p := range payments {
		methods = append(methods, p.Method)
	}
	uc.observer.SaleRecorded(sale.Total, methods)
	uc.log.Info().
		Int64("company_id", companyID).
		Int64("user_id", userID).
		Int64("sale_id", sale.ID).
		Str("total", sale.Total.StringFixed(2)).
		Msg("venda registrada")
	return &dto.CreatedSaleResponse{Message: "Venda registrada com sucesso!", SaleID: sale.ID, Total: sale.Total}, nil
}

// Cancel borra la venda y devuelve al stock exactamente las cantidades vendidas.
func (uc *Ledger) Cancel(ctx context.Context, companyID, saleID int64) error {
	var restored int
	err := uc.tx.RunSales(ctx, func(sales repository.SaleRepository, products repository.ProductRepository) error {
		s, err := sales.Lock(ctx, companyID, saleID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		for _, it := range s.Items {
			if err := products.IncrementStock(ctx, companyID, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("devolver estoque do produto %d: %w", it.ProductID, err)
			}
			restored += it.Quantity
		}
		return sales.Delete(ctx, s.ID)
	})
	if err != nil {
		return err
	}
	uc.observer.SaleCancelled()
	uc.log.Info().Int64("company_id", companyID).Int64("sale_id", saleID).Int("items_restored", restored).Msg("venda cancelada")
	return nil
}

// List vendas de la empresa, más recientes primero.
func (uc *Ledger) List(ctx context.Context, companyID int64, f entity.SaleFilter) ([]dto.SaleListItem, error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.Invalid("data_fim", "data final anterior à inicial")
	}
	rows, err := uc.sales.List(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleListItem, 0, len(rows))
	for _, s := range rows {
		out = append(out, ToListItem(s))
	}
	return out, nil
}

// Get detalle de una venda.
func (uc *Ledger) Get(ctx context.Context, companyID, id int64) (*dto.SaleResponse, error) {
	s, err := uc.sales.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return ToResponse(s), nil
}

// Receipt genera el PDF de la venda. Devuelve los bytes y el nombre sugerido del archivo.
func (uc *Ledger) Receipt(ctx context.Context, companyID, id int64) ([]byte, string, error) {
	s, err := uc.sales.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, "", err
	}
	if s == nil {
		return nil, "", domain.ErrNotFound
	}
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: obter empresa: %w", err)
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}
	pdf, err := uc.receipts.GenerateReceipt(company, s)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: gerar pdf: %w", err)
	}
	return pdf, fmt.Sprintf("recibo-venda-%d.pdf", s.ID), nil
}

// ToListItem convierte una venda en la fila del listado.
func ToListItem(s *entity.Sale) dto.SaleListItem {
	methods := make([]string, 0, len(s.Payments))
	for _, p := range s.Payments {
		methods = append(methods, p.Method)
	}
	return dto.SaleListItem{
		ID:         s.ID,
		Total:      s.Total,
		SoldAt:     s.SoldAt,
		ClientName: s.ClientName,
		UserName:   s.UserName,
		Methods:    methods,
	}
}

// ToResponse convierte una venda con ítems y pagos en su detalle.
func ToResponse(s *entity.Sale) *dto.SaleResponse {
	out := &dto.SaleResponse{
		ID:         s.ID,
		Total:      s.Total,
		SoldAt:     s.SoldAt,
		ClientID:   s.ClientID,
		ClientName: s.ClientName,
		UserID:     s.UserID,
		UserName:   s.UserName,
		Items:      make([]dto.SaleItemResponse, 0, len(s.Items)),
		Payments:   make([]dto.SalePaymentResponse, 0, len(s.Payments)),
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal(),
		})
	}
	for _, p := range s.Payments {
		out.Payments = append(out.Payments, dto.SalePaymentResponse{Method: p.Method, Amount: p.Amount})
	}
	return out
}
