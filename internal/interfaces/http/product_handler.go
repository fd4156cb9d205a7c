package http

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/raposo-pdv/pdv-api/internal/application/catalog"
	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/domain"
)

type productService interface {
	Create(ctx context.Context, companyID int64, in dto.CreateProductRequest) (*dto.CreatedProductResponse, error)
	Update(ctx context.Context, companyID, id int64, in dto.UpdateProductRequest) error
	Deactivate(ctx context.Context, companyID, id int64) error
	Reactivate(ctx context.Context, companyID, id int64) error
	DeactivateMany(ctx context.Context, companyID int64, ids []int64) (*dto.BulkResult, error)
	DeletePermanently(ctx context.Context, companyID int64, ids []int64) (*dto.BulkResult, error)
	List(ctx context.Context, companyID int64, sort, search string) ([]dto.ProductListItem, error)
	ListInactive(ctx context.Context, companyID int64) ([]dto.ProductListItem, error)
	Get(ctx context.Context, companyID, id int64) (*dto.ProductResponse, error)
	ImportCSV(ctx context.Context, companyID int64, r io.Reader) (*dto.ImportResult, error)
}

// ProductHandler maneja las peticiones HTTP para productos (protegido).
type ProductHandler struct {
	uc productService
}

// NewProductHandler construye el handler.
func NewProductHandler(uc productService) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary      Cadastrar produto com fotos
// @Tags         produtos
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        nome       formData  string  true   "Nome"
// @Param        preco      formData  string  true   "Preço (12.50 ou 12,50)"
// @Param        estoque    formData  int     false  "Estoque"
// @Param        categoria  formData  string  false  "Categoria"
// @Param        descricao  formData  string  false  "Descrição"
// @Param        codigo     formData  string  false  "Código"
// @Param        imagens    formData  file    false  "Fotos"
// @Success      201  {object}  dto.CreatedProductResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/produtos [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "INVALID_BODY", "envie o produto como multipart/form-data")
	}
	in, err := productInput(form)
	if err != nil {
		return writeError(c, err)
	}
	photos, closeAll, err := photoUploads(form)
	if err != nil {
		return writeError(c, err)
	}
	defer closeAll()

	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), dto.CreateProductRequest{ProductInput: in, Photos: photos})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar produto (campos, fotos novas e fotosParaRemover)
// @Tags         produtos
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id                path      int     true   "ID do produto"
// @Param        fotosParaRemover  formData  string  false  "JSON [{id, public_id}]"
// @Param        imagens           formData  file    false  "Fotos novas"
// @Success      200  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/produtos/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "INVALID_BODY", "envie o produto como multipart/form-data")
	}
	in, err := productInput(form)
	if err != nil {
		return writeError(c, err)
	}
	var remove []dto.PhotoRef
	if raw := strings.TrimSpace(formValue(form, "fotosParaRemover")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &remove); err != nil {
			return badRequest(c, "VALIDATION", "fotosParaRemover deve ser um JSON [{id, public_id}]")
		}
	}
	photos, closeAll, err := photoUploads(form)
	if err != nil {
		return writeError(c, err)
	}
	defer closeAll()

	req := dto.UpdateProductRequest{ProductInput: in, Photos: photos, Remove: remove}
	if err := h.uc.Update(c.UserContext(), GetCompanyID(c), id, req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Produto atualizado com sucesso!"})
}

// GetByID godoc
// @Summary      Obter produto por ID
// @Tags         produtos
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID do produto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/produtos/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar produtos ativos
// @Tags         produtos
// @Security     Bearer
// @Produce      json
// @Param        sortBy  query  string  false  "nome-asc | preco-asc | preco-desc | id-asc | id-desc"
// @Param        busca   query  string  false  "Busca por nome, código ou categoria"
// @Success      200     {array}  dto.ProductListItem
// @Router       /api/produtos [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("sortBy"), c.Query("busca"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListInactive godoc
// @Summary      Listar produtos inativos
// @Tags         produtos
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductListItem
// @Router       /api/produtos/inativos [get]
func (h *ProductHandler) ListInactive(c *fiber.Ctx) error {
	out, err := h.uc.ListInactive(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Inativar produto (fotos vão para a pasta inactive)
// @Tags         produtos
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID do produto"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/produtos/{id} [delete]
func (h *ProductHandler) Deactivate(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.Deactivate(c.UserContext(), GetCompanyID(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Produto inativado com sucesso!"})
}

// Reactivate godoc
// @Summary      Reativar produto
// @Tags         produtos
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID do produto"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/produtos/{id}/reativar [put]
func (h *ProductHandler) Reactivate(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.Reactivate(c.UserContext(), GetCompanyID(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Produto reativado com sucesso!"})
}

// DeactivateMany godoc
// @Summary      Inativar vários produtos
// @Tags         produtos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IDsRequest  true  "ids"
// @Success      200   {object}  dto.BulkResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/produtos/inativar-em-massa [post]
func (h *ProductHandler) DeactivateMany(c *fiber.Ctx) error {
	var in dto.IDsRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo inválido")
	}
	out, err := h.uc.DeactivateMany(c.UserContext(), GetCompanyID(c), in.IDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteMany godoc
// @Summary      Excluir produtos definitivamente (falha se algum já foi vendido)
// @Tags         produtos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IDsRequest  true  "ids"
// @Success      200   {object}  dto.BulkResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/produtos/excluir-em-massa [post]
func (h *ProductHandler) DeleteMany(c *fiber.Ctx) error {
	var in dto.IDsRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo inválido")
	}
	out, err := h.uc.DeletePermanently(c.UserContext(), GetCompanyID(c), in.IDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ImportCSV godoc
// @Summary      Importar produtos de um CSV
// @Tags         produtos
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        arquivo  formData  file  true  "CSV (separador , ou ;)"
// @Success      200      {object}  dto.ImportResult
// @Failure      400      {object}  dto.ErrorResponse
// @Router       /api/produtos/importar-csv [post]
func (h *ProductHandler) ImportCSV(c *fiber.Ctx) error {
	fh, err := c.FormFile("arquivo")
	if err != nil {
		return badRequest(c, "VALIDATION", "envie o arquivo CSV no campo arquivo")
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err)
	}
	defer f.Close()

	out, err := h.uc.ImportCSV(c.UserContext(), GetCompanyID(c), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// productInput lee los campos de texto del formulario. Estoque vacío = 0.
func productInput(form *multipart.Form) (dto.ProductInput, error) {
	in := dto.ProductInput{
		Name:        strings.TrimSpace(formValue(form, "nome")),
		Description: strings.TrimSpace(formValue(form, "descricao")),
		Category:    strings.TrimSpace(formValue(form, "categoria")),
		Code:        strings.TrimSpace(formValue(form, "codigo")),
	}
	price := strings.TrimSpace(formValue(form, "preco"))
	if price == "" {
		return in, domain.Invalid("preco", "preço é obrigatório")
	}
	p, err := catalog.ParseDecimal(price)
	if err != nil {
		return in, domain.Invalid("preco", "preço inválido")
	}
	in.Price = p.Round(2)
	if s := strings.TrimSpace(formValue(form, "estoque")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return in, domain.Invalid("estoque", "estoque deve ser um número inteiro")
		}
		in.Stock = n
	}
	return in, nil
}

// photoUploads abre los archivos de "imagens". closeAll cierra lo abierto.
func photoUploads(form *multipart.Form) ([]dto.PhotoUpload, func(), error) {
	files := form.File["imagens"]
	opened := make([]multipart.File, 0, len(files))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	out := make([]dto.PhotoUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		out = append(out, dto.PhotoUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Content:     f,
		})
	}
	return out, closeAll, nil
}
