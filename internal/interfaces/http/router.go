package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      authService
	CompanyUC   companyService
	UserUC      userService
	PeriodUC    periodService
	ProductUC   productService
	SaleUC      saleService
	ClientUC    clientService
	DashboardUC dashboardService
	CatalogUC   publicCatalogService
	// Verificación por petición de que la empresa sigue activa; nil = solo exige company_id.
	TenantChecker tenantChecker

	JWTSecret string
	// Zona para los filtros de fecha de vendas.
	Location *time.Location
	// Peticiones por minuto y por IP en login/cadastro/senha. 0 = sin límite.
	AuthRateLimit int
	// Exposición Prometheus; nil = sin /metrics.
	Metrics http.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")
	authLimit := rateLimit(deps.AuthRateLimit)

	authHandler := NewAuthHandler(deps.AuthUC)
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	userHandler := NewUserHandler(deps.PeriodUC, deps.UserUC)
	catalogHandler := NewCatalogHandler(deps.CatalogUC)

	// Público
	api.Post("/empresas/registrar-publico", authLimit, authHandler.Register)
	api.Post("/usuarios/login", authLimit, authHandler.Login)
	api.Post("/usuarios/esqueci-senha", authLimit, authHandler.ForgotPassword)
	api.Post("/usuarios/redefinir-senha", authLimit, authHandler.ResetPassword)
	api.Get("/public/catalogo/:slug", catalogHandler.BySlug)

	// Rutas de empresa (requieren Bearer Token de owner o funcionário)
	tenantGate := RequireTenant()
	if deps.TenantChecker != nil {
		tenantGate = RequireActiveTenant(deps.TenantChecker)
	}
	tenant := []fiber.Handler{
		AuthMiddleware(deps.JWTSecret),
		RequireRole(jwt.RoleOwner, jwt.RoleEmployee),
		tenantGate,
	}
	ownerOnly := RequireRole(jwt.RoleOwner)

	usuarios := api.Group("/usuarios", tenant...)
	usuarios.Get("/perfil", userHandler.Profile)
	usuarios.Put("/minha-senha", authHandler.ChangePassword)
	usuarios.Post("/fechar-periodo", userHandler.ClosePeriod)
	usuarios.Get("/historico-periodos", userHandler.History)
	usuarios.Get("/", ownerOnly, userHandler.List)
	usuarios.Post("/", ownerOnly, userHandler.CreateEmployee)

	productHandler := NewProductHandler(deps.ProductUC)
	produtos := api.Group("/produtos", tenant...)
	produtos.Get("/", productHandler.List)
	produtos.Get("/inativos", productHandler.ListInactive)
	produtos.Post("/", productHandler.Create)
	produtos.Post("/inativar-em-massa", productHandler.DeactivateMany)
	produtos.Post("/excluir-em-massa", productHandler.DeleteMany)
	produtos.Post("/importar-csv", productHandler.ImportCSV)
	produtos.Get("/:id", productHandler.GetByID)
	produtos.Put("/:id", productHandler.Update)
	produtos.Delete("/:id", productHandler.Deactivate)
	produtos.Put("/:id/reativar", productHandler.Reactivate)

	saleHandler := NewSaleHandler(deps.SaleUC, deps.Location)
	vendas := api.Group("/vendas", tenant...)
	vendas.Get("/", saleHandler.List)
	vendas.Post("/", saleHandler.Create)
	vendas.Get("/:id", saleHandler.GetByID)
	vendas.Get("/:id/recibo", saleHandler.Receipt)
	vendas.Delete("/:id", saleHandler.Cancel)

	clientHandler := NewClientHandler(deps.ClientUC)
	clientes := api.Group("/clientes", tenant...)
	clientes.Get("/", clientHandler.List)
	clientes.Post("/", clientHandler.Create)
	clientes.Get("/:id", clientHandler.GetByID)
	clientes.Get("/:id/detalhes", clientHandler.Details)
	clientes.Put("/:id", clientHandler.Update)
	clientes.Delete("/:id", clientHandler.Delete)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	api.Get("/dashboard", append(tenant, dashboardHandler.GetSummary)...)

	// Empresas: meus-dados para la empresa, el resto solo superadmin.
	empresas := api.Group("/empresas", AuthMiddleware(deps.JWTSecret))
	empresas.Get("/meus-dados", RequireRole(jwt.RoleOwner, jwt.RoleEmployee), tenantGate, companyHandler.Mine)
	superadmin := RequireRole(jwt.RoleSuperadmin)
	empresas.Get("/ativas", superadmin, companyHandler.ListActive)
	empresas.Get("/pendentes", superadmin, companyHandler.ListPending)
	empresas.Get("/:id", superadmin, companyHandler.GetByID)
	empresas.Put("/:id/ativar", superadmin, companyHandler.Activate)
	empresas.Put("/:id/inativar", superadmin, companyHandler.Deactivate)
	empresas.Put("/:id/redefinir-senha", superadmin, companyHandler.ResetPassword)
	empresas.Post("/:id/pagamentos", superadmin, companyHandler.RecordPayment)
}

func rateLimit(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "TOO_MANY_REQUESTS",
				Message: "muitas tentativas, aguarde um minuto",
			})
		},
	})
}
