package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	appanalytics "github.com/raposo-pdv/pdv-api/internal/application/analytics"
	"github.com/raposo-pdv/pdv-api/internal/application/auth"
	"github.com/raposo-pdv/pdv-api/internal/application/catalog"
	"github.com/raposo-pdv/pdv-api/internal/application/period"
	"github.com/raposo-pdv/pdv-api/internal/application/ports"
	"github.com/raposo-pdv/pdv-api/internal/application/sales"
	"github.com/raposo-pdv/pdv-api/internal/application/usecase"
	infracache "github.com/raposo-pdv/pdv-api/internal/infrastructure/cache"
	inframail "github.com/raposo-pdv/pdv-api/internal/infrastructure/mail"
	"github.com/raposo-pdv/pdv-api/internal/infrastructure/metrics"
	infrapdf "github.com/raposo-pdv/pdv-api/internal/infrastructure/pdf"
	"github.com/raposo-pdv/pdv-api/internal/infrastructure/postgres"
	"github.com/raposo-pdv/pdv-api/internal/infrastructure/storage"
	httpRouter "github.com/raposo-pdv/pdv-api/internal/interfaces/http"
	"github.com/raposo-pdv/pdv-api/pkg/config"
	"github.com/raposo-pdv/pdv-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	loc := cfg.App.Location()
	clock := ports.SystemClock{Location: loc}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	m := metrics.New()

	// Almacenamiento de fotos: Cloudinary en producción, disco local en desarrollo.
	var photoStorage catalog.PhotoStorage
	switch cfg.Storage.Driver {
	case "cloudinary":
		cld, err := storage.NewCloudinary(cfg.Storage.CloudinaryCloudName, cfg.Storage.CloudinaryAPIKey, cfg.Storage.CloudinaryAPISecret)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente Cloudinary")
		}
		photoStorage = cld
	default:
		local, err := storage.NewLocal(cfg.Storage.LocalDir, cfg.Storage.LocalBaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("almacenamiento local")
		}
		photoStorage = local
	}
	photoStorage = storage.Instrument(photoStorage, m)

	// Cache del catálogo público: Redis si está configurado.
	var catalogCache catalog.CatalogCache = infracache.NoopCatalogCache{}
	if cfg.Redis.Addr != "" {
		rc := infracache.NewRedisCatalogCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CacheTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, catálogo sin cache")
		} else {
			catalogCache = rc
			defer rc.Close()
		}
		cancel()
	}

	var mailer ports.Mailer
	if cfg.SMTP.Host != "" {
		mailer = inframail.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		mailer = inframail.NewLogMailer(log.Component("mail"))
	}

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	paymentRepo := postgres.NewSubscriptionPaymentRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	photoRepo := postgres.NewProductPhotoRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool, cfg.App.Timezone)
	periodRepo := postgres.NewClosedPeriodRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool, cfg.App.Timezone)
	txRunner := postgres.NewTxRunner(pool, cfg.App.Timezone)

	authUC := auth.NewAuthUseCase(txRunner, userRepo, companyRepo, mailer, clock, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, cfg.App.FrontendURL, log.Component("auth"))
	companyUC := usecase.NewCompanyUseCase(txRunner, companyRepo, userRepo, paymentRepo, clock, log.Component("empresas"))
	userUC := usecase.NewUserUseCase(userRepo, clock, log.Component("usuarios"))
	clientUC := usecase.NewClientUseCase(clientRepo)
	productUC := catalog.NewProductLifecycle(txRunner, productRepo, photoRepo, companyRepo, photoStorage, catalogCache, clock, log.Component("produtos"))
	catalogUC := catalog.NewPublicCatalog(companyRepo, productRepo, photoRepo, catalogCache, log.Component("catalogo"))
	ledger := sales.NewLedger(txRunner, saleRepo, clientRepo, companyRepo, infrapdf.NewMarotoReceiptGenerator(loc), m, clock, log.Component("vendas"))
	periodUC := period.NewEngine(txRunner, userRepo, periodRepo, saleRepo, auth.NewBcryptVerifier(userRepo), m, clock, log.Component("periodos"))
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo, clock)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    cfg.HTTP.BodyLimitMB << 20,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	app.Use(m.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Swagger UI en local: http://localhost:<port>/docs (solo si se generó docs/swagger.json)
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "PDV API",
		}))
	}

	if cfg.Storage.Driver == "local" {
		app.Static("/uploads", cfg.Storage.LocalDir)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db_unavailable", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		CompanyUC:     companyUC,
		UserUC:        userUC,
		PeriodUC:      periodUC,
		ProductUC:     productUC,
		SaleUC:        ledger,
		ClientUC:      clientUC,
		DashboardUC:   dashboardUC,
		CatalogUC:     catalogUC,
		TenantChecker: companyUC,
		JWTSecret:     cfg.JWT.Secret,
		Location:      loc,
		AuthRateLimit: cfg.HTTP.AuthRateLimit,
		Metrics:       m.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
