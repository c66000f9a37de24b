package router

import (
	"time"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/authz"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/config"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/handler"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/middleware"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/repository"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/service"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	caiRepo := repository.NewCAIRepository(db)
	facturaRepo := repository.NewFacturaRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo)
	caiSvc := service.NewCAIService(caiRepo)
	cajaSvc := service.NewCajaService(cajaRepo, ventaRepo)
	facturaSvc := service.NewFacturaService(facturaRepo, cfg.PDFStoragePath)
	ventaSvc := service.NewVentaService(
		ventaRepo, productoRepo, caiRepo, cajaRepo, facturaRepo, usuarioRepo,
		dispatcher, cfg.CAIUmbralAviso,
	)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	caiH := handler.NewCAIHandler(caiSvc)
	facturasH := handler.NewFacturasHandler(facturaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. Each endpoint names the capability it needs; the
	// role-to-capability policy lives in the authz package.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/ventas", middleware.Requiere(authz.VentasRegistrar), ventasH.RegistrarVenta)
		v1.GET("/ventas", middleware.Requiere(authz.VentasListar), ventasH.ListarVentas)

		v1.GET("/productos", middleware.Requiere(authz.ProductosLeer), productosH.Listar)
		v1.GET("/productos/:id", middleware.Requiere(authz.ProductosLeer), productosH.Obtener)
		v1.GET("/productos/barcode/:codigo", middleware.Requiere(authz.ProductosLeer), productosH.PorBarcode)
		v1.PATCH("/productos/:id/stock", middleware.Requiere(authz.StockAjustar), productosH.AjustarStock)
		v1.POST("/productos", middleware.Requiere(authz.UsuariosAdmin), productosH.Crear)
		v1.PATCH("/productos/:id", middleware.Requiere(authz.UsuariosAdmin), productosH.Actualizar)

		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", middleware.Requiere(authz.CajaOperar), cajaH.Abrir)
			caja.POST("/cerrar", middleware.Requiere(authz.CajaOperar), cajaH.Cerrar)
			caja.GET("/estado", middleware.Requiere(authz.CajaOperar), cajaH.Estado)
			caja.GET("/historial", middleware.Requiere(authz.CajaVerAjena), cajaH.Historial)
			caja.GET("/:id/movimientos", middleware.Requiere(authz.CajaVerAjena), cajaH.Movimientos)
		}

		cai := v1.Group("/cai")
		{
			cai.GET("/activa", middleware.Requiere(authz.VentasRegistrar), caiH.Activa)
			cai.POST("", middleware.Requiere(authz.CAIAdministrar), caiH.Registrar)
			cai.GET("", middleware.Requiere(authz.CAIAdministrar), caiH.Listar)
			cai.PATCH("/:id/activar", middleware.Requiere(authz.CAIAdministrar), caiH.SetActiva)
		}

		fact := v1.Group("/facturas", middleware.Requiere(authz.FacturasLeer))
		{
			fact.GET("/:venta_id", facturasH.PorVenta)
			fact.GET("/pdf/:id", facturasH.PDF)
		}

		usuarios := v1.Group("/usuarios", middleware.Requiere(authz.UsuariosAdmin))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
