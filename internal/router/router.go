package router

import (
	"fmt"
	"time"

	"caffito/internal/config"
	"caffito/internal/handler"
	"caffito/internal/infra"
	"caffito/internal/middleware"
	"caffito/internal/model"
	"caffito/internal/pos"
	"caffito/internal/pricing"
	"caffito/internal/repository"
	"caffito/internal/service"
	"caffito/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	todos       = []string{model.RolCajero, model.RolSupervisor, model.RolAdministrador}
	supervision = []string{model.RolSupervisor, model.RolAdministrador}
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, printCB *infra.CircuitBreaker) (*gin.Engine, error) {
	interes, err := cfg.Interes()
	if err != nil {
		return nil, fmt.Errorf("INTERES_TARJETA_PCT: %w", err)
	}
	mayorista, err := cfg.Mayorista()
	if err != nil {
		return nil, fmt.Errorf("PUNTOS_MAYORISTA: %w", err)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Origenes()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimit, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	historialRepo := repository.NewHistorialPrecioRepository(db)
	movimientoRepo := repository.NewMovimientoStockRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	marcaRepo := repository.NewMarcaRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	cuentaRepo := repository.NewCuentaCorrienteRepository(db)
	facturaRepo := repository.NewFacturaRepository(db)
	tipoPagoRepo := repository.NewTipoPagoRepository(db)
	promocionRepo := repository.NewPromocionRepository(db)
	carritos := repository.NewRedisCarritoStore(rdb, time.Duration(cfg.CarritoTTLHours)*time.Hour)

	// ── Services ─────────────────────────────────────────────────────────────
	calc := pricing.NewCalculadora(pricing.Politica{PuntosMayorista: mayorista})
	dispatcher := worker.NewDispatcher(rdb)

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, historialRepo, calc, rdb,
		time.Duration(cfg.PrecioCacheSeconds)*time.Second)
	stockSvc := service.NewStockService(productoRepo, movimientoRepo)
	catalogoSvc := service.NewCatalogoService(productoRepo)
	cajaSvc := service.NewCajaService(cajaRepo)
	proveedorSvc := service.NewProveedorService(proveedorRepo, productoRepo, historialRepo, calc)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	marcaSvc := service.NewMarcaService(marcaRepo)
	clienteSvc := service.NewClienteService(clienteRepo)
	cuentaSvc := service.NewCuentaCorrienteService(clienteRepo, cuentaRepo, cajaRepo)
	tipoPagoSvc := service.NewTipoPagoService(tipoPagoRepo)
	promocionSvc := service.NewPromocionService(promocionRepo)
	facturaSvc := service.NewFacturaService(service.FacturaDeps{
		Facturas:    facturaRepo,
		Productos:   productoRepo,
		Movimientos: movimientoRepo,
		Caja:        cajaRepo,
		Clientes:    clienteRepo,
		Cuentas:     cuentaRepo,
	}, dispatcher, cfg.NombreNegocio, cfg.PDFStoragePath)
	posSvc := service.NewPosService(service.PosDeps{
		Carritos:    carritos,
		Productos:   productoRepo,
		Clientes:    clienteSvc,
		TiposPago:   tipoPagoSvc,
		Promociones: promocionSvc,
		Facturas:    facturaSvc,
	}, pos.Politica{InteresTarjetaPct: interes})

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	stockH := handler.NewStockHandler(stockSvc)
	catalogoH := handler.NewCatalogoHandler(catalogoSvc)
	historialH := handler.NewHistorialPreciosHandler(productoSvc)
	consultaH := handler.NewConsultaPreciosHandler(productoSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	marcasH := handler.NewMarcasHandler(marcaSvc)
	clientesH := handler.NewClientesHandler(clienteSvc, cuentaSvc)
	tiposPagoH := handler.NewTiposPagoHandler(tipoPagoSvc)
	promocionesH := handler.NewPromocionesHandler(promocionSvc)
	facturasH := handler.NewFacturasHandler(facturaSvc)
	posH := handler.NewPosHandler(posSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, printCB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check terminal, no auth
	r.GET("/v1/precio/:codigo", consultaH.GetPrecioPorCodigo)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	cualquiera := middleware.RequireRole(todos...)
	supervisor := middleware.RequireRole(supervision...)
	admin := middleware.RequireRole(model.RolAdministrador)

	// Register
	carrito := v1.Group("/pos/carritos", cualquiera)
	{
		carrito.POST("", posH.Nuevo)
		carrito.GET("/:id", posH.Obtener)
		carrito.DELETE("/:id", posH.Cancelar)
		carrito.POST("/:id/escanear", posH.Escanear)
		carrito.POST("/:id/renglones", posH.AgregarRenglon)
		carrito.PATCH("/:id/renglones/:idx", posH.CambiarCantidad)
		carrito.DELETE("/:id/renglones/:idx", posH.QuitarRenglon)
		carrito.PUT("/:id/descuento", posH.AplicarDescuento)
		carrito.PUT("/:id/promocion", posH.AplicarPromocion)
		carrito.DELETE("/:id/promocion", posH.QuitarPromocion)
		carrito.PUT("/:id/metodo-pago", posH.SeleccionarMetodo)
		carrito.PUT("/:id/cliente", posH.SeleccionarCliente)
		carrito.PUT("/:id/comprobante", posH.SetComprobante)
		carrito.POST("/:id/pagos", posH.AgregarPago)
		carrito.DELETE("/:id/pagos/:idx", posH.QuitarPago)
		carrito.POST("/:id/finalizar", posH.Finalizar)
	}

	fact := v1.Group("/facturas")
	{
		fact.GET("", cualquiera, facturasH.Listar)
		fact.GET("/:id", cualquiera, facturasH.ObtenerPorID)
		fact.GET("/:id/pdf", cualquiera, facturasH.DescargarPDF)
		fact.POST("/:id/reimprimir", cualquiera, facturasH.Reimprimir)
		fact.POST("/:id/anular", supervisor, facturasH.Anular)
	}

	// Catalog reads are open to every role (register lookups); writes are admin only.
	v1.GET("/productos", cualquiera, productosH.Listar)
	v1.GET("/productos/export", supervisor, catalogoH.Exportar)
	v1.GET("/productos/:id", cualquiera, productosH.ObtenerPorID)
	v1.GET("/productos/:id/historial-precios", cualquiera, historialH.ListarPorProducto)
	v1.PATCH("/productos/:id/stock", supervisor, stockH.Ajustar)
	v1.POST("/productos/etiquetas", supervisor, catalogoH.Etiquetas)
	prods := v1.Group("/productos", admin)
	{
		prods.POST("", productosH.Crear)
		prods.PUT("/:id", productosH.Actualizar)
		prods.DELETE("/:id", productosH.Desactivar)
		prods.PATCH("/:id/reactivar", productosH.Reactivar)
		prods.POST("/:id/precios", productosH.AgregarPrecio)
		prods.PUT("/:id/precios", productosH.EditarPrecio)
		prods.PUT("/:id/proveedor-activo", productosH.SetProveedorActivo)
	}
	v1.GET("/historial-precios", supervisor, historialH.Listar)

	stock := v1.Group("/stock", supervisor)
	{
		stock.GET("/movimientos", stockH.ListarMovimientos)
		stock.GET("/alertas", stockH.Alertas)
	}

	caja := v1.Group("/caja")
	{
		caja.POST("/abrir", cualquiera, cajaH.Abrir)
		caja.POST("/arqueo", cualquiera, cajaH.Arqueo)
		caja.GET("/:id/reporte", cualquiera, cajaH.ObtenerReporte)
		caja.POST("/movimiento", cualquiera, cajaH.RegistrarMovimiento)
		caja.GET("/activa", cualquiera, cajaH.GetActiva)
		caja.GET("/historial", supervisor, cajaH.Historial)
	}

	clientes := v1.Group("/clientes")
	{
		clientes.GET("", cualquiera, clientesH.Listar)
		clientes.POST("", cualquiera, clientesH.Crear)
		clientes.GET("/:id", cualquiera, clientesH.ObtenerPorID)
		clientes.PUT("/:id", supervisor, clientesH.Actualizar)
		clientes.DELETE("/:id", supervisor, clientesH.Desactivar)
		clientes.GET("/:id/cuenta-corriente", cualquiera, clientesH.Movimientos)
		clientes.GET("/:id/cuenta-corriente/saldo", cualquiera, clientesH.Saldo)
		clientes.POST("/:id/cuenta-corriente/pagos", cualquiera, clientesH.RegistrarPago)
	}

	v1.GET("/tipos-pago", cualquiera, tiposPagoH.Listar)
	tipos := v1.Group("/tipos-pago", admin)
	{
		tipos.POST("", tiposPagoH.Crear)
		tipos.PUT("/:id", tiposPagoH.Actualizar)
	}

	v1.GET("/promociones", cualquiera, promocionesH.Listar)
	promos := v1.Group("/promociones", admin)
	{
		promos.POST("", promocionesH.Crear)
		promos.PUT("/:id", promocionesH.Actualizar)
		promos.DELETE("/:id", promocionesH.Eliminar)
	}

	prov := v1.Group("/proveedores", admin)
	{
		prov.POST("", proveedoresH.Crear)
		prov.GET("", proveedoresH.Listar)
		prov.GET("/:id", proveedoresH.ObtenerPorID)
		prov.PUT("/:id", proveedoresH.Actualizar)
		prov.DELETE("/:id", proveedoresH.Eliminar)
		prov.POST("/:id/precios/masivo", proveedoresH.ActualizarPreciosMasivo)
		prov.POST("/:id/precios/importar", proveedoresH.ImportarXLSX)
	}

	usuarios := v1.Group("/usuarios", admin)
	{
		usuarios.POST("", usuariosH.Crear)
		usuarios.GET("", usuariosH.Listar)
		usuarios.PUT("/:id", usuariosH.Actualizar)
		usuarios.DELETE("/:id", usuariosH.Desactivar)
		usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
	}

	v1.GET("/categorias", cualquiera, categoriasH.Listar)
	categorias := v1.Group("/categorias", admin)
	{
		categorias.POST("", categoriasH.Crear)
		categorias.PUT("/:id", categoriasH.Actualizar)
		categorias.DELETE("/:id", categoriasH.Desactivar)
	}

	v1.GET("/marcas", cualquiera, marcasH.Listar)
	marcas := v1.Group("/marcas", admin)
	{
		marcas.POST("", marcasH.Crear)
		marcas.PUT("/:id", marcasH.Actualizar)
		marcas.DELETE("/:id", marcasH.Desactivar)
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, nil
}
