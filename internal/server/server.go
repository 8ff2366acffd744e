package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/routewise/routewise/internal/audit"
	auditdomain "github.com/routewise/routewise/internal/audit/domain"
	"github.com/routewise/routewise/internal/auth"
	authdomain "github.com/routewise/routewise/internal/auth/domain"
	"github.com/routewise/routewise/internal/authorization"
	"github.com/routewise/routewise/internal/config"
	"github.com/routewise/routewise/internal/driver"
	driverdomain "github.com/routewise/routewise/internal/driver/domain"
	"github.com/routewise/routewise/internal/hotelbooking"
	hotelbookingdomain "github.com/routewise/routewise/internal/hotelbooking/domain"
	"github.com/routewise/routewise/internal/invoice"
	invoicedomain "github.com/routewise/routewise/internal/invoice/domain"
	"github.com/routewise/routewise/internal/module"
	moduledomain "github.com/routewise/routewise/internal/module/domain"
	"github.com/routewise/routewise/internal/observability"
	obslogger "github.com/routewise/routewise/internal/observability/logger"
	obsmetrics "github.com/routewise/routewise/internal/observability/metrics"
	obstracing "github.com/routewise/routewise/internal/observability/tracing"
	"github.com/routewise/routewise/internal/providers"
	"github.com/routewise/routewise/internal/providers/flight"
	"github.com/routewise/routewise/internal/providers/pdf"
	"github.com/routewise/routewise/internal/ratelimit"
	"github.com/routewise/routewise/internal/reservation"
	reservationdomain "github.com/routewise/routewise/internal/reservation/domain"
	"github.com/routewise/routewise/internal/tenant"
	tenantdomain "github.com/routewise/routewise/internal/tenant/domain"
	"github.com/routewise/routewise/internal/tourbooking"
	tourbookingdomain "github.com/routewise/routewise/internal/tourbooking/domain"
	"github.com/routewise/routewise/internal/user"
	userdomain "github.com/routewise/routewise/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	auth.Module,
	tenant.Module,
	user.Module,
	module.Module,
	providers.Module,
	reservation.Module,
	driver.Module,
	tourbooking.Module,
	hotelbooking.Module,
	invoice.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, gatherer)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	authsvc         authdomain.Service
	authzSvc        authorization.Service
	auditSvc        auditdomain.Service
	tenantSvc       tenantdomain.Service
	userSvc         userdomain.Service
	moduleSvc       moduledomain.Service
	reservationSvc  reservationdomain.Service
	driverSvc       driverdomain.Service
	tourBookingSvc  tourbookingdomain.Service
	hotelBookingSvc hotelbookingdomain.Service
	invoiceSvc      invoicedomain.Service
	pdfProvider     pdf.Provider
	flightProvider  flight.Provider
	obsMetrics      *obsmetrics.Metrics
	statusLimiter   *ratelimit.PublicStatusLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	Authsvc         authdomain.Service
	AuthzSvc        authorization.Service
	AuditSvc        auditdomain.Service
	TenantSvc       tenantdomain.Service
	UserSvc         userdomain.Service
	ModuleSvc       moduledomain.Service
	ReservationSvc  reservationdomain.Service
	DriverSvc       driverdomain.Service
	TourBookingSvc  tourbookingdomain.Service
	HotelBookingSvc hotelbookingdomain.Service
	InvoiceSvc      invoicedomain.Service
	PDFProvider     pdf.Provider
	FlightProvider  flight.Provider
	ObsMetrics      *obsmetrics.Metrics            `optional:"true"`
	StatusLimiter   *ratelimit.PublicStatusLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		authsvc:         p.Authsvc,
		authzSvc:        p.AuthzSvc,
		auditSvc:        p.AuditSvc,
		tenantSvc:       p.TenantSvc,
		userSvc:         p.UserSvc,
		moduleSvc:       p.ModuleSvc,
		reservationSvc:  p.ReservationSvc,
		driverSvc:       p.DriverSvc,
		tourBookingSvc:  p.TourBookingSvc,
		hotelBookingSvc: p.HotelBookingSvc,
		invoiceSvc:      p.InvoiceSvc,
		pdfProvider:     p.PDFProvider,
		flightProvider:  p.FlightProvider,
		obsMetrics:      p.ObsMetrics,
		statusLimiter:   p.StatusLimiter,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerPublicRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.Use(s.AuthRequired())
	api.Use(s.TenantContext())

	// -------- Tenants --------
	api.GET("/tenants", s.authorizeTenantAction(authorization.ObjectTenant, authorization.ActionTenantView), s.ListTenants)
	api.POST("/tenants", s.RequireSuper(), s.CreateTenant)
	api.GET("/tenants/:id", s.authorizeTenantAction(authorization.ObjectTenant, authorization.ActionTenantView), s.GetTenantByID)
	api.PATCH("/tenants/:id", s.authorizeTenantAction(authorization.ObjectTenant, authorization.ActionTenantUpdate), s.UpdateTenant)

	// -------- Tenant members --------
	api.GET("/tenants/:id/members", s.authorizeTenantAction(authorization.ObjectTenantMember, authorization.ActionTenantMemberView), s.ListTenantMembers)
	api.POST("/tenants/:id/members", s.authorizeTenantAction(authorization.ObjectTenantMember, authorization.ActionTenantMemberManage), s.AddTenantMember)
	api.PATCH("/tenants/:id/members/:userId", s.authorizeTenantAction(authorization.ObjectTenantMember, authorization.ActionTenantMemberManage), s.UpdateTenantMember)

	// -------- Users --------
	api.GET("/users", s.authorizeTenantAction(authorization.ObjectUser, authorization.ActionUserView), s.ListUsers)
	api.POST("/users", s.authorizeTenantAction(authorization.ObjectUser, authorization.ActionUserCreate), s.CreateUser)
	api.GET("/users/:id", s.authorizeTenantAction(authorization.ObjectUser, authorization.ActionUserView), s.GetUserByID)
	api.PATCH("/users/:id", s.authorizeTenantAction(authorization.ObjectUser, authorization.ActionUserUpdate), s.UpdateUser)

	// -------- User permissions --------
	api.GET("/users/:id/permissions", s.authorizeTenantAction(authorization.ObjectUserPermission, authorization.ActionUserPermissionView), s.ListUserPermissions)
	api.POST("/users/:id/permissions", s.authorizeTenantAction(authorization.ObjectUserPermission, authorization.ActionUserPermissionGrant), s.GrantUserPermission)
	api.DELETE("/users/:id/permissions/:permission", s.authorizeTenantAction(authorization.ObjectUserPermission, authorization.ActionUserPermissionRevoke), s.RevokeUserPermission)

	// -------- Modules --------
	api.GET("/modules", s.authorizeTenantAction(authorization.ObjectModule, authorization.ActionModuleView), s.ListModules)
	api.GET("/tenants/:id/modules", s.authorizeTenantAction(authorization.ObjectModule, authorization.ActionModuleView), s.ListTenantModules)
	api.PUT("/tenants/:id/modules/:module", s.RequireSuper(), s.SetTenantModule)

	// -------- Reservations --------
	transfers := api.Group("", s.RequireModule(moduledomain.NameTransfer))
	transfers.GET("/reservations", s.authorizeTenantAction(authorization.ObjectReservation, authorization.ActionReservationView), s.ListReservations)
	transfers.POST("/reservations", s.authorizeTenantAction(authorization.ObjectReservation, authorization.ActionReservationCreate), s.CreateReservation)
	transfers.GET("/reservations/:id", s.authorizeTenantAction(authorization.ObjectReservation, authorization.ActionReservationView), s.GetReservationByID)
	transfers.PATCH("/reservations/:id", s.authorizeTenantAction(authorization.ObjectReservation, authorization.ActionReservationUpdate), s.UpdateReservation)
	transfers.POST("/reservations/:id/assign-driver", s.authorizeTenantAction(authorization.ObjectReservation, authorization.ActionReservationAssignDriver), s.AssignReservationDriver)
	transfers.POST("/reservations/:id/transition", s.authorizeTenantAction(authorization.ObjectReservation, authorization.ActionReservationTransition), s.TransitionReservation)
	transfers.GET("/reservations/:id/voucher", s.authorizeTenantAction(authorization.ObjectReservation, authorization.ActionReservationView), s.RenderReservationVoucher)
	transfers.GET("/flights/:number", s.authorizeTenantAction(authorization.ObjectReservation, authorization.ActionReservationView), s.GetFlightStatus)

	// -------- Drivers --------
	transfers.GET("/drivers", s.authorizeTenantAction(authorization.ObjectDriver, authorization.ActionDriverView), s.ListDrivers)
	transfers.POST("/drivers", s.authorizeTenantAction(authorization.ObjectDriver, authorization.ActionDriverCreate), s.CreateDriver)
	transfers.GET("/drivers/:id", s.authorizeTenantAction(authorization.ObjectDriver, authorization.ActionDriverView), s.GetDriverByID)
	transfers.PATCH("/drivers/:id", s.authorizeTenantAction(authorization.ObjectDriver, authorization.ActionDriverUpdate), s.UpdateDriver)

	// -------- Tour bookings --------
	tours := api.Group("", s.RequireModule(moduledomain.NameTour))
	tours.GET("/tour-bookings", s.authorizeTenantAction(authorization.ObjectTourBooking, authorization.ActionTourBookingView), s.ListTourBookings)
	tours.POST("/tour-bookings", s.authorizeTenantAction(authorization.ObjectTourBooking, authorization.ActionTourBookingCreate), s.CreateTourBooking)
	tours.GET("/tour-bookings/:id", s.authorizeTenantAction(authorization.ObjectTourBooking, authorization.ActionTourBookingView), s.GetTourBookingByID)
	tours.PATCH("/tour-bookings/:id", s.authorizeTenantAction(authorization.ObjectTourBooking, authorization.ActionTourBookingUpdate), s.UpdateTourBooking)

	// -------- Hotel bookings --------
	hotels := api.Group("", s.RequireModule(moduledomain.NameAccommodation))
	hotels.GET("/hotel-bookings", s.authorizeTenantAction(authorization.ObjectHotelBooking, authorization.ActionHotelBookingView), s.ListHotelBookings)
	hotels.POST("/hotel-bookings", s.authorizeTenantAction(authorization.ObjectHotelBooking, authorization.ActionHotelBookingCreate), s.CreateHotelBooking)
	hotels.GET("/hotel-bookings/:id", s.authorizeTenantAction(authorization.ObjectHotelBooking, authorization.ActionHotelBookingView), s.GetHotelBookingByID)
	hotels.PATCH("/hotel-bookings/:id", s.authorizeTenantAction(authorization.ObjectHotelBooking, authorization.ActionHotelBookingUpdate), s.UpdateHotelBooking)

	// -------- Invoices --------
	invoices := api.Group("", s.RequireModule(moduledomain.NameInvoice))
	invoices.GET("/invoices", s.authorizeTenantAction(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.ListInvoices)
	invoices.POST("/invoices", s.authorizeTenantAction(authorization.ObjectInvoice, authorization.ActionInvoiceCreate), s.CreateInvoice)
	invoices.GET("/invoices/:id", s.authorizeTenantAction(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.GetInvoiceByID)
	invoices.POST("/invoices/:id/issue", s.authorizeTenantAction(authorization.ObjectInvoice, authorization.ActionInvoiceIssue), s.IssueInvoice)
	invoices.POST("/invoices/:id/mark-paid", s.authorizeTenantAction(authorization.ObjectInvoice, authorization.ActionInvoiceMarkPaid), s.MarkInvoicePaid)
	invoices.POST("/invoices/:id/void", s.authorizeTenantAction(authorization.ObjectInvoice, authorization.ActionInvoiceVoid), s.VoidInvoice)
	invoices.GET("/invoices/:id/pdf", s.authorizeTenantAction(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.RenderInvoicePDF)

	// -------- Audit logs --------
	api.GET("/audit-logs", s.authorizeTenantAction(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}

func (s *Server) registerPublicRoutes() {
	s.engine.GET("/status", s.PublicStatusRateLimit(), s.PublicStatus)
}
