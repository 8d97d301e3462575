// Package app assembles the storefront services and the HTTP server.
package app

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/furniture_shop/internal/config"
	"github.com/Skotchmaster/furniture_shop/internal/events"
	"github.com/Skotchmaster/furniture_shop/internal/httpserver"
	"github.com/Skotchmaster/furniture_shop/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/furniture_shop/internal/middleware/logging"
	"github.com/Skotchmaster/furniture_shop/internal/repo"
	"github.com/Skotchmaster/furniture_shop/internal/search"
	"github.com/Skotchmaster/furniture_shop/internal/service"
	"github.com/Skotchmaster/furniture_shop/internal/tokens"
)

type Options struct {
	Config config.Config
	DB     *gorm.DB
	Events events.Publisher
	// Search may be nil; catalog search then runs against the database.
	Search search.Index
	Logger *slog.Logger
}

type App struct {
	Echo    *echo.Echo
	Repo    *repo.GormRepo
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Orders  *service.OrderService
}

// CSRFSkipPaths are the endpoints that mint or rotate a session.
var CSRFSkipPaths = []string{
	"/health/live",
	"/health/ready",
	"/api/v1/auth/login",
	"/api/v1/auth/register",
	"/api/v1/auth/refresh",
}

func Common(logger *slog.Logger, cfg config.Config) []echo.MiddlewareFunc {
	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = cfg.CSRFSecure
	csrfCfg.SessionCookie = tokens.AccessCookie
	csrfCfg.SkipPaths = CSRFSkipPaths

	return []echo.MiddlewareFunc{
		echomw.Recover(),
		echomw.RequestID(),
		loggingmw.RequestLogger(logger),
		echomw.CORS(),
		echomw.Secure(),
		csrf.Middleware(csrfCfg),
	}
}

func New(o Options) *App {
	if o.Events == nil {
		o.Events = events.NopPublisher{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	r := repo.New(o.DB)
	authSvc := &service.AuthService{
		Repo:          r,
		Events:        o.Events,
		JWTSecret:     o.Config.JWTAccessSecret,
		RefreshSecret: o.Config.JWTRefreshSecret,
	}
	catalogSvc := &service.CatalogService{Repo: r, Events: o.Events, Search: o.Search}
	orderSvc := &service.OrderService{
		Repo:                  r,
		Events:                o.Events,
		FreeShippingThreshold: o.Config.FreeShippingThreshold,
		ShippingFee:           o.Config.ShippingFee,
		Policy:                service.ParseStatusPolicy(o.Config.OrderStatusPolicy),
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(Common(o.Logger, o.Config)...)

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc, SecureCookies: o.Config.CSRFSecure},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r}},
		OrderHandler:   &httpserver.OrderHTTP{Svc: orderSvc},
		ContactHandler: &httpserver.ContactHTTP{Svc: &service.ContactService{Repo: r, Events: o.Events}},
		AdminHandler: &httpserver.AdminHTTP{
			Svc:       &service.AdminService{Repo: r},
			Inventory: &service.InventoryService{Repo: r},
		},
		JWTSecret: o.Config.JWTAccessSecret,
		Ready:     r.Ping,
	})

	return &App{Echo: e, Repo: r, Auth: authSvc, Catalog: catalogSvc, Orders: orderSvc}
}
