package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/evno/internal/catalog"
	"github.com/hitoshi/evno/internal/metrics"
	"github.com/hitoshi/evno/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	Sessions    SessionIssuer
	AuthConfig  AuthHandlerConfig

	// カタログ・ベンダー
	Resolver      *catalog.Resolver
	VendorService VendorServiceInterface

	// 予約
	BookingService BookingServiceInterface

	// お知らせ
	AnnouncementLister AnnouncementLister

	// ユーザー
	UserService UserServiceInterface

	// メトリクス（nilの場合は/metricsを公開しない）
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS →（認証ルート）Session → CSRF → RateLimit
//
// カタログ検索・お知らせ・認証ルートは認証ミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.Sessions, deps.AuthConfig)
	catalogHandler := NewCatalogHandler(deps.Resolver)
	vendorHandler := NewVendorHandler(deps.VendorService)
	bookingHandler := NewBookingHandler(deps.BookingService)
	announcementHandler := NewAnnouncementHandler(deps.AnnouncementLister)
	userHandler := NewUserHandler(deps.UserService)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Handle("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 認証ルート
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/signin", authHandler.SignIn)
		r.Post("/signout", authHandler.SignOut)
		r.Get("/me", authHandler.Me)
	})

	// カタログ検索（読み取り専用・認証不要）
	r.Get("/api/categories", catalogHandler.ListCategories)
	r.Get("/api/categories/{category}/states", catalogHandler.ListStatesForCategory)
	r.Get("/api/categories/{category}/states/{state}/cities", catalogHandler.ListCitiesForCategoryAndState)
	r.Get("/api/states", catalogHandler.ListStates)
	r.Get("/api/states/{state}/cities", catalogHandler.ListCitiesForState)
	r.Get("/api/vendors", catalogHandler.ListVendors)
	r.Get("/api/vendors/{id}", vendorHandler.Get)

	// お知らせ一覧（認証不要）
	r.Get("/api/announcements", announcementHandler.List)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ベンダー登録（登録専用レート制限を追加）
		r.With(deps.RateLimiter.VendorRegistrationMiddleware()).Post("/api/vendors", vendorHandler.Register)

		// 予約管理
		r.Route("/api/bookings", func(r chi.Router) {
			r.Post("/", bookingHandler.Create)
			r.Get("/", bookingHandler.List)
			r.Delete("/{id}", bookingHandler.Cancel)
		})

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}
