package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-todo-list/internal/config"
	"github.com/pribylovaa/go-todo-list/internal/service"
	"github.com/pribylovaa/go-todo-list/internal/transport/http/handlers"
	"github.com/pribylovaa/go-todo-list/internal/transport/http/middleware"
	"github.com/pribylovaa/go-todo-list/internal/transport/http/tokentransport"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, cfg config.AuthConfig, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	tt := tokentransport.New(cfg)
	h := handlers.New(svc, tt, cfg)
	authn := middleware.Authenticate(svc, tt, cfg)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, authn)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, authn)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, authn middleware.Middleware) {
	// auth (без проверки access-токена: refresh по определению приходит
	// с просроченным access, его проверяет сам сервисный слой).
	r.Post("/auth/signup", h.SignupUser)
	r.Post("/auth/login", h.LoginUser)
	r.Post("/auth/refresh", h.RefreshTokens)
	r.Post("/auth/logout", h.Logout)
	r.Post("/auth/verify/send", h.SendVerifyCode)
	r.Post("/auth/verify", h.VerifyEmail)

	// защищённые роуты
	r.Group(func(pr chi.Router) {
		pr.Use(authn)

		pr.Get("/auth/userinfo", h.UserInfo)

		pr.Get("/todos", h.ListItems)
		pr.Post("/todos", h.CreateItem)
		pr.Get("/todos/{id}", h.ItemByID)
		pr.Put("/todos/{id}", h.UpdateItem)
		pr.Delete("/todos/{id}", h.DeleteItem)
	})
}
