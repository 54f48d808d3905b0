package routes

import (
	"creditbank/config"
	"creditbank/controllers"
	"creditbank/middleware"
	"creditbank/services"
	"creditbank/utils"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
)

// Deps - зависимости HTTP-слоя
type Deps struct {
	Config       *config.Config
	Users        *services.UserService
	Products     *services.ProductService
	Applications *services.CreditApplicationService
	Blacklist    services.TokenBlacklist
	Metrics      *utils.Metrics
}

// NewRouter собирает маршруты API (/api) и сайта
func NewRouter(deps Deps) (*mux.Router, error) {
	cfg := deps.Config
	ttl := time.Duration(cfg.JWT.ExpiresIn) * time.Hour
	metrics := deps.Metrics
	if metrics == nil {
		metrics = utils.GetMetrics()
	}

	loginLimiter := utils.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	submitLimiter := utils.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	// Инициализируем контроллеры
	authController := controllers.NewAuthController(deps.Users, deps.Blacklist, loginLimiter, cfg.JWT.SecretKey, ttl)
	creditController := controllers.NewCreditController(deps.Products, deps.Applications, metrics)
	webController := controllers.NewWebController(deps.Products, deps.Applications, deps.Users, deps.Blacklist, loginLimiter, cfg.JWT.SecretKey, ttl)

	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.LoggingMiddleware(metrics))

	// Публичные маршруты
	api.HandleFunc("/auth/signUp", authController.SignUp).Methods(http.MethodPost)
	api.Handle("/auth/signIn", middleware.RateLimitMiddleware(loginLimiter)(http.HandlerFunc(authController.SignIn))).Methods(http.MethodPost)
	api.HandleFunc("/products", creditController.GetProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id:[0-9]+}", creditController.GetProduct).Methods(http.MethodGet)

	// Защищенные маршруты
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWT.SecretKey, deps.Blacklist, deps.Users))

	protected.HandleFunc("/auth/signOut", authController.SignOut).Methods(http.MethodPost)
	protected.Handle("/applications", middleware.RateLimitMiddleware(submitLimiter)(http.HandlerFunc(creditController.CreateApplication))).Methods(http.MethodPost)
	protected.HandleFunc("/applications", creditController.GetApplications).Methods(http.MethodGet)
	protected.HandleFunc("/applications/{id:[0-9]+}", creditController.GetApplication).Methods(http.MethodGet)
	protected.HandleFunc("/metrics", creditController.GetMetrics).Methods(http.MethodGet)

	// Сайт
	engine, err := newWebEngine(webController, deps, metrics, loginLimiter, submitLimiter)
	if err != nil {
		return nil, err
	}
	router.PathPrefix("/").Handler(engine)

	return router, nil
}

func newWebEngine(web *controllers.WebController, deps Deps, metrics *utils.Metrics, loginLimiter, submitLimiter *utils.RateLimiter) (*gin.Engine, error) {
	tmpl, err := controllers.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки шаблонов: %w", err)
	}

	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)
	engine.Use(
		middleware.Recovery(),
		middleware.Logger(metrics),
		middleware.SessionAuth(deps.Config.JWT.SecretKey, deps.Blacklist, deps.Users),
	)

	engine.GET("/", web.Home)

	protected := engine.Group("/", middleware.LoginRequired(controllers.LoginURL))
	protected.GET("/apply/", web.ApplyPage)
	protected.POST("/apply/", middleware.RateLimit(submitLimiter), web.Apply)
	protected.GET("/applications/", web.Applications)

	accounts := engine.Group("/accounts")
	accounts.GET("/login/", web.LoginPage)
	accounts.POST("/login/", middleware.RateLimit(loginLimiter), web.Login)
	accounts.POST("/logout/", web.Logout)
	accounts.GET("/signup/", web.SignupPage)
	accounts.POST("/signup/", web.Signup)

	return engine, nil
}
