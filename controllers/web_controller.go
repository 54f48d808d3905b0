package controllers

import (
	"creditbank/middleware"
	"creditbank/models"
	"creditbank/services"
	"creditbank/utils"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	// LoginURL - страница входа, куда перенаправляются анонимные пользователи
	LoginURL = "/accounts/login/"

	flashCookie = "flash"

	passwordTooLongMessage = "Пароль слишком длинный: не более 72 байт."
)

// SignupForm - форма регистрации на сайте
type SignupForm struct {
	Username  string `form:"username" validate:"required,min=3,max=150,username"`
	Email     string `form:"email" validate:"omitempty,email,max=100"`
	Password1 string `form:"password1" validate:"required,min=8,max=72"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

// WebController обслуживает HTML-страницы сайта
type WebController struct {
	products     *services.ProductService
	applications *services.CreditApplicationService
	users        *services.UserService
	blacklist    services.TokenBlacklist
	loginLimiter *utils.RateLimiter
	validate     *validator.Validate
	secret       string
	ttl          time.Duration
}

// NewWebController создает новый экземпляр WebController
func NewWebController(
	products *services.ProductService,
	applications *services.CreditApplicationService,
	users *services.UserService,
	blacklist services.TokenBlacklist,
	loginLimiter *utils.RateLimiter,
	secret string,
	ttl time.Duration,
) *WebController {
	return &WebController{
		products:     products,
		applications: applications,
		users:        users,
		blacklist:    blacklist,
		loginLimiter: loginLimiter,
		validate:     services.NewValidator(),
		secret:       secret,
		ttl:          ttl,
	}
}

// render добавляет в данные страницы текущего пользователя и flash-сообщение
func (wc *WebController) render(c *gin.Context, status int, name string, data gin.H) {
	if claims, ok := middleware.CurrentUser(c); ok {
		data["User"] = claims
	}
	if msg, err := c.Cookie(flashCookie); err == nil && msg != "" {
		data["Flash"] = msg
		c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = services.FieldErrors{}
	}
	c.HTML(status, name, data)
}

func (wc *WebController) serverError(c *gin.Context, err error) {
	utils.LogError("Ошибка обработки %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	utils.GetMetrics().RecordError(err)
	_ = c.Error(err)
	wc.render(c, http.StatusInternalServerError, "error.html", gin.H{
		"Title":   "Ошибка сервера",
		"Message": "Не удалось выполнить запрос. Попробуйте позже.",
	})
}

func (wc *WebController) setFlash(c *gin.Context, msg string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, msg, 60, "/", "", false, true)
}

// Home показывает главную страницу со списком продуктов
func (wc *WebController) Home(c *gin.Context) {
	products, err := wc.products.List(c.Request.Context())
	if err != nil {
		wc.serverError(c, err)
		return
	}
	wc.render(c, http.StatusOK, "home.html", gin.H{
		"Title":    "Главная",
		"Products": products,
	})
}

func (wc *WebController) renderApply(c *gin.Context, status int, form services.ApplicationForm, fieldErrors services.FieldErrors) {
	products, err := wc.products.List(c.Request.Context())
	if err != nil {
		wc.serverError(c, err)
		return
	}
	wc.render(c, status, "apply.html", gin.H{
		"Title":    "Заявка на кредит",
		"Products": products,
		"Form":     form,
		"Selected": strings.TrimSpace(form.Product.String()),
		"Errors":   fieldErrors,
	})
}

// ApplyPage показывает форму заявки. Продукт можно выбрать заранее параметром ?product=
func (wc *WebController) ApplyPage(c *gin.Context) {
	form := services.ApplicationForm{}
	form.Product = jsonNumber(c.Query("product"))
	wc.renderApply(c, http.StatusOK, form, services.FieldErrors{})
}

// Apply принимает заявку из формы
func (wc *WebController) Apply(c *gin.Context) {
	claims, _ := middleware.CurrentUser(c)

	var form services.ApplicationForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		wc.renderApply(c, http.StatusOK, form, services.FieldErrors{"__all__": {"Неверные данные формы."}})
		return
	}

	app, err := wc.applications.Submit(c.Request.Context(), claims.UserID, form)
	if err != nil {
		var fieldErrors services.FieldErrors
		if errors.As(err, &fieldErrors) {
			wc.renderApply(c, http.StatusOK, form, fieldErrors)
			return
		}
		wc.serverError(c, err)
		return
	}

	wc.setFlash(c, "Заявка №"+uintString(app.ID)+" принята. Мы свяжемся с вами по телефону.")
	c.Redirect(http.StatusFound, "/")
}

// Applications показывает заявки текущего пользователя
func (wc *WebController) Applications(c *gin.Context) {
	claims, _ := middleware.CurrentUser(c)

	apps, err := wc.applications.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		wc.serverError(c, err)
		return
	}
	wc.render(c, http.StatusOK, "applications.html", gin.H{
		"Title":        "Мои заявки",
		"Applications": apps,
	})
}

// LoginPage показывает форму входа
func (wc *WebController) LoginPage(c *gin.Context) {
	wc.render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Вход",
		"Next":  SafeNext(c.Query("next")),
	})
}

// Login проверяет имя пользователя и пароль и открывает сессию
func (wc *WebController) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := SafeNext(c.PostForm("next"))

	fieldErrors := services.FieldErrors{}
	if username == "" {
		fieldErrors.Add("username", "Обязательное поле.")
	}
	if password == "" {
		fieldErrors.Add("password", "Обязательное поле.")
	}

	var user *models.User
	if len(fieldErrors) == 0 {
		var err error
		user, err = wc.users.Authenticate(c.Request.Context(), username, password)
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			fieldErrors.Add("__all__", "Пожалуйста, введите правильные имя пользователя и пароль.")
		case err != nil:
			wc.serverError(c, err)
			return
		}
	}

	if len(fieldErrors) > 0 {
		wc.render(c, http.StatusOK, "login.html", gin.H{
			"Title":    "Вход",
			"Next":     next,
			"Username": username,
			"Errors":   fieldErrors,
		})
		return
	}

	if err := wc.startSession(c, user); err != nil {
		wc.serverError(c, err)
		return
	}
	if wc.loginLimiter != nil {
		wc.loginLimiter.Reset(c.ClientIP())
	}

	if next == "" {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

// Logout отзывает токен сессии и удаляет cookie
func (wc *WebController) Logout(c *gin.Context) {
	if claims, ok := middleware.CurrentUser(c); ok {
		if err := wc.blacklist.Revoke(c.Request.Context(), claims.ID, claims.TokenTTL()); err != nil {
			wc.serverError(c, err)
			return
		}
	}
	middleware.ClearSessionCookie(c)
	c.Redirect(http.StatusFound, "/")
}

// SignupPage показывает форму регистрации
func (wc *WebController) SignupPage(c *gin.Context) {
	wc.render(c, http.StatusOK, "signup.html", gin.H{
		"Title": "Регистрация",
		"Form":  SignupForm{},
	})
}

// Signup регистрирует пользователя и сразу открывает сессию
func (wc *WebController) Signup(c *gin.Context) {
	var form SignupForm
	fieldErrors := services.FieldErrors{}
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		fieldErrors.Add("__all__", "Неверные данные формы.")
	} else if err := wc.validate.Struct(form); err != nil {
		fieldErrors = services.ToFieldErrors(err)
	}

	var user *models.User
	if len(fieldErrors) == 0 {
		var err error
		user, err = wc.users.CreateUser(c.Request.Context(), services.CreateUserRequest{
			Username: form.Username,
			Email:    form.Email,
			Password: form.Password1,
		})
		switch {
		case errors.Is(err, services.ErrUserExists):
			fieldErrors.Add("username", "Пользователь с таким именем уже существует.")
		case errors.Is(err, services.ErrPasswordTooLong):
			fieldErrors.Add("password1", passwordTooLongMessage)
		case err != nil:
			wc.serverError(c, err)
			return
		}
	}

	if len(fieldErrors) > 0 {
		form.Password1, form.Password2 = "", ""
		wc.render(c, http.StatusOK, "signup.html", gin.H{
			"Title":  "Регистрация",
			"Form":   form,
			"Errors": fieldErrors,
		})
		return
	}

	if err := wc.startSession(c, user); err != nil {
		wc.serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (wc *WebController) startSession(c *gin.Context, user *models.User) error {
	token, _, err := utils.GenerateToken(wc.secret, user.ID, user.Username, wc.ttl)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(c, token, wc.ttl)
	utils.LogInfo("Пользователь %s вошел на сайт", user.Username)
	return nil
}

// SafeNext возвращает адрес для перенаправления после входа, если он
// относится к этому же сайту, иначе пустую строку
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}
