package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"creditbank/config"
	"creditbank/database"
	"creditbank/middleware"
	"creditbank/models"
	"creditbank/services"
	"creditbank/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	router  *mux.Router
	db      *database.Database
	user    *models.User
	product *models.CreditProduct
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.SecretKey = testSecret
	cfg.JWT.ExpiresIn = 1
	cfg.RateLimit.RPS = 1000
	cfg.RateLimit.Burst = 1000
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("12345"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Username: "testuser", Password: string(hash)}
	require.NoError(t, db.DB.Create(user).Error)

	product := &models.CreditProduct{
		Name:      "Потребительский",
		MinAmount: decimal.NewFromInt(10000),
		MaxAmount: decimal.NewFromInt(1000000),
		Rate:      decimal.RequireFromString("8.9"),
	}
	require.NoError(t, db.DB.Create(product).Error)

	products := services.NewProductService(db.DB)
	router, err := NewRouter(Deps{
		Config:       cfg,
		Users:        services.NewUserService(db),
		Products:     products,
		Applications: services.NewCreditApplicationService(db.DB, products, nil, utils.NewMetrics()),
		Blacklist:    services.NewMemoryTokenBlacklist(),
		Metrics:      utils.NewMetrics(),
	})
	require.NoError(t, err)

	return &testApp{router: router, db: db, user: user, product: product}
}

func (app *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	app.router.ServeHTTP(rr, req)
	return rr
}

func (app *testApp) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := utils.GenerateToken(testSecret, user.ID, user.Username, time.Hour)
	require.NoError(t, err)
	return token
}

func (app *testApp) sessionCookie(t *testing.T) *http.Cookie {
	return &http.Cookie{Name: middleware.SessionCookieName, Value: app.token(t, app.user)}
}

func (app *testApp) countApplications(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, app.db.DB.Model(&models.CreditApplication{}).Count(&count).Error)
	return count
}

func postForm(path string, values url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func get(path string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func parseHTML(t *testing.T, rr *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	return doc
}

func (app *testApp) applicationForm(amount string) url.Values {
	return url.Values{
		"product": {fmt.Sprint(app.product.ID)},
		"amount":  {amount},
		"phone":   {"+79991234567"},
	}
}

// Сайт

func TestHomePageLoads(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	rr := app.do(get("/"))
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(t, rr)
	assert.Equal(t, "Потребительский", doc.Find(".product .name").First().Text())
	assert.Contains(t, doc.Find(".product").Text(), "от 10,000 ₽ до 1,000,000 ₽")
}

func TestApplyRedirectsAnonymousUser(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	rr := app.do(get("/apply/"))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/accounts/login/?next=%2Fapply%2F", rr.Header().Get("Location"))

	rr = app.do(postForm("/apply/", app.applicationForm("200000")))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, int64(0), app.countApplications(t))
}

func TestApplyAccessibleForLoggedInUser(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	rr := app.do(get(fmt.Sprintf("/apply/?product=%d", app.product.ID), app.sessionCookie(t)))
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(t, rr)
	assert.Equal(t, 2, doc.Find(`select[name="product"] option`).Length())
	selected, _ := doc.Find(`select[name="product"] option[selected]`).Attr("value")
	assert.Equal(t, fmt.Sprint(app.product.ID), selected)
	placeholder, _ := doc.Find("#id_phone").Attr("placeholder")
	assert.Equal(t, "+79991234567", placeholder)
}

func TestSubmitCreditApplication(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	rr := app.do(postForm("/apply/", app.applicationForm("200000"), app.sessionCookie(t)))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Equal(t, int64(1), app.countApplications(t))

	var saved models.CreditApplication
	require.NoError(t, app.db.DB.First(&saved).Error)
	assert.Equal(t, models.ApplicationStatusNew, saved.Status)
	assert.Equal(t, app.user.ID, saved.UserID)
	assert.True(t, saved.Amount.Equal(decimal.NewFromInt(200000)))

	// Сообщение об успехе показывается на главной
	flash := findCookie(rr, "flash")
	require.NotNil(t, flash)
	rr = app.do(get("/", app.sessionCookie(t), flash))
	assert.Contains(t, parseHTML(t, rr).Find(".flash").Text(), fmt.Sprintf("Заявка №%d принята", saved.ID))
}

func TestSubmitInvalidAmountRerendersForm(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	rr := app.do(postForm("/apply/", app.applicationForm("5000"), app.sessionCookie(t)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(0), app.countApplications(t))

	doc := parseHTML(t, rr)
	assert.Equal(t, "Минимальная сумма: 10,000 ₽", doc.Find("#id_amount").Parent().Find(".errorlist li").Text())
	value, _ := doc.Find("#id_amount").Attr("value")
	assert.Equal(t, "5000", value)
	value, _ = doc.Find("#id_phone").Attr("value")
	assert.Equal(t, "+79991234567", value)
}

func TestSubmitWithoutProductRerendersForm(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	form := app.applicationForm("200000")
	form.Del("product")
	rr := app.do(postForm("/apply/", form, app.sessionCookie(t)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(0), app.countApplications(t))

	doc := parseHTML(t, rr)
	assert.Equal(t, 1, doc.Find("#id_product").Parent().Find(".errorlist li").Length())
}

func TestApplicationsPage(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	rr := app.do(postForm("/apply/", app.applicationForm("200000"), app.sessionCookie(t)))
	require.Equal(t, http.StatusFound, rr.Code)

	rr = app.do(get("/applications/", app.sessionCookie(t)))
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(t, rr)
	require.Equal(t, 1, doc.Find(".application").Length())
	assert.Equal(t, "200,000 ₽", doc.Find(".application .amount").Text())
	assert.Equal(t, "Новая", doc.Find(".application .status").Text())
}

func TestLoginFlow(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	rr := app.do(get("/accounts/login/?next=/apply/"))
	require.Equal(t, http.StatusOK, rr.Code)
	next, _ := parseHTML(t, rr).Find(`input[name="next"]`).Attr("value")
	assert.Equal(t, "/apply/", next)

	rr = app.do(postForm("/accounts/login/", url.Values{
		"username": {"testuser"},
		"password": {"12345"},
		"next":     {"/apply/"},
	}))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/apply/", rr.Header().Get("Location"))

	session := findCookie(rr, middleware.SessionCookieName)
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	rr = app.do(get("/apply/", session))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	rr := app.do(postForm("/accounts/login/", url.Values{
		"username": {"testuser"},
		"password": {"wrong"},
	}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, findCookie(rr, middleware.SessionCookieName))
	assert.Contains(t, parseHTML(t, rr).Find(".errorlist").Text(), "правильные имя пользователя и пароль")
}

func TestLoginIgnoresExternalNext(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	for _, next := range []string{"https://evil.example/", "//evil.example/", "/\\evil.example"} {
		rr := app.do(postForm("/accounts/login/", url.Values{
			"username": {"testuser"},
			"password": {"12345"},
			"next":     {next},
		}))
		assert.Equal(t, http.StatusFound, rr.Code, next)
		assert.Equal(t, "/", rr.Header().Get("Location"), next)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	app := newTestApp(t, newTestConfig())
	session := app.sessionCookie(t)

	rr := app.do(postForm("/accounts/logout/", url.Values{}, session))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	rr = app.do(get("/apply/", session))
	assert.Equal(t, http.StatusFound, rr.Code)
}

func TestSignup(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	rr := app.do(postForm("/accounts/signup/", url.Values{
		"username":  {"newuser"},
		"email":     {"newuser@example.com"},
		"password1": {"mypassword123"},
		"password2": {"mypassword123"},
	}))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	require.NotNil(t, findCookie(rr, middleware.SessionCookieName))

	var user models.User
	require.NoError(t, app.db.DB.Where("username = ?", "newuser").First(&user).Error)
	assert.NotEqual(t, "mypassword123", user.Password)
	assert.True(t, strings.HasPrefix(user.Password, "$2a$"))
}

func TestSignupErrors(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	rr := app.do(postForm("/accounts/signup/", url.Values{
		"username":  {"newuser"},
		"password1": {"mypassword123"},
		"password2": {"other-password"},
	}))
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(t, rr)
	assert.Equal(t, "Пароли не совпадают.", doc.Find("#id_password2").Parent().Find(".errorlist li").Text())

	rr = app.do(postForm("/accounts/signup/", url.Values{
		"username":  {"TESTUSER"},
		"password1": {"mypassword123"},
		"password2": {"mypassword123"},
	}))
	require.Equal(t, http.StatusOK, rr.Code)
	doc = parseHTML(t, rr)
	assert.Contains(t, doc.Find("#id_username").Parent().Find(".errorlist li").Text(), "уже существует")
}

func TestSignupAcceptsLongCyrillicUsername(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	// 80 символов, 160 байт
	username := strings.Repeat("ж", 80)
	rr := app.do(postForm("/accounts/signup/", url.Values{
		"username":  {username},
		"password1": {"mypassword123"},
		"password2": {"mypassword123"},
	}))
	require.Equal(t, http.StatusFound, rr.Code, rr.Body.String())

	var user models.User
	require.NoError(t, app.db.DB.Where("username = ?", username).First(&user).Error)
}

func TestSignupRejectsPasswordOver72Bytes(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	// 40 символов кириллицы проходят проверку длины формы, но занимают 80 байт
	password := strings.Repeat("ж", 40)
	rr := app.do(postForm("/accounts/signup/", url.Values{
		"username":  {"longpass"},
		"password1": {password},
		"password2": {password},
	}))
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(t, rr)
	assert.Contains(t, doc.Find("#id_password1").Parent().Find(".errorlist li").Text(), "72 байт")

	password = strings.Repeat("a", 73)
	rr = app.do(postForm("/accounts/signup/", url.Values{
		"username":  {"longpass"},
		"password1": {password},
		"password2": {password},
	}))
	require.Equal(t, http.StatusOK, rr.Code)
	doc = parseHTML(t, rr)
	assert.Equal(t, "Максимальная длина: 72.", doc.Find("#id_password1").Parent().Find(".errorlist li").Text())

	var count int64
	require.NoError(t, app.db.DB.Model(&models.User{}).Where("username = ?", "longpass").Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitAmountWithMoreThanTwoDecimalsRerendersForm(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	rr := app.do(postForm("/apply/", app.applicationForm("200000.555"), app.sessionCookie(t)))
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(t, rr)
	assert.Contains(t, doc.Find("#id_amount").Parent().Find(".errorlist li").Text(), "не более 2 знаков")
	assert.Equal(t, int64(0), app.countApplications(t))
}

func TestDeletedUserSessionIsAnonymous(t *testing.T) {
	app := newTestApp(t, newTestConfig())
	session := app.sessionCookie(t)
	token := app.token(t, app.user)

	require.NoError(t, app.db.DB.Delete(&models.User{}, app.user.ID).Error)

	rr := app.do(get("/apply/", session))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Location"), "/accounts/login/"))

	rr = app.do(apiRequest(http.MethodGet, "/api/applications", nil, token))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// API

func apiRequest(method, path string, body interface{}, token string) *http.Request {
	var payload bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&payload).Encode(body)
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAPISignUpAndSignIn(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	rr := app.do(apiRequest(http.MethodPost, "/api/auth/signUp", map[string]string{
		"username": "apiuser",
		"email":    "api@example.com",
		"password": "mypassword123",
	}, ""))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var signUp struct {
		Token string           `json:"token"`
		User  services.UserDTO `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&signUp))
	assert.NotEmpty(t, signUp.Token)
	assert.Equal(t, "apiuser", signUp.User.Username)

	rr = app.do(apiRequest(http.MethodPost, "/api/auth/signIn", map[string]string{
		"username": "apiuser",
		"password": "mypassword123",
	}, ""))
	require.Equal(t, http.StatusOK, rr.Code)

	var signIn struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&signIn))
	claims, err := utils.ParseToken(testSecret, signIn.Token)
	require.NoError(t, err)
	assert.Equal(t, signUp.User.ID, claims.UserID)

	rr = app.do(apiRequest(http.MethodPost, "/api/auth/signIn", map[string]string{
		"username": "apiuser",
		"password": "wrong-password",
	}, ""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = app.do(apiRequest(http.MethodPost, "/api/auth/signUp", map[string]string{
		"username": "x",
		"password": "short",
	}, ""))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var invalid struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&invalid))
	assert.Contains(t, invalid.Errors, "username")
	assert.Contains(t, invalid.Errors, "password")
}

func TestAPISignUpFieldLimits(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	decodeErrors := func(rr *httptest.ResponseRecorder) map[string][]string {
		var invalid struct {
			Errors map[string][]string `json:"errors"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&invalid))
		return invalid.Errors
	}

	rr := app.do(apiRequest(http.MethodPost, "/api/auth/signUp", map[string]string{
		"username":  "apiuser",
		"firstName": strings.Repeat("a", 51),
		"lastName":  strings.Repeat("б", 51),
		"password":  "mypassword123",
	}, ""))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	errs := decodeErrors(rr)
	assert.Equal(t, []string{"Максимальная длина: 50."}, errs["firstName"])
	assert.Equal(t, []string{"Максимальная длина: 50."}, errs["lastName"])

	rr = app.do(apiRequest(http.MethodPost, "/api/auth/signUp", map[string]string{
		"username": "apiuser",
		"password": strings.Repeat("ж", 40),
	}, ""))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeErrors(rr), "password")

	rr = app.do(apiRequest(http.MethodPost, "/api/auth/signUp", map[string]string{
		"username":  strings.Repeat("ж", 80),
		"firstName": strings.Repeat("я", 50),
		"password":  "mypassword123",
	}, ""))
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestAPIProducts(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	rr := app.do(apiRequest(http.MethodGet, "/api/products", nil, ""))
	require.Equal(t, http.StatusOK, rr.Code)
	var products []models.CreditProduct
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&products))
	require.Len(t, products, 1)
	assert.True(t, products[0].MinAmount.Equal(decimal.NewFromInt(10000)))

	rr = app.do(apiRequest(http.MethodGet, fmt.Sprintf("/api/products/%d", app.product.ID), nil, ""))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = app.do(apiRequest(http.MethodGet, "/api/products/999", nil, ""))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPIApplications(t *testing.T) {
	app := newTestApp(t, newTestConfig())
	token := app.token(t, app.user)

	body := map[string]interface{}{
		"product": app.product.ID,
		"amount":  "300000",
		"phone":   "+79991234567",
	}

	rr := app.do(apiRequest(http.MethodPost, "/api/applications", body, ""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = app.do(apiRequest(http.MethodPost, "/api/applications", body, token))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created services.ApplicationDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, "new", created.Status)
	assert.Equal(t, "300000.00", created.Amount)
	assert.Equal(t, "Потребительский", created.ProductName)

	body["amount"] = 5000
	rr = app.do(apiRequest(http.MethodPost, "/api/applications", body, token))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var invalid struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&invalid))
	assert.Equal(t, []string{"Минимальная сумма: 10,000 ₽"}, invalid.Errors["amount"])
	assert.Equal(t, int64(1), app.countApplications(t))

	rr = app.do(apiRequest(http.MethodGet, "/api/applications", nil, token))
	require.Equal(t, http.StatusOK, rr.Code)
	var list []services.ApplicationDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rr = app.do(apiRequest(http.MethodGet, fmt.Sprintf("/api/applications/%d", created.ID), nil, token))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = app.do(apiRequest(http.MethodGet, "/api/applications/999", nil, token))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	other := &models.User{Username: "other", Password: "hash"}
	require.NoError(t, app.db.DB.Create(other).Error)
	rr = app.do(apiRequest(http.MethodGet, fmt.Sprintf("/api/applications/%d", created.ID), nil, app.token(t, other)))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAPISignOutRevokesToken(t *testing.T) {
	app := newTestApp(t, newTestConfig())
	token := app.token(t, app.user)

	rr := app.do(apiRequest(http.MethodGet, "/api/applications", nil, token))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = app.do(apiRequest(http.MethodPost, "/api/auth/signOut", nil, token))
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = app.do(apiRequest(http.MethodGet, "/api/applications", nil, token))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Тот же токен не открывает и сессию сайта
	rr = app.do(get("/apply/", &http.Cookie{Name: middleware.SessionCookieName, Value: token}))
	assert.Equal(t, http.StatusFound, rr.Code)
}

func TestAPIMetrics(t *testing.T) {
	app := newTestApp(t, newTestConfig())

	rr := app.do(apiRequest(http.MethodGet, "/api/metrics", nil, ""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = app.do(apiRequest(http.MethodGet, "/api/metrics", nil, app.token(t, app.user)))
	require.Equal(t, http.StatusOK, rr.Code)
	var snapshot map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&snapshot))
	assert.Contains(t, snapshot, "total_requests")
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

func TestRateLimitedEndpoints(t *testing.T) {
	cfg := newTestConfig()
	cfg.RateLimit.RPS = 0.001
	cfg.RateLimit.Burst = 1
	app := newTestApp(t, cfg)

	credentials := map[string]string{"username": "testuser", "password": "12345"}
	wrong := map[string]string{"username": "testuser", "password": "wrong"}

	// Успешный вход сбрасывает счетчик попыток
	rr := app.do(apiRequest(http.MethodPost, "/api/auth/signIn", credentials, ""))
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = app.do(apiRequest(http.MethodPost, "/api/auth/signIn", credentials, ""))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = app.do(apiRequest(http.MethodPost, "/api/auth/signIn", wrong, ""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = app.do(apiRequest(http.MethodPost, "/api/auth/signIn", credentials, ""))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	session := app.sessionCookie(t)
	rr = app.do(postForm("/apply/", app.applicationForm("200000"), session))
	assert.Equal(t, http.StatusFound, rr.Code)
	rr = app.do(postForm("/apply/", app.applicationForm("200000"), session))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, int64(1), app.countApplications(t))
}

func TestWebLoginResetsLimiter(t *testing.T) {
	cfg := newTestConfig()
	cfg.RateLimit.RPS = 0.001
	cfg.RateLimit.Burst = 1
	app := newTestApp(t, cfg)

	login := func(password string) *httptest.ResponseRecorder {
		return app.do(postForm("/accounts/login/", url.Values{
			"username": {"testuser"},
			"password": {password},
		}))
	}

	assert.Equal(t, http.StatusFound, login("12345").Code)
	assert.Equal(t, http.StatusFound, login("12345").Code)

	assert.Equal(t, http.StatusOK, login("wrong").Code)
	assert.Equal(t, http.StatusTooManyRequests, login("12345").Code)
}
