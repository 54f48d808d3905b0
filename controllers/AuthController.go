package controllers

import (
	"creditbank/middleware"
	"creditbank/services"
	"creditbank/utils"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

type AuthController struct {
	userService  *services.UserService
	blacklist    services.TokenBlacklist
	loginLimiter *utils.RateLimiter
	validate     *validator.Validate
	secret       string
	ttl          time.Duration
}

type SignInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SignInResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type SignUpRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150,username"`
	Email     string `json:"email" validate:"omitempty,email,max=100"`
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

type AuthResponse struct {
	Token string           `json:"token"`
	User  services.UserDTO `json:"user"`
}

func NewAuthController(userService *services.UserService, blacklist services.TokenBlacklist, loginLimiter *utils.RateLimiter, secret string, ttl time.Duration) *AuthController {
	return &AuthController{
		userService:  userService,
		blacklist:    blacklist,
		loginLimiter: loginLimiter,
		validate:     services.NewValidator(),
		secret:       secret,
		ttl:          ttl,
	}
}

// SignIn обрабатывает вход пользователя
func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Валидация запроса
	if err := c.validate.Struct(req); err != nil {
		writeFieldErrors(w, services.ToFieldErrors(err))
		return
	}

	user, err := c.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		internalError(w, r, err)
		return
	}

	token, claims, err := utils.GenerateToken(c.secret, user.ID, user.Username, c.ttl)
	if err != nil {
		internalError(w, r, err)
		return
	}

	// Успешный вход снимает ограничение попыток для клиента
	if c.loginLimiter != nil {
		c.loginLimiter.Reset(middleware.ClientIP(r))
	}

	writeJSON(w, http.StatusOK, SignInResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
	})
}

// SignUp регистрирует пользователя и возвращает токен
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Валидация запроса
	if err := c.validate.Struct(req); err != nil {
		writeFieldErrors(w, services.ToFieldErrors(err))
		return
	}

	// Создаем пользователя через UserService
	user, err := c.userService.CreateUser(r.Context(), services.CreateUserRequest{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			writeFieldErrors(w, services.FieldErrors{"username": {"Пользователь с таким именем уже существует."}})
			return
		}
		if errors.Is(err, services.ErrPasswordTooLong) {
			writeFieldErrors(w, services.FieldErrors{"password": {passwordTooLongMessage}})
			return
		}
		internalError(w, r, err)
		return
	}

	// Генерация JWT токена
	token, _, err := utils.GenerateToken(c.secret, user.ID, user.Username, c.ttl)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Token: token,
		User:  services.ToUserDTO(user),
	})
}

// SignOut отзывает текущий токен
func (c *AuthController) SignOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := c.blacklist.Revoke(r.Context(), claims.ID, claims.TokenTTL()); err != nil {
		internalError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
