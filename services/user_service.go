package services

import (
	"context"
	"creditbank/database"
	"creditbank/models"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db *database.Database
}

type UserDTO struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type CreateUserRequest struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

func NewUserService(db *database.Database) *UserService {
	return &UserService{db: db}
}

// ToUserDTO конвертирует модель пользователя в DTO
func ToUserDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

// CreateUser создает нового пользователя с хешированным паролем
func (h *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)

	// Проверяем, существует ли пользователь с таким именем
	var existingUser models.User
	if err := h.db.DB.WithContext(ctx).Where("LOWER(username) = LOWER(?)", username).First(&existingUser).Error; err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}

	// Хешируем пароль
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Username:  username,
		Email:     strings.TrimSpace(req.Email),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashedPassword),
	}

	if err := h.db.DB.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	return user, nil
}

// Authenticate проверяет имя пользователя и пароль
func (h *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	if err := h.db.DB.WithContext(ctx).Where("LOWER(username) = LOWER(?)", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// FindByID ищет пользователя по ID
func (h *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := h.db.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
