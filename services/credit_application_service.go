package services

import (
	"context"
	"creditbank/models"
	"creditbank/utils"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplicationForm - данные заявки в том виде, в котором они пришли из HTML-формы или JSON
type ApplicationForm struct {
	Product json.Number `form:"product" json:"product" validate:"required,number"`
	Amount  json.Number `form:"amount" json:"amount" validate:"required,numeric"`
	Phone   string      `form:"phone" json:"phone" validate:"required,e164"`
}

// ApplicationInput - проверенные данные заявки
type ApplicationInput struct {
	Product *models.CreditProduct
	Amount  decimal.Decimal
	Phone   string
}

// ApplicationDTO представляет заявку в ответах API
type ApplicationDTO struct {
	ID          uint   `json:"id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Amount      string `json:"amount"`
	Phone       string `json:"phone"`
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CreditApplicationService принимает и хранит заявки на кредит
type CreditApplicationService struct {
	db        *gorm.DB
	products  *ProductService
	validator *validator.Validate
	notifier  Notifier
	metrics   *utils.Metrics
}

// NewCreditApplicationService создает новый экземпляр CreditApplicationService.
// notifier может быть nil.
func NewCreditApplicationService(db *gorm.DB, products *ProductService, notifier Notifier, metrics *utils.Metrics) *CreditApplicationService {
	if metrics == nil {
		metrics = utils.GetMetrics()
	}
	return &CreditApplicationService{
		db:        db,
		products:  products,
		validator: NewValidator(),
		notifier:  notifier,
		metrics:   metrics,
	}
}

// Validate проверяет форму заявки. Ошибки полей возвращаются как FieldErrors,
// прочие ошибки означают сбой хранилища.
func (s *CreditApplicationService) Validate(ctx context.Context, form ApplicationForm) (*ApplicationInput, error) {
	form.Product = json.Number(strings.TrimSpace(form.Product.String()))
	form.Amount = json.Number(strings.TrimSpace(form.Amount.String()))
	form.Phone = strings.TrimSpace(form.Phone)

	fieldErrors := FieldErrors{}
	if err := s.validator.Struct(form); err != nil {
		fieldErrors = ToFieldErrors(err)
	}

	input := &ApplicationInput{Phone: form.Phone}

	// Разрешаем продукт
	if !fieldErrors.Has("product") {
		id, err := strconv.ParseUint(form.Product.String(), 10, 32)
		if err != nil {
			fieldErrors.Add("product", "Выберите корректный вариант.")
		} else {
			product, err := s.products.GetByID(ctx, uint(id))
			switch {
			case errors.Is(err, ErrProductNotFound):
				fieldErrors.Add("product", "Выберите корректный вариант. Вашего варианта нет среди допустимых значений.")
			case err != nil:
				return nil, err
			default:
				input.Product = product
			}
		}
	}

	// Проверяем сумму по границам продукта
	if !fieldErrors.Has("amount") {
		amount, err := decimal.NewFromString(form.Amount.String())
		switch {
		case err != nil:
			fieldErrors.Add("amount", "Введите число.")
		case !amount.IsPositive():
			fieldErrors.Add("amount", "Сумма должна быть больше нуля.")
		case !amount.Equal(amount.Truncate(2)):
			// Колонка amount хранит ровно два знака после запятой
			fieldErrors.Add("amount", "Убедитесь, что введено не более 2 знаков после запятой.")
		default:
			amount, err = CheckAmount(amount, input.Product)
			var verr *ValidationError
			if errors.As(err, &verr) {
				fieldErrors.Add(verr.Field, verr.Message)
			}
			input.Amount = amount
		}
	}

	if len(fieldErrors) > 0 {
		return nil, fieldErrors
	}
	return input, nil
}

// Submit проверяет заявку и сохраняет ее со статусом "new" от имени пользователя
func (s *CreditApplicationService) Submit(ctx context.Context, userID uint, form ApplicationForm) (*models.CreditApplication, error) {
	input, err := s.Validate(ctx, form)
	if err != nil {
		var fieldErrors FieldErrors
		if errors.As(err, &fieldErrors) {
			s.metrics.RecordApplication(false)
		}
		return nil, err
	}

	app := &models.CreditApplication{
		UserID:    userID,
		ProductID: input.Product.ID,
		Amount:    input.Amount,
		Phone:     input.Phone,
		Status:    models.ApplicationStatusNew,
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(app).Error; err != nil {
		s.metrics.RecordError(err)
		return nil, fmt.Errorf("ошибка при создании заявки: %w", err)
	}
	app.Product = *input.Product

	s.metrics.RecordApplication(true)
	utils.LogInfo("Создана заявка #%d пользователя %d по продукту %q на сумму %s", app.ID, userID, app.Product.Name, app.Amount)

	s.notifyCreated(ctx, app)

	return app, nil
}

// notifyCreated сообщает менеджерам о новой заявке. Ошибка доставки не отменяет заявку.
func (s *CreditApplicationService) notifyCreated(ctx context.Context, app *models.CreditApplication) {
	if s.notifier == nil {
		return
	}

	subject := fmt.Sprintf("Новая заявка на кредит #%d", app.ID)
	body := fmt.Sprintf("Продукт: %s\nСумма: %s\nТелефон: %s\nСтатус: %s",
		app.Product.Name,
		utils.FormatRub(app.Amount),
		utils.MaskPhone(app.Phone),
		app.Status.Label(),
	)

	if err := s.notifier.Notify(ctx, subject, body); err != nil {
		utils.LogError("Ошибка отправки уведомления о заявке #%d: %v", app.ID, err)
	}
}

// ListByUser возвращает заявки пользователя, новые первыми
func (s *CreditApplicationService) ListByUser(ctx context.Context, userID uint) ([]models.CreditApplication, error) {
	var apps []models.CreditApplication
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Product").
		Order("created_at DESC, id DESC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("ошибка получения заявок: %w", err)
	}
	return apps, nil
}

// GetForUser возвращает заявку, если она принадлежит пользователю
func (s *CreditApplicationService) GetForUser(ctx context.Context, id, userID uint) (*models.CreditApplication, error) {
	var app models.CreditApplication
	if err := s.db.WithContext(ctx).Preload("Product").First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("ошибка поиска заявки: %w", err)
	}
	if app.UserID != userID {
		return nil, ErrAccessDenied
	}
	return &app, nil
}

// ToApplicationDTO конвертирует модель заявки в DTO
func ToApplicationDTO(app *models.CreditApplication) ApplicationDTO {
	return ApplicationDTO{
		ID:          app.ID,
		ProductID:   app.ProductID,
		ProductName: app.Product.Name,
		Amount:      app.Amount.StringFixed(2),
		Phone:       app.Phone,
		Status:      string(app.Status),
		StatusLabel: app.Status.Label(),
		CreatedAt:   app.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   app.UpdatedAt.Format(time.RFC3339),
	}
}
