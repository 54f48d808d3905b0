package services

import (
	"creditbank/models"
	"creditbank/utils"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountBelowMinimum = errors.New("amount below minimum")
	ErrAmountAboveMaximum = errors.New("amount above maximum")
)

// ValidationError - ошибка значения конкретного поля формы
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CheckAmount проверяет сумму по границам выбранного продукта и возвращает ее без изменений.
// Без продукта проверка границ не выполняется: отсутствие продукта
// отлавливается валидацией поля product.
func CheckAmount(amount decimal.Decimal, product *models.CreditProduct) (decimal.Decimal, error) {
	if product == nil {
		return amount, nil
	}
	if amount.LessThan(product.MinAmount) {
		return amount, &ValidationError{
			Field:   "amount",
			Message: "Минимальная сумма: " + utils.FormatRub(product.MinAmount),
			Err:     ErrAmountBelowMinimum,
		}
	}
	if amount.GreaterThan(product.MaxAmount) {
		return amount, &ValidationError{
			Field:   "amount",
			Message: "Максимальная сумма: " + utils.FormatRub(product.MaxAmount),
			Err:     ErrAmountAboveMaximum,
		}
	}
	return amount, nil
}
