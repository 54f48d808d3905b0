package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditProduct представляет кредитный продукт: допустимый диапазон суммы и ставку
type CreditProduct struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string          `gorm:"column:name;unique;not null;size:100" json:"name"`
	MinAmount decimal.Decimal `gorm:"column:min_amount;type:decimal(14,2);not null;check:chk_credit_products_bounds,min_amount <= max_amount" json:"min_amount"`
	MaxAmount decimal.Decimal `gorm:"column:max_amount;type:decimal(14,2);not null" json:"max_amount"`
	Rate      decimal.Decimal `gorm:"column:rate;type:decimal(5,2);not null" json:"rate"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName возвращает имя таблицы для модели CreditProduct
func (CreditProduct) TableName() string {
	return "credit_products"
}

// ApplicationStatus представляет статус заявки на кредит
type ApplicationStatus string

const (
	ApplicationStatusNew        ApplicationStatus = "new"
	ApplicationStatusProcessing ApplicationStatus = "processing"
	ApplicationStatusApproved   ApplicationStatus = "approved"
	ApplicationStatusRejected   ApplicationStatus = "rejected"
)

var applicationStatusLabels = map[ApplicationStatus]string{
	ApplicationStatusNew:        "Новая",
	ApplicationStatusProcessing: "На рассмотрении",
	ApplicationStatusApproved:   "Одобрена",
	ApplicationStatusRejected:   "Отклонена",
}

// IsValid сообщает, входит ли статус в известный набор
func (s ApplicationStatus) IsValid() bool {
	_, ok := applicationStatusLabels[s]
	return ok
}

// Label возвращает название статуса для интерфейса
func (s ApplicationStatus) Label() string {
	if label, ok := applicationStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// CreditApplication представляет заявку пользователя на кредит по продукту
type CreditApplication struct {
	ID        uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint              `gorm:"column:user_id;not null;index" json:"user_id"`
	User      User              `gorm:"foreignKey:UserID" json:"-"`
	ProductID uint              `gorm:"column:product_id;not null;index" json:"product_id"`
	Product   CreditProduct     `gorm:"foreignKey:ProductID" json:"product"`
	Amount    decimal.Decimal   `gorm:"column:amount;type:decimal(14,2);not null" json:"amount"`
	Phone     string            `gorm:"column:phone;not null;size:20" json:"phone"`
	Status    ApplicationStatus `gorm:"column:status;type:varchar(20);not null;default:'new'" json:"status"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName возвращает имя таблицы для модели CreditApplication
func (CreditApplication) TableName() string {
	return "credit_applications"
}

// BeforeCreate выставляет начальный статус новой заявки
func (a *CreditApplication) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = ApplicationStatusNew
	}
	return nil
}

// ValidateBounds проверяет инварианты продукта: границы неотрицательны и min_amount <= max_amount
func (p *CreditProduct) ValidateBounds() error {
	if p.MinAmount.IsNegative() || p.MaxAmount.IsNegative() {
		return fmt.Errorf("продукт %q: границы суммы не могут быть отрицательными", p.Name)
	}
	if p.MinAmount.GreaterThan(p.MaxAmount) {
		return fmt.Errorf("продукт %q: минимальная сумма %s больше максимальной %s", p.Name, p.MinAmount, p.MaxAmount)
	}
	if p.Rate.IsNegative() {
		return fmt.Errorf("продукт %q: ставка не может быть отрицательной", p.Name)
	}
	return nil
}
