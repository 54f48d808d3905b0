package services

import (
	"context"
	"creditbank/database"
	"creditbank/models"
	"errors"
	"fmt"
	"os"
	"strings"

	"gorm.io/gorm"
)

// ProductService предоставляет методы для работы с кредитными продуктами
type ProductService struct {
	db *gorm.DB
}

// NewProductService создает новый экземпляр ProductService
func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// List возвращает все продукты, отсортированные по названию
func (s *ProductService) List(ctx context.Context) ([]models.CreditProduct, error) {
	var products []models.CreditProduct
	if err := s.db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("ошибка получения продуктов: %w", err)
	}
	return products, nil
}

// GetByID возвращает продукт по ID
func (s *ProductService) GetByID(ctx context.Context, id uint) (*models.CreditProduct, error) {
	var product models.CreditProduct
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("ошибка поиска продукта: %w", err)
	}
	return &product, nil
}

// Create сохраняет новый продукт после проверки границ суммы
func (s *ProductService) Create(ctx context.Context, product *models.CreditProduct) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return errors.New("не указано название продукта")
	}
	if err := product.ValidateBounds(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("ошибка создания продукта: %w", err)
	}
	return nil
}

// ImportCatalog загружает продукты из XML-каталога, обновляя существующие по названию
func (s *ProductService) ImportCatalog(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия каталога: %w", err)
	}
	defer f.Close()

	products, err := database.ParseCatalog(f)
	if err != nil {
		return 0, err
	}
	if err := database.SeedProducts(s.db.WithContext(ctx), products); err != nil {
		return 0, fmt.Errorf("ошибка загрузки продуктов: %w", err)
	}
	return len(products), nil
}
