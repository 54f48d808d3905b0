package database

import (
	"creditbank/models"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ParseCatalog разбирает XML-каталог кредитных продуктов вида
//
//	<catalog>
//	  <product name="Потребительский" min="10000" max="1000000" rate="8.9"/>
//	</catalog>
func ParseCatalog(r io.Reader) ([]models.CreditProduct, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога: %w", err)
	}

	root := doc.SelectElement("catalog")
	if root == nil {
		return nil, errors.New("в каталоге нет корневого элемента <catalog>")
	}

	var products []models.CreditProduct
	seen := make(map[string]bool)
	for i, el := range root.SelectElements("product") {
		name := strings.TrimSpace(el.SelectAttrValue("name", ""))
		if name == "" {
			return nil, fmt.Errorf("продукт #%d: не указано название", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("продукт %q указан дважды", name)
		}
		seen[name] = true

		product := models.CreditProduct{Name: name}
		fields := []struct {
			attr string
			dst  *decimal.Decimal
		}{
			{"min", &product.MinAmount},
			{"max", &product.MaxAmount},
			{"rate", &product.Rate},
		}
		for _, f := range fields {
			raw := strings.TrimSpace(el.SelectAttrValue(f.attr, ""))
			if raw == "" {
				return nil, fmt.Errorf("продукт %q: не указан атрибут %s", name, f.attr)
			}
			value, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("продукт %q: неверное значение %s=%q", name, f.attr, raw)
			}
			*f.dst = value
		}

		if err := product.ValidateBounds(); err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, nil
}

// SeedProducts создает или обновляет продукты по названию в одной транзакции
func SeedProducts(db *gorm.DB, products []models.CreditProduct) error {
	if len(products) == 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"min_amount", "max_amount", "rate", "updated_at"}),
		}).Create(&products).Error
	})
}
