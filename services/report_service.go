package services

import (
	"context"
	"creditbank/utils"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ProductSummary - агрегат заявок по одному продукту
type ProductSummary struct {
	ProductName  string          `db:"product_name"`
	Applications int64           `db:"applications"`
	TotalAmount  decimal.Decimal `db:"total_amount"`
}

// Summary - сводка заявок за период
type Summary struct {
	Since       time.Time
	Products    []ProductSummary
	Total       int64
	TotalAmount decimal.Decimal
}

// Text возвращает сводку в виде текста для уведомления
func (s *Summary) Text() string {
	if s.Total == 0 {
		return fmt.Sprintf("С %s новых заявок нет.", utils.FormatDate(s.Since))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Заявки с %s:\n", utils.FormatDate(s.Since))
	for _, p := range s.Products {
		fmt.Fprintf(&b, "%s: %d на сумму %s\n", p.ProductName, p.Applications, utils.FormatRub(p.TotalAmount))
	}
	fmt.Fprintf(&b, "Итого: %d на сумму %s", s.Total, utils.FormatRub(s.TotalAmount))
	return b.String()
}

// ReportService строит отчеты по заявкам прямыми SQL-запросами
type ReportService struct {
	db *sqlx.DB
}

// NewReportService создает новый экземпляр ReportService
func NewReportService(db *sqlx.DB) *ReportService {
	return &ReportService{db: db}
}

const summaryQuery = `
	SELECT p.name AS product_name,
	       COUNT(a.id) AS applications,
	       COALESCE(SUM(a.amount), 0) AS total_amount
	FROM credit_applications a
	JOIN credit_products p ON p.id = a.product_id
	WHERE a.created_at >= ?
	GROUP BY p.name
	ORDER BY p.name`

// Summary возвращает количество и сумму заявок по продуктам начиная с since
func (s *ReportService) Summary(ctx context.Context, since time.Time) (*Summary, error) {
	var rows []ProductSummary
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(summaryQuery), since.UTC()); err != nil {
		return nil, fmt.Errorf("ошибка построения сводки: %w", err)
	}

	summary := &Summary{Since: since, Products: rows, TotalAmount: decimal.Zero}
	for _, row := range rows {
		summary.Total += row.Applications
		summary.TotalAmount = summary.TotalAmount.Add(row.TotalAmount)
	}
	return summary, nil
}
