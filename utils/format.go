package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatRub форматирует сумму как "1,000,000 ₽".
// Дробная часть выводится с двумя знаками, только если она ненулевая: "10,000.50 ₽".
func FormatRub(value decimal.Decimal) string {
	return GroupThousands(value) + " ₽"
}

// GroupThousands разделяет разряды целой части запятыми
func GroupThousands(value decimal.Decimal) string {
	s := value.StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if fracPart == "00" {
		fracPart = ""
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// MaskPhone скрывает середину номера телефона: +79991234567 -> +7999***4567
func MaskPhone(phone string) string {
	runes := []rune(phone)
	if len(runes) <= 8 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:5]) + "***" + string(runes[len(runes)-4:])
}

// FormatDate форматирует время как "02.01.2006 15:04"
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}
