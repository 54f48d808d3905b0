package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrProductNotFound     = errors.New("кредитный продукт не найден")
	ErrApplicationNotFound = errors.New("заявка не найдена")
	ErrAccessDenied        = errors.New("нет доступа к данной заявке")
	ErrInvalidCredentials  = errors.New("неверное имя пользователя или пароль")
	ErrUserExists          = errors.New("пользователь с таким именем уже существует")
	ErrUserNotFound        = errors.New("пользователь не найден")
	ErrPasswordTooLong     = errors.New("пароль длиннее 72 байт")
)

// FieldErrors - ошибки валидации формы по полям
type FieldErrors map[string][]string

// Add добавляет сообщение к полю
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Has сообщает, есть ли ошибки у поля
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// Get возвращает первое сообщение для поля
func (fe FieldErrors) Get(field string) string {
	if msgs := fe[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(fe[f], ", "))
	}
	return strings.Join(parts, "; ")
}
