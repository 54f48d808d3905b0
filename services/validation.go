package services

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernameRegexp = regexp.MustCompile(`^[\p{L}\d.@+\-_]+$`)

// NewValidator создает валидатор, который называет поля по тегам form/json
func NewValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	// Имя пользователя: буквы, цифры и символы @ . + - _
	validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegexp.MatchString(fl.Field().String())
	})

	return validate
}

// ToFieldErrors преобразует ошибки валидатора в сообщения по полям
func ToFieldErrors(err error) FieldErrors {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"__all__": {err.Error()}}
	}

	fieldErrors := FieldErrors{}
	for _, e := range validationErrors {
		field := e.Field()
		if fieldErrors.Has(field) {
			continue
		}
		switch e.Tag() {
		case "required":
			fieldErrors.Add(field, "Обязательное поле.")
		case "number", "numeric":
			fieldErrors.Add(field, "Введите число.")
		case "e164":
			fieldErrors.Add(field, "Введите номер телефона в формате +79991234567.")
		case "email":
			fieldErrors.Add(field, "Введите правильный адрес электронной почты.")
		case "min":
			fieldErrors.Add(field, "Минимальная длина: "+e.Param()+".")
		case "max":
			fieldErrors.Add(field, "Максимальная длина: "+e.Param()+".")
		case "username":
			fieldErrors.Add(field, "Допустимы только буквы, цифры и символы @/./+/-/_.")
		case "eqfield":
			fieldErrors.Add(field, "Пароли не совпадают.")
		case "bounds":
			fieldErrors.Add(field, "Минимальная сумма не может превышать максимальную.")
		case "gte":
			fieldErrors.Add(field, "Значение не может быть отрицательным.")
		default:
			fieldErrors.Add(field, "Неверное значение.")
		}
	}
	return fieldErrors
}
