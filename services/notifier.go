package services

import (
	"context"
	"errors"
)

// Notifier отправляет служебное уведомление менеджерам банка
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// Notifiers рассылает уведомление по всем каналам и объединяет ошибки
type Notifiers []Notifier

func (n Notifiers) Notify(ctx context.Context, subject, body string) error {
	var errs []error
	for _, notifier := range n {
		if err := notifier.Notify(ctx, subject, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
