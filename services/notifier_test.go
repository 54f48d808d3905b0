package services

import (
	"context"
	"errors"
	"testing"

	"creditbank/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestNotifiersDeliverToAllAndJoinErrors(t *testing.T) {
	ok := &fakeNotifier{}
	failing := &fakeNotifier{err: errNotifyFailed}

	err := Notifiers{failing, ok}.Notify(context.Background(), "subject", "body")
	assert.ErrorIs(t, err, errNotifyFailed)
	assert.Len(t, ok.sent, 1)
	assert.Len(t, failing.sent, 1)

	assert.NoError(t, Notifiers{ok}.Notify(context.Background(), "subject", "body"))
	assert.NoError(t, Notifiers(nil).Notify(context.Background(), "subject", "body"))
}

func TestEmailServiceNotify(t *testing.T) {
	cfg := &config.Config{}
	cfg.SMTP.Host = "smtp.example.com"
	cfg.SMTP.Port = 587
	cfg.SMTP.From = "noreply@bank.example"
	cfg.Notify.ManagerEmail = "manager@bank.example"

	service := NewEmailService(cfg)
	var sent []*gomail.Message
	service.send = func(m ...*gomail.Message) error {
		sent = append(sent, m...)
		return nil
	}

	require.NoError(t, service.Notify(context.Background(), "Новая заявка", "Сумма: 200,000 ₽"))
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"manager@bank.example"}, sent[0].GetHeader("To"))
	assert.Equal(t, []string{"noreply@bank.example"}, sent[0].GetHeader("From"))
	assert.Equal(t, []string{"Новая заявка"}, sent[0].GetHeader("Subject"))
}

func TestEmailServiceSendError(t *testing.T) {
	service := NewEmailService(&config.Config{})
	service.send = func(m ...*gomail.Message) error { return errors.New("connection refused") }

	err := service.Notify(context.Background(), "subject", "body")
	assert.ErrorContains(t, err, "connection refused")
}

func TestEmailServiceCanceledContext(t *testing.T) {
	service := NewEmailService(&config.Config{})
	called := false
	service.send = func(m ...*gomail.Message) error {
		called = true
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, service.Notify(ctx, "subject", "body"), context.Canceled)
	assert.False(t, called)
}

type fakeTelegramSender struct {
	messages []tgbotapi.MessageConfig
	err      error
}

func (f *fakeTelegramSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.messages = append(f.messages, msg)
	}
	return tgbotapi.Message{}, f.err
}

func TestTelegramNotifier(t *testing.T) {
	sender := &fakeTelegramSender{}
	notifier := &TelegramNotifier{bot: sender, chatID: -100123}

	require.NoError(t, notifier.Notify(context.Background(), "Новая заявка", "Сумма: 200,000 ₽"))
	require.Len(t, sender.messages, 1)
	assert.Equal(t, int64(-100123), sender.messages[0].ChatID)
	assert.Equal(t, "Новая заявка\n\nСумма: 200,000 ₽", sender.messages[0].Text)
	assert.True(t, sender.messages[0].DisableWebPagePreview)

	sender.err = errors.New("chat not found")
	assert.ErrorContains(t, notifier.Notify(context.Background(), "s", "b"), "chat not found")
}
