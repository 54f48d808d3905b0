package services

import (
	"context"
	"creditbank/database"
	"creditbank/models"
	"creditbank/utils"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type sentNotification struct {
	subject string
	body    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (f *fakeNotifier) Notify(ctx context.Context, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{subject: subject, body: body})
	return f.err
}

var errNotifyFailed = errors.New("smtp unavailable")

type testEnv struct {
	db           *database.Database
	products     *ProductService
	applications *CreditApplicationService
	users        *UserService
	notifier     *fakeNotifier
	metrics      *utils.Metrics
	user         *models.User
	product      *models.CreditProduct
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{
		db:       db,
		products: NewProductService(db.DB),
		users:    NewUserService(db),
		notifier: &fakeNotifier{},
		metrics:  utils.NewMetrics(),
	}
	env.applications = NewCreditApplicationService(db.DB, env.products, env.notifier, env.metrics)

	hash, err := bcrypt.GenerateFromPassword([]byte("12345"), bcrypt.MinCost)
	require.NoError(t, err)
	env.user = &models.User{Username: "testuser", Password: string(hash)}
	require.NoError(t, db.DB.Create(env.user).Error)

	env.product = &models.CreditProduct{
		Name:      "Потребительский",
		MinAmount: decimal.NewFromInt(10000),
		MaxAmount: decimal.NewFromInt(1000000),
		Rate:      decimal.RequireFromString("8.9"),
	}
	require.NoError(t, env.products.Create(context.Background(), env.product))

	return env
}

func (env *testEnv) countApplications(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.db.DB.Model(&models.CreditApplication{}).Count(&count).Error)
	return count
}
