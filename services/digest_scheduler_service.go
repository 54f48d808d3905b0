package services

import (
	"context"
	"creditbank/utils"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DigestSchedulerService периодически отправляет менеджерам сводку заявок за сутки
type DigestSchedulerService struct {
	cron     *cron.Cron
	reports  *ReportService
	notifier Notifier
	period   time.Duration
	now      func() time.Time
}

// NewDigestSchedulerService создает новый экземпляр DigestSchedulerService
func NewDigestSchedulerService(reports *ReportService, notifier Notifier) *DigestSchedulerService {
	return &DigestSchedulerService{
		cron:     cron.New(),
		reports:  reports,
		notifier: notifier,
		period:   24 * time.Hour,
		now:      time.Now,
	}
}

// Start регистрирует задачу по cron-выражению и запускает планировщик
func (s *DigestSchedulerService) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		start := time.Now()
		err := s.SendDigest(context.Background())
		utils.LogOperation("daily digest", start, err)
	})
	if err != nil {
		return fmt.Errorf("неверное расписание сводки %q: %w", schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop останавливает планировщик. Возвращенный контекст завершается,
// когда текущая задача закончит работу.
func (s *DigestSchedulerService) Stop() context.Context {
	return s.cron.Stop()
}

// SendDigest строит сводку за последний период и отправляет ее
func (s *DigestSchedulerService) SendDigest(ctx context.Context) error {
	summary, err := s.reports.Summary(ctx, s.now().Add(-s.period))
	if err != nil {
		return err
	}
	return s.notifier.Notify(ctx, "Сводка заявок на кредит", summary.Text())
}
