package replica

import (
	"context"
	"fmt"
	"sync"

	"github.com/shenikar/incident_moderation_console/internal/models"
	"github.com/shenikar/incident_moderation_console/internal/remote"
	"github.com/shenikar/incident_moderation_console/internal/store"
	"github.com/sirupsen/logrus"
)

// Имена событий изменений, совпадающие с проводными именами push-канала
const (
	EventIncidentCreated   = "INCIDENT_CREATED"
	EventIncidentUpdated   = "INCIDENT_UPDATED"
	EventIncidentResolved  = "INCIDENT_RESOLVED"
	EventReportVerUpdated  = "REPORT_VERIFICATION_UPDATED"
)

// Change - нормализованная запись изменения. Ровно одно из полей
// Incident/Report заполнено в зависимости от события.
type Change struct {
	Event    string
	Incident *models.Incident
	Report   *models.Report
}

// Subscriber получает уведомление после того, как изменение применено к реплике
type Subscriber func(Change)

// Engine - единственный писатель реплики. Изменения проходят через
// ограниченный inbox и применяются по одному, поэтому частично примененное
// обновление невозможно по построению.
type Engine struct {
	store  *store.Store
	source remote.Source
	logger *logrus.Logger

	inbox           chan Change
	admin           bool
	syncOnReconnect bool

	mu   sync.Mutex
	subs []Subscriber
}

// Options - параметры движка реплики
type Options struct {
	// AdminCapability включает выборки, требующие admin-доступа к источнику
	AdminCapability bool
	// SyncOnReconnect включает полную сверку после восстановления push-канала
	SyncOnReconnect bool
	// InboxSize - емкость inbox; 0 означает значение по умолчанию
	InboxSize int
}

const defaultInboxSize = 256

// New создает движок реплики
func New(st *store.Store, source remote.Source, logger *logrus.Logger, opts Options) *Engine {
	size := opts.InboxSize
	if size <= 0 {
		size = defaultInboxSize
	}
	return &Engine{
		store:           st,
		source:          source,
		logger:          logger,
		inbox:           make(chan Change, size),
		admin:           opts.AdminCapability,
		syncOnReconnect: opts.SyncOnReconnect,
	}
}

// Store возвращает реплику для read-only потребителей
func (e *Engine) Store() *store.Store {
	return e.store
}

// Subscribe регистрирует получателя примененных изменений.
// Вызывается до Run, в процессе работы состав подписчиков не меняется.
func (e *Engine) Subscribe(fn Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, fn)
}

// Submit помещает изменение в inbox. Блокируется при заполненном inbox,
// обеспечивая обратное давление на источник событий.
func (e *Engine) Submit(ctx context.Context, ch Change) error {
	select {
	case e.inbox <- ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run запускает цикл сверки; возвращается при отмене контекста
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("Replica engine started")
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Replica engine stopped")
			return
		case ch := <-e.inbox:
			e.apply(ctx, ch)
		}
	}
}

// Bootstrap выполняет начальную загрузку реплики из удаленного источника.
// Вызывается до Run, когда конкурирующих писателей еще нет.
func (e *Engine) Bootstrap(ctx context.Context) error {
	if err := e.RefreshPublicIncidents(ctx); err != nil {
		return fmt.Errorf("replica: bootstrap failed: %w", err)
	}
	if !e.admin {
		return nil
	}
	if err := e.RefreshAdminIncidents(ctx); err != nil {
		return fmt.Errorf("replica: bootstrap failed: %w", err)
	}
	if err := e.RefreshFlaggedReports(ctx); err != nil {
		return fmt.Errorf("replica: bootstrap failed: %w", err)
	}
	return nil
}

// ApplyCompletion применяет завершение действия модерации, минуя inbox:
// результат действия ложится в реплику до авторитетной перевыборки, чтобы
// перевыборка (последняя по порядку поступления) всегда побеждала.
// Позднее завершение при завершенной сессии безопасно игнорируется.
func (e *Engine) ApplyCompletion(ctx context.Context, ch Change) error {
	if err := ctx.Err(); err != nil {
		e.logger.WithField("event", ch.Event).Debug("Dropping late moderation completion")
		return err
	}
	e.apply(ctx, ch)
	return nil
}

// HandleReconnect вызывается push-каналом после восстановления соединения.
// События, пропущенные за время разрыва, восстанавливаются полной сверкой.
func (e *Engine) HandleReconnect(ctx context.Context) {
	if !e.syncOnReconnect {
		return
	}
	e.logger.Info("Stream reconnected, running full reconciliation")
	e.refreshAll(ctx)
}

func (e *Engine) apply(ctx context.Context, ch Change) {
	log := e.logger.WithField("event", ch.Event)

	switch {
	case ch.Incident != nil:
		e.store.UpsertIncident(*ch.Incident)
		log.WithField("incident_id", ch.Incident.ID).Debug("Incident upserted")
	case ch.Report != nil:
		e.store.UpsertReport(*ch.Report)
		log.WithField("report_id", ch.Report.ID).Debug("Report upserted")
	default:
		log.Warn("Dropping change with empty payload")
		return
	}

	e.notify(ch)

	// Привязка репорта меняет производные report_count/has_verified_report
	// на стороне инцидента, которые payload события не пересчитывает.
	if ch.Report != nil && ch.Report.Linked() {
		if err := e.RefreshPublicIncidents(ctx); err != nil {
			log.WithError(err).Warn("Failed to refresh public incidents after report linkage change")
		}
	}
}

func (e *Engine) notify(ch Change) {
	e.mu.Lock()
	subs := e.subs
	e.mu.Unlock()
	for _, fn := range subs {
		fn(ch)
	}
}

// RefreshPublicIncidents переснимает публичный набор инцидентов с источника.
// Транспортные отказы оставляют прежнее состояние видимым.
func (e *Engine) RefreshPublicIncidents(ctx context.Context) error {
	incidents, err := e.source.PublicIncidents(ctx)
	if err != nil {
		return fmt.Errorf("replica: could not refresh public incidents: %w", err)
	}
	for _, inc := range incidents {
		e.store.UpsertIncident(inc)
	}
	e.logger.WithField("count", len(incidents)).Debug("Public incidents refreshed")
	return nil
}

// RefreshAdminIncidents переснимает полный набор инцидентов; требует admin-возможности
func (e *Engine) RefreshAdminIncidents(ctx context.Context) error {
	incidents, err := e.source.AdminIncidents(ctx)
	if err != nil {
		return fmt.Errorf("replica: could not refresh admin incidents: %w", err)
	}
	for _, inc := range incidents {
		e.store.UpsertIncident(inc)
	}
	e.logger.WithField("count", len(incidents)).Debug("Admin incidents refreshed")
	return nil
}

// RefreshFlaggedReports переснимает очередь модерации; требует admin-возможности
func (e *Engine) RefreshFlaggedReports(ctx context.Context) error {
	reports, err := e.source.FlaggedReports(ctx)
	if err != nil {
		return fmt.Errorf("replica: could not refresh flagged reports: %w", err)
	}
	for _, rep := range reports {
		e.store.UpsertReport(rep)
	}
	e.logger.WithField("count", len(reports)).Debug("Flagged reports refreshed")
	return nil
}

func (e *Engine) refreshAll(ctx context.Context) {
	if err := e.RefreshPublicIncidents(ctx); err != nil {
		e.logger.WithError(err).Warn("Full reconciliation: public incidents refresh failed")
	}
	if !e.admin {
		return
	}
	if err := e.RefreshAdminIncidents(ctx); err != nil {
		e.logger.WithError(err).Warn("Full reconciliation: admin incidents refresh failed")
	}
	if err := e.RefreshFlaggedReports(ctx); err != nil {
		e.logger.WithError(err).Warn("Full reconciliation: flagged reports refresh failed")
	}
}
