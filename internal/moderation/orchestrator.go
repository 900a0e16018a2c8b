package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shenikar/incident_moderation_console/internal/models"
	"github.com/shenikar/incident_moderation_console/internal/remote"
	"github.com/shenikar/incident_moderation_console/internal/replica"
	"github.com/sirupsen/logrus"
)

var (
	// ErrConflict - по той же сущности уже выполняется действие модерации.
	// Повторная отправка отклоняется, а не ставится в очередь.
	ErrConflict = errors.New("moderation: action already in progress")

	// ErrPrecondition - локальное предусловие действия не выполнено
	ErrPrecondition = errors.New("moderation: precondition failed")
)

// Orchestrator выполняет изменяющие операции модерации против удаленного
// источника. Пока действие по сущности в полете, второе действие по тому же
// идентификатору отклоняется с ErrConflict. Успешное действие завершается
// авторитетной перевыборкой затронутых наборов: локальное состояние после
// действия никогда не конструируется вручную.
type Orchestrator struct {
	engine *replica.Engine
	source remote.Source
	logger *logrus.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New создает оркестратор модерации
func New(engine *replica.Engine, source remote.Source, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		engine:   engine,
		source:   source,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// InFlight сообщает, выполняется ли сейчас действие по сущности
func (o *Orchestrator) InFlight(entityID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.inflight[entityID]
	return ok
}

// ApproveReport подтверждает репорт. Approve по уже подтвержденному репорту
// принимается удаленным источником идемпотентно и локально не валидируется.
func (o *Orchestrator) ApproveReport(ctx context.Context, reportID string) (*models.Report, error) {
	log := o.logger.WithFields(logrus.Fields{
		"component": "moderation",
		"action":    "approve",
		"report_id": reportID,
	})

	if err := o.begin(reportID); err != nil {
		return nil, err
	}
	defer o.finish(reportID)
	log.Info("Submitting report approval")

	rep, err := o.source.ApproveReport(ctx, reportID)
	if err != nil {
		log.WithError(err).Error("Report approval failed")
		return nil, err
	}

	// Approve может привязать репорт к инциденту или породить новый,
	// поэтому перевыбираются и репорты, и инциденты.
	o.completeReportAction(ctx, replica.EventReportVerUpdated, rep, true, log)
	log.Info("Report approved")
	return rep, nil
}

// RejectReport отклоняет репорт, переводя его к Not Verified
func (o *Orchestrator) RejectReport(ctx context.Context, reportID string) (*models.Report, error) {
	log := o.logger.WithFields(logrus.Fields{
		"component": "moderation",
		"action":    "reject",
		"report_id": reportID,
	})

	if err := o.begin(reportID); err != nil {
		return nil, err
	}
	defer o.finish(reportID)
	log.Info("Submitting report rejection")

	rep, err := o.source.RejectReport(ctx, reportID)
	if err != nil {
		log.WithError(err).Error("Report rejection failed")
		return nil, err
	}

	o.completeReportAction(ctx, replica.EventReportVerUpdated, rep, false, log)
	log.Info("Report rejected")
	return rep, nil
}

// ToggleResolution переключает статус разрешения инцидента. Целевое состояние
// вычисляется как отрицание последнего известного локально: при устаревшей
// реплике переключение может уйти не в ту сторону, это известная гонка.
func (o *Orchestrator) ToggleResolution(ctx context.Context, incidentID string) (*models.Incident, error) {
	log := o.logger.WithFields(logrus.Fields{
		"component":   "moderation",
		"action":      "toggle_resolution",
		"incident_id": incidentID,
	})

	current, ok := o.engine.Store().Incident(incidentID)
	if !ok {
		return nil, fmt.Errorf("%w: incident %s is not known locally", remote.ErrNotFound, incidentID)
	}

	if err := o.begin(incidentID); err != nil {
		return nil, err
	}
	defer o.finish(incidentID)

	target := current.ResolutionTag.Toggled()
	log.WithField("target", target).Info("Submitting resolution change")

	inc, err := o.source.ResolveIncident(ctx, incidentID, target)
	if err != nil {
		log.WithError(err).Error("Resolution change failed")
		return nil, err
	}

	if applyErr := o.engine.ApplyCompletion(ctx, replica.Change{Event: replica.EventIncidentResolved, Incident: inc}); applyErr != nil {
		// Сессия завершилась раньше ответа; позднее завершение игнорируется
		return inc, nil
	}
	if err := o.engine.RefreshAdminIncidents(ctx); err != nil {
		log.WithError(err).Warn("Post-action incident refetch failed, replica may lag until next event")
	}
	log.Info("Resolution changed")
	return inc, nil
}

// MergeReport привязывает неприкрепленный подтвержденный репорт к
// существующему инциденту. Предусловия проверяются локально; отсутствие
// merge-примитива у удаленного коллаборатора всплывает как ErrUnsupported.
func (o *Orchestrator) MergeReport(ctx context.Context, reportID, incidentID string) (*models.Report, error) {
	log := o.logger.WithFields(logrus.Fields{
		"component":   "moderation",
		"action":      "merge",
		"report_id":   reportID,
		"incident_id": incidentID,
	})

	rep, ok := o.engine.Store().Report(reportID)
	if !ok {
		return nil, fmt.Errorf("%w: report %s is not known locally", remote.ErrNotFound, reportID)
	}
	if !rep.PendingDedup() {
		return nil, fmt.Errorf("%w: report %s must be verified and unlinked", ErrPrecondition, reportID)
	}
	if _, ok := o.engine.Store().Incident(incidentID); !ok {
		return nil, fmt.Errorf("%w: incident %s is not known locally", remote.ErrNotFound, incidentID)
	}

	if err := o.begin(reportID); err != nil {
		return nil, err
	}
	defer o.finish(reportID)
	log.Info("Submitting report merge")

	merged, err := o.source.MergeReport(ctx, reportID, incidentID)
	if err != nil {
		if errors.Is(err, remote.ErrUnsupported) {
			log.Warn("Merge is not supported by the remote source")
		} else {
			log.WithError(err).Error("Report merge failed")
		}
		return nil, err
	}

	o.completeReportAction(ctx, replica.EventReportVerUpdated, merged, true, log)
	log.Info("Report merged")
	return merged, nil
}

// completeReportAction применяет результат действия и выполняет авторитетную
// перевыборку: репорты всегда, инциденты - когда могла измениться привязка
// или разрешение (удаленный источник авторитетен для производных полей).
func (o *Orchestrator) completeReportAction(ctx context.Context, event string, rep *models.Report, refetchIncidents bool, log *logrus.Entry) {
	if err := o.engine.ApplyCompletion(ctx, replica.Change{Event: event, Report: rep}); err != nil {
		return
	}
	if err := o.engine.RefreshFlaggedReports(ctx); err != nil {
		log.WithError(err).Warn("Post-action report refetch failed, replica may lag until next event")
	}
	if refetchIncidents {
		if err := o.engine.RefreshAdminIncidents(ctx); err != nil {
			log.WithError(err).Warn("Post-action incident refetch failed, replica may lag until next event")
		}
	}
}

func (o *Orchestrator) begin(entityID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.inflight[entityID]; ok {
		return fmt.Errorf("%w: %s", ErrConflict, entityID)
	}
	o.inflight[entityID] = struct{}{}
	return nil
}

func (o *Orchestrator) finish(entityID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, entityID)
}
