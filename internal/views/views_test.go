package views

import (
	"testing"
	"time"

	"github.com/shenikar/incident_moderation_console/internal/models"
	"github.com/shenikar/incident_moderation_console/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() (*Engine, *store.Store) {
	st := store.New()
	return New(st), st
}

func baseTime() time.Time {
	return time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)
}

func TestPublicIncidents_FiltersVerified(t *testing.T) {
	engine, st := newTestEngine()
	st.UpsertIncident(models.Incident{ID: "INC-00001", HasVerifiedReport: true})
	st.UpsertIncident(models.Incident{ID: "INC-00002", HasVerifiedReport: false})

	incidents := engine.PublicIncidents()

	require.Len(t, incidents, 1)
	assert.Equal(t, "INC-00001", incidents[0].ID)
}

func TestPublicIncidents_FixedSort(t *testing.T) {
	engine, st := newTestEngine()
	ts := baseTime()

	// Публичная сортировка фиксированная: ранг приоритета по возрастанию,
	// затем время репорта по убыванию
	st.UpsertIncident(models.Incident{ID: "INC-00001", PriorityTag: models.PriorityLow, ReportedTime: ts, HasVerifiedReport: true})
	st.UpsertIncident(models.Incident{ID: "INC-00002", PriorityTag: models.PriorityCritical, ReportedTime: ts.Add(-time.Hour), HasVerifiedReport: true})
	st.UpsertIncident(models.Incident{ID: "INC-00003", PriorityTag: models.PriorityCritical, ReportedTime: ts, HasVerifiedReport: true})

	incidents := engine.PublicIncidents()

	require.Len(t, incidents, 3)
	assert.Equal(t, "INC-00003", incidents[0].ID)
	assert.Equal(t, "INC-00002", incidents[1].ID)
	assert.Equal(t, "INC-00001", incidents[2].ID)
}

func TestAdminIncidents_SortByPriority(t *testing.T) {
	engine, st := newTestEngine()

	// Порядок вставки перемешан относительно приоритетов
	st.UpsertIncident(models.Incident{ID: "INC-00001", PriorityTag: models.PriorityMedium})
	st.UpsertIncident(models.Incident{ID: "INC-00002", PriorityTag: models.PriorityCritical})
	st.UpsertIncident(models.Incident{ID: "INC-00003", PriorityTag: models.PriorityLow})
	st.UpsertIncident(models.Incident{ID: "INC-00004", PriorityTag: models.PriorityHigh})
	st.UpsertIncident(models.Incident{ID: "INC-00005", PriorityTag: models.PriorityCritical})

	incidents := engine.AdminIncidents(Filter{}, SortByPriority)

	require.Len(t, incidents, 5)
	ranks := make([]int, len(incidents))
	for i, inc := range incidents {
		ranks[i] = inc.PriorityTag.Rank()
	}
	// Все Critical раньше High, раньше Medium, раньше Low
	assert.IsNonDecreasing(t, ranks)
	assert.Equal(t, models.PriorityCritical, incidents[0].PriorityTag)
	assert.Equal(t, models.PriorityCritical, incidents[1].PriorityTag)
	assert.Equal(t, models.PriorityLow, incidents[4].PriorityTag)
}

func TestAdminIncidents_SortByConfidence(t *testing.T) {
	engine, st := newTestEngine()
	st.UpsertIncident(models.Incident{ID: "INC-00001", ConfidenceScore: 0.3})
	st.UpsertIncident(models.Incident{ID: "INC-00002", ConfidenceScore: 0.9})
	st.UpsertIncident(models.Incident{ID: "INC-00003", ConfidenceScore: 0.6})

	incidents := engine.AdminIncidents(Filter{}, SortByConfidence)

	require.Len(t, incidents, 3)
	assert.Equal(t, "INC-00002", incidents[0].ID)
	assert.Equal(t, "INC-00003", incidents[1].ID)
	assert.Equal(t, "INC-00001", incidents[2].ID)
}

func TestAdminIncidents_SortByReports_TieBrokenByChain(t *testing.T) {
	engine, st := newTestEngine()
	ts := baseTime()

	// Равные report_count разрешаются следующим правилом цепочки - приоритетом
	st.UpsertIncident(models.Incident{ID: "INC-00001", ReportCount: 2, PriorityTag: models.PriorityLow, ReportedTime: ts})
	st.UpsertIncident(models.Incident{ID: "INC-00002", ReportCount: 2, PriorityTag: models.PriorityCritical, ReportedTime: ts})
	st.UpsertIncident(models.Incident{ID: "INC-00003", ReportCount: 5, PriorityTag: models.PriorityLow, ReportedTime: ts})

	incidents := engine.AdminIncidents(Filter{}, SortByReports)

	require.Len(t, incidents, 3)
	assert.Equal(t, "INC-00003", incidents[0].ID)
	assert.Equal(t, "INC-00002", incidents[1].ID)
	assert.Equal(t, "INC-00001", incidents[2].ID)
}

func TestAdminIncidents_SortByTime(t *testing.T) {
	engine, st := newTestEngine()
	ts := baseTime()
	st.UpsertIncident(models.Incident{ID: "INC-00001", ReportedTime: ts.Add(-2 * time.Hour)})
	st.UpsertIncident(models.Incident{ID: "INC-00002", ReportedTime: ts})
	st.UpsertIncident(models.Incident{ID: "INC-00003", ReportedTime: ts.Add(-time.Hour)})

	incidents := engine.AdminIncidents(Filter{}, SortByTime)

	require.Len(t, incidents, 3)
	assert.Equal(t, "INC-00002", incidents[0].ID)
	assert.Equal(t, "INC-00003", incidents[1].ID)
	assert.Equal(t, "INC-00001", incidents[2].ID)
}

func TestAdminIncidents_ConjunctiveFilter(t *testing.T) {
	engine, st := newTestEngine()
	st.UpsertIncident(models.Incident{ID: "INC-00001", Category: models.CategoryTheft, ResolutionTag: models.ResolutionUnresolved, PriorityTag: models.PriorityHigh})
	st.UpsertIncident(models.Incident{ID: "INC-00002", Category: models.CategoryTheft, ResolutionTag: models.ResolutionResolved, PriorityTag: models.PriorityHigh})
	st.UpsertIncident(models.Incident{ID: "INC-00003", Category: models.CategoryAccident, ResolutionTag: models.ResolutionUnresolved, PriorityTag: models.PriorityHigh})

	// Каждое поле фильтра независимо опционально, заполненные соединяются конъюнкцией
	incidents := engine.AdminIncidents(Filter{
		Category:   models.CategoryTheft,
		Resolution: models.ResolutionUnresolved,
	}, SortByPriority)

	require.Len(t, incidents, 1)
	assert.Equal(t, "INC-00001", incidents[0].ID)

	// Пустой фильтр не ограничивает ничего
	assert.Len(t, engine.AdminIncidents(Filter{}, SortByPriority), 3)
}

func TestReportsForIncident(t *testing.T) {
	engine, st := newTestEngine()
	st.UpsertReport(models.Report{ID: "RPT-00001", IncidentID: "INC-00001"})
	st.UpsertReport(models.Report{ID: "RPT-00002", IncidentID: "INC-00002"})
	st.UpsertReport(models.Report{ID: "RPT-00003", IncidentID: "INC-00001"})

	reports := engine.ReportsForIncident("INC-00001")

	require.Len(t, reports, 2)
	for _, rep := range reports {
		assert.Equal(t, "INC-00001", rep.IncidentID)
	}
}

func TestFlaggedQueue(t *testing.T) {
	engine, st := newTestEngine()
	st.UpsertReport(models.Report{ID: "RPT-00001", Verification: models.VerificationFlagged, Category: models.CategoryTheft})
	st.UpsertReport(models.Report{ID: "RPT-00002", Verification: models.VerificationVerified})
	st.UpsertReport(models.Report{ID: "RPT-00003", Verification: models.VerificationFlagged, Category: models.CategoryAccident})

	assert.Len(t, engine.FlaggedQueue(Filter{}), 2)

	filtered := engine.FlaggedQueue(Filter{Category: models.CategoryTheft})
	require.Len(t, filtered, 1)
	assert.Equal(t, "RPT-00001", filtered[0].ID)
}

func TestUnlinkedVerifiedReports(t *testing.T) {
	engine, st := newTestEngine()
	st.UpsertReport(models.Report{ID: "RPT-00001", Verification: models.VerificationVerified})
	st.UpsertReport(models.Report{ID: "RPT-00002", Verification: models.VerificationVerified, IncidentID: "INC-00001"})
	st.UpsertReport(models.Report{ID: "RPT-00003", Verification: models.VerificationFlagged})

	reports := engine.UnlinkedVerifiedReports()

	// Никогда не содержит привязанных репортов и всегда содержит каждый
	// подтвержденный без привязки
	require.Len(t, reports, 1)
	assert.Equal(t, "RPT-00001", reports[0].ID)
}

func TestUnlinkedVerifiedReports_AppearsOnceAfterVerification(t *testing.T) {
	engine, st := newTestEngine()

	// Свежая отправка с категорией Theft без существующих инцидентов
	st.UpsertReport(models.Report{ID: "RPT-00001", Category: models.CategoryTheft, Verification: models.VerificationUnverified})
	assert.Empty(t, engine.UnlinkedVerifiedReports())

	// Внешний актор подтверждает репорт без привязки к инциденту
	st.UpsertReport(models.Report{ID: "RPT-00001", Category: models.CategoryTheft, Verification: models.VerificationVerified})

	reports := engine.UnlinkedVerifiedReports()
	require.Len(t, reports, 1)
	assert.Equal(t, "RPT-00001", reports[0].ID)
}
