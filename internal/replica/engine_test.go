package replica

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shenikar/incident_moderation_console/internal/models"
	"github.com/shenikar/incident_moderation_console/internal/remote/mocks"
	"github.com/shenikar/incident_moderation_console/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestEngine(t *testing.T, opts Options) (*Engine, *mocks.MockSource, *store.Store) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockSource(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	st := store.New()
	return New(st, source, logger, opts), source, st
}

func TestBootstrap_PublicOnly(t *testing.T) {
	// Подготовка
	engine, source, st := newTestEngine(t, Options{})

	// Ожидания: без admin-возможности грузится только публичный набор
	source.EXPECT().PublicIncidents(gomock.Any()).Return([]models.Incident{
		{ID: "INC-00001", HasVerifiedReport: true},
	}, nil)

	// Действие
	err := engine.Bootstrap(context.Background())

	// Проверки
	require.NoError(t, err)
	_, ok := st.Incident("INC-00001")
	assert.True(t, ok)
}

func TestBootstrap_Admin(t *testing.T) {
	// Подготовка
	engine, source, st := newTestEngine(t, Options{AdminCapability: true})

	// Ожидания
	source.EXPECT().PublicIncidents(gomock.Any()).Return([]models.Incident{
		{ID: "INC-00001", HasVerifiedReport: true},
	}, nil)
	source.EXPECT().AdminIncidents(gomock.Any()).Return([]models.Incident{
		{ID: "INC-00001", HasVerifiedReport: true},
		{ID: "INC-00002"},
	}, nil)
	source.EXPECT().FlaggedReports(gomock.Any()).Return([]models.Report{
		{ID: "RPT-00001", Verification: models.VerificationFlagged},
	}, nil)

	// Действие
	err := engine.Bootstrap(context.Background())

	// Проверки
	require.NoError(t, err)
	_, ok := st.Incident("INC-00002")
	assert.True(t, ok)
	_, ok = st.Report("RPT-00001")
	assert.True(t, ok)
}

func TestBootstrap_FetchFailure(t *testing.T) {
	// Подготовка
	engine, source, _ := newTestEngine(t, Options{})
	upstreamErr := errors.New("connection refused")

	// Ожидания
	source.EXPECT().PublicIncidents(gomock.Any()).Return(nil, upstreamErr)

	// Действие + Проверки
	err := engine.Bootstrap(context.Background())
	assert.ErrorIs(t, err, upstreamErr)
}

func TestSubmitAndRun_AppliesChanges(t *testing.T) {
	// Подготовка
	engine, _, st := newTestEngine(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	applied := make(chan Change, 1)
	engine.Subscribe(func(ch Change) { applied <- ch })

	done := make(chan struct{})
	go func() {
		defer close(done)
		engine.Run(ctx)
	}()

	// Действие
	inc := &models.Incident{ID: "INC-00001", Category: models.CategoryTheft}
	require.NoError(t, engine.Submit(ctx, Change{Event: EventIncidentCreated, Incident: inc}))

	// Проверки: подписчик уведомляется после применения к реплике
	ch := <-applied
	assert.Equal(t, EventIncidentCreated, ch.Event)
	stored, ok := st.Incident("INC-00001")
	require.True(t, ok)
	assert.Equal(t, models.CategoryTheft, stored.Category)

	cancel()
	<-done
}

func TestApplyCompletion_LinkedReportRefreshesPublicIncidents(t *testing.T) {
	// Подготовка: INC-00007 виден публично, репорт по нему меняет стадию модерации
	engine, source, st := newTestEngine(t, Options{AdminCapability: true})
	st.UpsertIncident(models.Incident{ID: "INC-00007", ReportCount: 1})

	rep := &models.Report{
		ID:           "RPT-00012",
		IncidentID:   "INC-00007",
		Verification: models.VerificationVerified,
	}

	// Ожидания: привязанный репорт инвалидирует производные поля инцидента,
	// поэтому публичный набор переснимается с источника
	source.EXPECT().PublicIncidents(gomock.Any()).Return([]models.Incident{
		{ID: "INC-00007", ReportCount: 1, HasVerifiedReport: true},
	}, nil)

	// Действие
	err := engine.ApplyCompletion(context.Background(), Change{Event: EventReportVerUpdated, Report: rep})

	// Проверки
	require.NoError(t, err)
	inc, ok := st.Incident("INC-00007")
	require.True(t, ok)
	assert.True(t, inc.HasVerifiedReport)
}

func TestApplyCompletion_DroppedAfterSessionEnd(t *testing.T) {
	// Подготовка
	engine, _, st := newTestEngine(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Действие
	err := engine.ApplyCompletion(ctx, Change{
		Event:    EventIncidentUpdated,
		Incident: &models.Incident{ID: "INC-00001"},
	})

	// Проверки: позднее завершение не трогает реплику
	assert.ErrorIs(t, err, context.Canceled)
	_, ok := st.Incident("INC-00001")
	assert.False(t, ok)
}

func TestHandleReconnect_FullReconciliation(t *testing.T) {
	// Подготовка
	engine, source, st := newTestEngine(t, Options{AdminCapability: true, SyncOnReconnect: true})

	// Ожидания: пропущенные за разрыв события восстанавливаются полной сверкой
	source.EXPECT().PublicIncidents(gomock.Any()).Return([]models.Incident{
		{ID: "INC-00001", HasVerifiedReport: true},
	}, nil)
	source.EXPECT().AdminIncidents(gomock.Any()).Return([]models.Incident{
		{ID: "INC-00001", HasVerifiedReport: true},
	}, nil)
	source.EXPECT().FlaggedReports(gomock.Any()).Return([]models.Report{}, nil)

	// Действие
	engine.HandleReconnect(context.Background())

	// Проверки
	_, ok := st.Incident("INC-00001")
	assert.True(t, ok)
}

func TestHandleReconnect_Disabled(t *testing.T) {
	// Подготовка: сверка выключена, источник не должен вызываться вовсе
	engine, _, _ := newTestEngine(t, Options{})

	// Действие
	engine.HandleReconnect(context.Background())
}
