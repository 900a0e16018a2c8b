package webhook_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/incident_moderation_console/internal/models"
	"github.com/shenikar/incident_moderation_console/internal/replica"
	"github.com/shenikar/incident_moderation_console/internal/webhook"
	"github.com/shenikar/incident_moderation_console/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newSilentLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func TestBridge_PublishesIncidentChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)

	var published webhook.ChangeEvent
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, event webhook.ChangeEvent) error {
			published = event
			return nil
		})

	subscriber := webhook.Bridge(context.Background(), pub, newSilentLogger())
	subscriber(replica.Change{
		Event:    replica.EventIncidentCreated,
		Incident: &models.Incident{ID: "INC-00001"},
	})

	assert.Equal(t, replica.EventIncidentCreated, published.Kind)
	assert.Equal(t, "INC-00001", published.EntityID)
	require.NotNil(t, published.Incident)
	assert.NotEqual(t, uuid.Nil, published.EventID)
	assert.False(t, published.OccurredAt.IsZero())
}

func TestBridge_PublishesReportChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)

	var published webhook.ChangeEvent
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, event webhook.ChangeEvent) error {
			published = event
			return nil
		})

	subscriber := webhook.Bridge(context.Background(), pub, newSilentLogger())
	subscriber(replica.Change{
		Event:  replica.EventReportVerUpdated,
		Report: &models.Report{ID: "RPT-00012"},
	})

	assert.Equal(t, "RPT-00012", published.EntityID)
	require.NotNil(t, published.Report)
	assert.Nil(t, published.Incident)
}

func TestBridge_PublishFailureDoesNotPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)

	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("redis is down"))

	// Отказ публикации логируется и не мешает применению изменения
	subscriber := webhook.Bridge(context.Background(), pub, newSilentLogger())
	subscriber(replica.Change{
		Event:    replica.EventIncidentUpdated,
		Incident: &models.Incident{ID: "INC-00001"},
	})
}
