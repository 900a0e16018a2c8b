package stream

import (
	"testing"

	"github.com/shenikar/incident_moderation_console/internal/models"
	"github.com/shenikar/incident_moderation_console/internal/replica"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessage_IncidentEvents(t *testing.T) {
	events := []string{
		replica.EventIncidentCreated,
		replica.EventIncidentUpdated,
		replica.EventIncidentResolved,
	}
	for _, event := range events {
		t.Run(event, func(t *testing.T) {
			raw := []byte(`{"event":"` + event + `","data":{
				"id": 7,
				"category": "Theft",
				"latitude": 55.75,
				"longitude": 37.61,
				"location_label": "Center",
				"resolution_status": "Resolved",
				"priority_label": "High",
				"priority_score": 0.7,
				"confidence_score": 0.8
			}}`)

			change, err := DecodeMessage(raw)

			require.NoError(t, err)
			assert.Equal(t, event, change.Event)
			require.NotNil(t, change.Incident)
			assert.Nil(t, change.Report)
			assert.Equal(t, "INC-00007", change.Incident.ID)
			assert.Equal(t, models.CategoryTheft, change.Incident.Category)
			assert.Equal(t, models.ResolutionResolved, change.Incident.ResolutionTag)
			assert.Equal(t, models.PriorityHigh, change.Incident.PriorityTag)
		})
	}
}

func TestDecodeMessage_ReportVerificationUpdated(t *testing.T) {
	raw := []byte(`{"event":"REPORT_VERIFICATION_UPDATED","data":{
		"id": 12,
		"incident_id": 7,
		"category": "Theft",
		"verification_state": "Verified",
		"trust_score": 0.9
	}}`)

	change, err := DecodeMessage(raw)

	require.NoError(t, err)
	assert.Equal(t, replica.EventReportVerUpdated, change.Event)
	require.NotNil(t, change.Report)
	assert.Nil(t, change.Incident)
	assert.Equal(t, "RPT-00012", change.Report.ID)
	assert.Equal(t, "INC-00007", change.Report.IncidentID)
	assert.Equal(t, models.VerificationVerified, change.Report.Verification)
}

func TestDecodeMessage_Rejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{"event":`},
		{"unrecognized event", `{"event":"INCIDENT_EXPLODED","data":{"id":1}}`},
		{"empty payload", `{"event":"INCIDENT_CREATED"}`},
		{"incident without id", `{"event":"INCIDENT_CREATED","data":{"category":"Theft"}}`},
		{"report without id", `{"event":"REPORT_VERIFICATION_UPDATED","data":{"category":"Theft"}}`},
		{"payload of wrong shape", `{"event":"INCIDENT_CREATED","data":{"id":"seven"}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Разбор закрыт по умолчанию: подозрительный кадр отклоняется целиком
			change, err := DecodeMessage([]byte(tc.raw))
			assert.Error(t, err)
			assert.Nil(t, change.Incident)
			assert.Nil(t, change.Report)
		})
	}
}
