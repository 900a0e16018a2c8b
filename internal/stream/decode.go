package stream

import (
	"encoding/json"
	"fmt"

	"github.com/shenikar/incident_moderation_console/internal/remote"
	"github.com/shenikar/incident_moderation_console/internal/replica"
)

// envelope - кадр push-канала: имя события плюс полный payload сущности (не дифф)
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeMessage разбирает кадр push-канала в нормализованное изменение.
// Разбор закрыт по умолчанию: неизвестное имя события или нераспознаваемая
// форма payload отклоняются с ошибкой, а не пропускаются дальше.
func DecodeMessage(raw []byte) (replica.Change, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return replica.Change{}, fmt.Errorf("stream: malformed frame: %w", err)
	}
	if len(env.Data) == 0 {
		return replica.Change{}, fmt.Errorf("stream: frame %q carries no payload", env.Event)
	}

	switch env.Event {
	case replica.EventIncidentCreated, replica.EventIncidentUpdated, replica.EventIncidentResolved:
		var payload remote.IncidentPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return replica.Change{}, fmt.Errorf("stream: malformed incident payload in %q: %w", env.Event, err)
		}
		if payload.ID <= 0 {
			return replica.Change{}, fmt.Errorf("stream: incident payload in %q has no id", env.Event)
		}
		inc := remote.MapIncident(payload)
		return replica.Change{Event: env.Event, Incident: &inc}, nil

	case replica.EventReportVerUpdated:
		var payload remote.ReportPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return replica.Change{}, fmt.Errorf("stream: malformed report payload in %q: %w", env.Event, err)
		}
		if payload.ID <= 0 {
			return replica.Change{}, fmt.Errorf("stream: report payload in %q has no id", env.Event)
		}
		rep := remote.MapReport(payload)
		return replica.Change{Event: env.Event, Report: &rep}, nil

	default:
		return replica.Change{}, fmt.Errorf("stream: unrecognized event %q", env.Event)
	}
}
