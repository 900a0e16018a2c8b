package remote

import (
	"time"

	"github.com/shenikar/incident_moderation_console/internal/models"
)

// Проводные формы удаленного источника: числовые идентификаторы,
// строковые статусы, полный набор репортов внутри инцидента.

// IncidentPayload - инцидент в том виде, в каком его отдает удаленный источник
type IncidentPayload struct {
	ID               int64           `json:"id"`
	Category         string          `json:"category"`
	Latitude         float64         `json:"latitude"`
	Longitude        float64         `json:"longitude"`
	LocationLabel    *string         `json:"location_label"`
	ResolutionStatus string          `json:"resolution_status"`
	PriorityLabel    string          `json:"priority_label"`
	PriorityScore    float64         `json:"priority_score"`
	ConfidenceScore  float64         `json:"confidence_score"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Reports          []ReportPayload `json:"reports,omitempty"`
}

// ReportPayload - репорт в том виде, в каком его отдает удаленный источник
type ReportPayload struct {
	ID                int64     `json:"id"`
	IncidentID        *int64    `json:"incident_id"`
	Category          string    `json:"category"`
	Description       string    `json:"description"`
	ReportedTime      time.Time `json:"reported_time"`
	SubmissionTime    time.Time `json:"submission_time"`
	ReportedLat       float64   `json:"reported_lat"`
	ReportedLng       float64   `json:"reported_lng"`
	EvidencePath      *string   `json:"evidence_path"`
	TrustScore        float64   `json:"trust_score"`
	VerificationState string    `json:"verification_state"`
	CreatedAt         time.Time `json:"created_at"`
}

// ReportSubmission - данные новой отправки репорта наблюдателем
type ReportSubmission struct {
	Category      models.IncidentCategory
	Description   string
	Latitude      float64
	Longitude     float64
	LocationLabel string
	ReportedTime  time.Time
	EvidencePath  string
}

// SubmissionReceipt - результат приема репорта удаленным источником
type SubmissionReceipt struct {
	ReportID     string                   `json:"report_id"`
	TrustScore   float64                  `json:"trust_score"`
	Verification models.VerificationState `json:"verification_state"`
	IncidentID   string                   `json:"incident_id,omitempty"`
}

// submitRequest - тело запроса отправки репорта на проводе
type submitRequest struct {
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	ReportedLat   float64   `json:"reported_lat"`
	ReportedLng   float64   `json:"reported_lng"`
	DeviceLat     float64   `json:"device_lat"`
	DeviceLng     float64   `json:"device_lng"`
	LocationLabel string    `json:"location_label,omitempty"`
	ReportedTime  time.Time `json:"reported_time"`
	EvidencePath  *string   `json:"evidence_path"`
}

// submitResponse - тело ответа отправки репорта на проводе
type submitResponse struct {
	ReportID          int64   `json:"report_id"`
	TrustScore        float64 `json:"trust_score"`
	VerificationState string  `json:"verification_state"`
	IncidentID        *int64  `json:"incident_id"`
}

type incidentsEnvelope struct {
	Incidents []IncidentPayload `json:"incidents"`
}

type reportsEnvelope struct {
	Reports []ReportPayload `json:"reports"`
}

type incidentEnvelope struct {
	Incident IncidentPayload `json:"incident"`
}

type reportEnvelope struct {
	Report ReportPayload `json:"report"`
}

type resolveRequest struct {
	ResolutionStatus string `json:"resolution_status"`
}
