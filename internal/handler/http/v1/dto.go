package v1

import (
	"time"
)

// SubmitReportRequest DTO для отправки репорта наблюдателем
// @Description DTO для отправки репорта наблюдателем
type SubmitReportRequest struct {
	Category      string    `json:"category" validate:"required,oneof='Sexual Assault' 'Bomb Threat' 'Fire / Explosion' 'Accident' 'Theft'"`
	Description   string    `json:"description,omitempty"`
	Latitude      float64   `json:"latitude" validate:"required,latitude"`
	Longitude     float64   `json:"longitude" validate:"required,longitude"`
	LocationLabel string    `json:"location_label,omitempty"`
	ReportedTime  time.Time `json:"reported_time" validate:"required"`
	EvidencePath  string    `json:"evidence_path,omitempty"`
}

// SubmitReportResponse DTO для результата приема репорта
// @Description DTO для результата приема репорта
type SubmitReportResponse struct {
	ReportID          string  `json:"report_id"`
	TrustScore        float64 `json:"trust_score"`
	VerificationState string  `json:"verification_state"`
	IncidentID        *string `json:"incident_id"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	IncidentID        string    `json:"incident_id"`
	Category          string    `json:"category"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	LocationLabel     string    `json:"location_label"`
	ReportedTime      time.Time `json:"reported_time"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	ResolutionTag     string    `json:"resolution_tag"`
	PriorityTag       string    `json:"priority_tag"`
	PriorityScore     float64   `json:"priority_score"`
	ConfidenceScore   float64   `json:"confidence_score"`
	ReportCount       int       `json:"report_count"`
	HasVerifiedReport bool      `json:"has_verified_report"`
}

// ReportResponse DTO для ответа с информацией о репорте
// @Description DTO для ответа с информацией о репорте
type ReportResponse struct {
	ReportID          string    `json:"report_id"`
	IncidentID        *string   `json:"incident_id"`
	Category          string    `json:"category"`
	Description       string    `json:"description"`
	ReportedTime      time.Time `json:"reported_time"`
	SubmissionTime    time.Time `json:"submission_timestamp"`
	TrustScore        float64   `json:"trust_score"`
	VerificationState string    `json:"verification_state"`
	EvidenceURLs      []string  `json:"evidence_urls"`
}

// CandidateResponse DTO для кандидата на слияние
// @Description DTO для кандидата на слияние
type CandidateResponse struct {
	Incident        IncidentResponse `json:"incident"`
	SimilarityScore float64          `json:"similarity_score"`
}

// MergeReportRequest DTO для слияния репорта с инцидентом
// @Description DTO для слияния репорта с инцидентом
type MergeReportRequest struct {
	IncidentID string `json:"incident_id" validate:"required"`
}

// HealthResponse DTO для ответа health-check
// @Description DTO для ответа health-check
type HealthResponse struct {
	Status     string `json:"status"`
	StreamLive bool   `json:"stream_live"`
}
