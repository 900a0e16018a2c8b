package models

import (
	"time"
)

// VerificationState - стадия модерации репорта
type VerificationState string

const (
	VerificationUnverified  VerificationState = "Unverified"
	VerificationVerified    VerificationState = "Verified"
	VerificationFlagged     VerificationState = "Flagged for Admin Review"
	VerificationNotVerified VerificationState = "Not Verified"
)

// Report - отдельное сообщение наблюдателя, может быть привязано к инциденту
type Report struct {
	ID             string            `json:"report_id"`
	IncidentID     string            `json:"incident_id,omitempty"` // пустая строка = не привязан
	Category       IncidentCategory  `json:"category"`
	Description    string            `json:"description"`
	ReportedTime   time.Time         `json:"reported_time"`
	SubmissionTime time.Time         `json:"submission_timestamp"`
	ReportedLat    float64           `json:"reported_lat"`
	ReportedLng    float64           `json:"reported_lng"`
	TrustScore     float64           `json:"trust_score"`
	Verification   VerificationState `json:"verification_state"`
	EvidenceURLs   []string          `json:"evidence_urls"`
}

// Linked сообщает, привязан ли репорт к инциденту
func (r *Report) Linked() bool {
	return r.IncidentID != ""
}

// PendingDedup сообщает, является ли репорт кандидатом на слияние:
// подтвержден, но еще не привязан ни к одному инциденту.
func (r *Report) PendingDedup() bool {
	return r.Verification == VerificationVerified && !r.Linked()
}
