package remote

import (
	"github.com/shenikar/incident_moderation_console/internal/models"
)

const unknownLocationLabel = "Unknown Location"

// MapIncident нормализует проводную форму инцидента в доменную модель.
// Производные поля report_count и has_verified_report пересчитываются из
// вложенного набора репортов, а не берутся из payload.
func MapIncident(p IncidentPayload) models.Incident {
	label := unknownLocationLabel
	if p.LocationLabel != nil && *p.LocationLabel != "" {
		label = *p.LocationLabel
	}

	resolution := models.ResolutionUnresolved
	if p.ResolutionStatus == string(models.ResolutionResolved) {
		resolution = models.ResolutionResolved
	}

	hasVerified := false
	for _, rep := range p.Reports {
		if rep.VerificationState == string(models.VerificationVerified) {
			hasVerified = true
			break
		}
	}

	return models.Incident{
		ID:                models.FormatIncidentID(p.ID),
		Category:          models.IncidentCategory(p.Category),
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
		LocationLabel:     label,
		ReportedTime:      p.CreatedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		ResolutionTag:     resolution,
		PriorityTag:       models.PriorityTag(p.PriorityLabel),
		PriorityScore:     p.PriorityScore,
		ConfidenceScore:   p.ConfidenceScore,
		ReportCount:       len(p.Reports),
		HasVerifiedReport: hasVerified,
	}
}

// MapReport нормализует проводную форму репорта в доменную модель
func MapReport(p ReportPayload) models.Report {
	incidentID := ""
	if p.IncidentID != nil {
		incidentID = models.FormatIncidentID(*p.IncidentID)
	}

	var evidence []string
	if p.EvidencePath != nil && *p.EvidencePath != "" {
		evidence = []string{*p.EvidencePath}
	}

	return models.Report{
		ID:             models.FormatReportID(p.ID),
		IncidentID:     incidentID,
		Category:       models.IncidentCategory(p.Category),
		Description:    p.Description,
		ReportedTime:   p.ReportedTime,
		SubmissionTime: p.SubmissionTime,
		ReportedLat:    p.ReportedLat,
		ReportedLng:    p.ReportedLng,
		TrustScore:     p.TrustScore,
		Verification:   models.VerificationState(p.VerificationState),
		EvidenceURLs:   evidence,
	}
}

// MapIncidents нормализует слайс проводных инцидентов
func MapIncidents(payloads []IncidentPayload) []models.Incident {
	out := make([]models.Incident, len(payloads))
	for i, p := range payloads {
		out[i] = MapIncident(p)
	}
	return out
}

// MapReports нормализует слайс проводных репортов
func MapReports(payloads []ReportPayload) []models.Report {
	out := make([]models.Report, len(payloads))
	for i, p := range payloads {
		out[i] = MapReport(p)
	}
	return out
}
