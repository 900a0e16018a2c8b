package v1

import (
	"github.com/shenikar/incident_moderation_console/internal/dedup"
	"github.com/shenikar/incident_moderation_console/internal/models"
	"github.com/shenikar/incident_moderation_console/internal/remote"
)

// ModelToIncidentResponse преобразует доменную модель инцидента в DTO для ответа
func ModelToIncidentResponse(inc models.Incident) IncidentResponse {
	return IncidentResponse{
		IncidentID:        inc.ID,
		Category:          string(inc.Category),
		Latitude:          inc.Latitude,
		Longitude:         inc.Longitude,
		LocationLabel:     inc.LocationLabel,
		ReportedTime:      inc.ReportedTime,
		CreatedAt:         inc.CreatedAt,
		UpdatedAt:         inc.UpdatedAt,
		ResolutionTag:     string(inc.ResolutionTag),
		PriorityTag:       string(inc.PriorityTag),
		PriorityScore:     inc.PriorityScore,
		ConfidenceScore:   inc.ConfidenceScore,
		ReportCount:       inc.ReportCount,
		HasVerifiedReport: inc.HasVerifiedReport,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(incidents []models.Incident) []IncidentResponse {
	responses := make([]IncidentResponse, len(incidents))
	for i, inc := range incidents {
		responses[i] = ModelToIncidentResponse(inc)
	}
	return responses
}

// ModelToReportResponse преобразует доменную модель репорта в DTO для ответа
func ModelToReportResponse(rep models.Report) ReportResponse {
	var incidentID *string
	if rep.Linked() {
		id := rep.IncidentID
		incidentID = &id
	}
	evidence := rep.EvidenceURLs
	if evidence == nil {
		evidence = []string{}
	}
	return ReportResponse{
		ReportID:          rep.ID,
		IncidentID:        incidentID,
		Category:          string(rep.Category),
		Description:       rep.Description,
		ReportedTime:      rep.ReportedTime,
		SubmissionTime:    rep.SubmissionTime,
		TrustScore:        rep.TrustScore,
		VerificationState: string(rep.Verification),
		EvidenceURLs:      evidence,
	}
}

// ModelsToReportResponses преобразует слайс моделей в слайс DTO
func ModelsToReportResponses(reports []models.Report) []ReportResponse {
	responses := make([]ReportResponse, len(reports))
	for i, rep := range reports {
		responses[i] = ModelToReportResponse(rep)
	}
	return responses
}

// ReceiptToResponse преобразует квитанцию приема репорта в DTO для ответа
func ReceiptToResponse(receipt *remote.SubmissionReceipt) SubmitReportResponse {
	var incidentID *string
	if receipt.IncidentID != "" {
		id := receipt.IncidentID
		incidentID = &id
	}
	return SubmitReportResponse{
		ReportID:          receipt.ReportID,
		TrustScore:        receipt.TrustScore,
		VerificationState: string(receipt.Verification),
		IncidentID:        incidentID,
	}
}

// CandidatesToResponses преобразует кандидатов на слияние в DTO
func CandidatesToResponses(candidates []dedup.Candidate) []CandidateResponse {
	responses := make([]CandidateResponse, len(candidates))
	for i, c := range candidates {
		responses[i] = CandidateResponse{
			Incident:        ModelToIncidentResponse(c.Incident),
			SimilarityScore: c.SimilarityScore,
		}
	}
	return responses
}

// DTOToSubmission преобразует DTO отправки в проводную форму удаленного источника
func DTOToSubmission(dto SubmitReportRequest) remote.ReportSubmission {
	return remote.ReportSubmission{
		Category:      models.IncidentCategory(dto.Category),
		Description:   dto.Description,
		Latitude:      dto.Latitude,
		Longitude:     dto.Longitude,
		LocationLabel: dto.LocationLabel,
		ReportedTime:  dto.ReportedTime,
		EvidencePath:  dto.EvidencePath,
	}
}
