package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shenikar/incident_moderation_console/internal/config"
	"github.com/shenikar/incident_moderation_console/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks

// Source определяет контракт авторитетного удаленного источника инцидентов и репортов
type Source interface {
	PublicIncidents(ctx context.Context) ([]models.Incident, error)
	AdminIncidents(ctx context.Context) ([]models.Incident, error)
	FlaggedReports(ctx context.Context) ([]models.Report, error)
	SubmitReport(ctx context.Context, submission ReportSubmission) (*SubmissionReceipt, error)
	ReportStatus(ctx context.Context, reportID string) (*models.Report, error)
	ApproveReport(ctx context.Context, reportID string) (*models.Report, error)
	RejectReport(ctx context.Context, reportID string) (*models.Report, error)
	ResolveIncident(ctx context.Context, incidentID string, target models.ResolutionTag) (*models.Incident, error)
	MergeReport(ctx context.Context, reportID, incidentID string) (*models.Report, error)
}

// Client - HTTP-реализация Source поверх REST API удаленной платформы
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient создает клиент удаленного источника
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: cfg.UpstreamAPIURL,
		apiKey:  cfg.UpstreamAPIKey,
		httpClient: &http.Client{
			Timeout: cfg.UpstreamTimeout,
		},
		logger: logger,
	}
}

// PublicIncidents возвращает инциденты, видимые без admin-возможности
func (c *Client) PublicIncidents(ctx context.Context) ([]models.Incident, error) {
	var env incidentsEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/incidents/public", nil, &env, false); err != nil {
		return nil, fmt.Errorf("remote: could not fetch public incidents: %w", err)
	}
	return MapIncidents(env.Incidents), nil
}

// AdminIncidents возвращает полный набор инцидентов; требует admin-возможности
func (c *Client) AdminIncidents(ctx context.Context) ([]models.Incident, error) {
	var env incidentsEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/incidents", nil, &env, true); err != nil {
		return nil, fmt.Errorf("remote: could not fetch admin incidents: %w", err)
	}
	return MapIncidents(env.Incidents), nil
}

// FlaggedReports возвращает репорты, отмеченные для ручной модерации; требует admin-возможности
func (c *Client) FlaggedReports(ctx context.Context) ([]models.Report, error) {
	var env reportsEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/reports/flagged", nil, &env, true); err != nil {
		return nil, fmt.Errorf("remote: could not fetch flagged reports: %w", err)
	}
	return MapReports(env.Reports), nil
}

// SubmitReport передает новую отправку репорта удаленному источнику
func (c *Client) SubmitReport(ctx context.Context, submission ReportSubmission) (*SubmissionReceipt, error) {
	var evidence *string
	if submission.EvidencePath != "" {
		evidence = &submission.EvidencePath
	}
	req := submitRequest{
		Category:      string(submission.Category),
		Description:   submission.Description,
		ReportedLat:   submission.Latitude,
		ReportedLng:   submission.Longitude,
		DeviceLat:     submission.Latitude,
		DeviceLng:     submission.Longitude,
		LocationLabel: submission.LocationLabel,
		ReportedTime:  submission.ReportedTime,
		EvidencePath:  evidence,
	}

	var resp submitResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/report", req, &resp, false); err != nil {
		return nil, fmt.Errorf("remote: could not submit report: %w", err)
	}

	receipt := &SubmissionReceipt{
		ReportID:     models.FormatReportID(resp.ReportID),
		TrustScore:   resp.TrustScore,
		Verification: models.VerificationState(resp.VerificationState),
	}
	if resp.IncidentID != nil {
		receipt.IncidentID = models.FormatIncidentID(*resp.IncidentID)
	}
	return receipt, nil
}

// ReportStatus возвращает актуальную запись репорта по его идентификатору
func (c *Client) ReportStatus(ctx context.Context, reportID string) (*models.Report, error) {
	n, err := models.ParseReportID(reportID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	var payload ReportPayload
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/report/status/%d", n), nil, &payload, false); err != nil {
		return nil, fmt.Errorf("remote: could not fetch report status: %w", err)
	}
	rep := MapReport(payload)
	return &rep, nil
}

// ApproveReport отправляет approve; идемпотентность для уже подтвержденного репорта
// обеспечивается удаленным источником и локально не проверяется
func (c *Client) ApproveReport(ctx context.Context, reportID string) (*models.Report, error) {
	return c.reportAction(ctx, reportID, "approve")
}

// RejectReport отправляет reject, переводя репорт к Not Verified
func (c *Client) RejectReport(ctx context.Context, reportID string) (*models.Report, error) {
	return c.reportAction(ctx, reportID, "reject")
}

func (c *Client) reportAction(ctx context.Context, reportID, action string) (*models.Report, error) {
	n, err := models.ParseReportID(reportID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	var env reportEnvelope
	path := fmt.Sprintf("/api/admin/report/%d/%s", n, action)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &env, true); err != nil {
		return nil, fmt.Errorf("remote: could not %s report: %w", action, err)
	}
	rep := MapReport(env.Report)
	return &rep, nil
}

// ResolveIncident устанавливает явное целевое состояние разрешения на проводе
func (c *Client) ResolveIncident(ctx context.Context, incidentID string, target models.ResolutionTag) (*models.Incident, error) {
	n, err := models.ParseIncidentID(incidentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	var env incidentEnvelope
	path := fmt.Sprintf("/api/admin/incident/%d/resolve", n)
	if err := c.doJSON(ctx, http.MethodPost, path, resolveRequest{ResolutionStatus: string(target)}, &env, true); err != nil {
		return nil, fmt.Errorf("remote: could not resolve incident: %w", err)
	}
	inc := MapIncident(env.Incident)
	return &inc, nil
}

// MergeReport привязывает репорт к инциденту. У текущей удаленной платформы
// нет merge-примитива, поэтому операция сигнализирует ErrUnsupported вместо
// тихого отказа.
func (c *Client) MergeReport(ctx context.Context, reportID, incidentID string) (*models.Report, error) {
	return nil, fmt.Errorf("remote: merge of %s into %s: %w", reportID, incidentID, ErrUnsupported)
}

// doJSON выполняет запрос и раскладывает коды ответов по таксономии ошибок
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, admin bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		if c.apiKey == "" {
			return ErrUnauthorized
		}
		req.Header.Set("X-API-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("Upstream request completed")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrValidation, serverMessage(raw))
	default:
		return fmt.Errorf("upstream error: %s - %s", resp.Status, serverMessage(raw))
	}
}

func serverMessage(raw []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(raw)
}
