package v1

import (
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/incident_moderation_console/internal/config"
	"github.com/shenikar/incident_moderation_console/internal/dedup"
	"github.com/shenikar/incident_moderation_console/internal/markers"
	"github.com/shenikar/incident_moderation_console/internal/models"
	"github.com/shenikar/incident_moderation_console/internal/moderation"
	"github.com/shenikar/incident_moderation_console/internal/remote"
	"github.com/shenikar/incident_moderation_console/internal/views"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	views        *views.Engine
	orchestrator *moderation.Orchestrator
	matcher      *dedup.Matcher
	reconciler   *markers.Reconciler
	source       remote.Source
	streamLive   func() bool
	logger       *logrus.Logger
	validate     *validator.Validate
	cfg          *config.Config
}

func NewHandler(
	viewEngine *views.Engine,
	orchestrator *moderation.Orchestrator,
	matcher *dedup.Matcher,
	reconciler *markers.Reconciler,
	source remote.Source,
	streamLive func() bool,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		views:        viewEngine,
		orchestrator: orchestrator,
		matcher:      matcher,
		reconciler:   reconciler,
		source:       source,
		streamLive:   streamLive,
		logger:       logger,
		validate:     validator.New(),
		cfg:          cfg,
	}
}

// @Summary List public incidents
// @Description Get incidents visible without elevated privilege, sorted by priority rank and report time.
// @Tags Incidents
// @Produce json
// @Success 200 {array} IncidentResponse
// @Router /incidents/public [get]
func (h *Handler) listPublicIncidents(c *gin.Context) {
	incidents := h.views.PublicIncidents()
	c.JSON(http.StatusOK, gin.H{"incidents": ModelsToIncidentResponses(incidents)})
}

// @Summary Get map markers
// @Description Get the current marker set for the public incident map.
// @Tags Incidents
// @Produce json
// @Success 200 {array} markers.Marker
// @Router /incidents/markers [get]
func (h *Handler) listMarkers(c *gin.Context) {
	h.reconciler.Reconcile(slices.Values(h.views.PublicIncidents()))
	c.JSON(http.StatusOK, gin.H{"markers": h.reconciler.Snapshot()})
}

// @Summary Submit a report
// @Description Submit a new observer report, forwarded to the upstream platform.
// @Tags Reports
// @Accept json
// @Produce json
// @Param report body SubmitReportRequest true "Report submission"
// @Success 201 {object} SubmitReportResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Router /reports [post]
func (h *Handler) submitReport(c *gin.Context) {
	var input SubmitReportRequest
	log := h.logger.WithField("method", "submitReport")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.source.SubmitReport(c.Request.Context(), DTOToSubmission(input))
	if err != nil {
		log.WithError(err).Error("Failed to submit report upstream")
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ReceiptToResponse(receipt))
}

// @Summary Get report status
// @Description Get the current full record of a report by its identifier.
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID (RPT-00001)"
// @Success 200 {object} ReportResponse
// @Failure 404 {object} map[string]string "Report not found"
// @Router /reports/{id}/status [get]
func (h *Handler) reportStatus(c *gin.Context) {
	reportID := c.Param("id")
	log := h.logger.WithField("method", "reportStatus").WithField("report_id", reportID)

	rep, err := h.source.ReportStatus(c.Request.Context(), reportID)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch report status")
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(*rep))
}

// @Summary Health check
// @Description Service liveness plus the aggregate stream connectivity signal.
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:     "ok",
		StreamLive: h.streamLive(),
	})
}

// @Summary List incidents (admin)
// @Description Get the full incident list with optional filters and an explicit sort key. Requires API key.
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param category query string false "Category filter"
// @Param priority query string false "Priority filter"
// @Param resolution query string false "Resolution filter"
// @Param sort query string false "Sort key: priority | confidence | reports | time" default(priority)
// @Success 200 {array} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /admin/incidents [get]
func (h *Handler) listAdminIncidents(c *gin.Context) {
	filter := views.Filter{
		Category:   models.IncidentCategory(c.Query("category")),
		Priority:   models.PriorityTag(c.Query("priority")),
		Resolution: models.ResolutionTag(c.Query("resolution")),
	}
	sortKey := views.SortKey(c.DefaultQuery("sort", string(views.SortByPriority)))
	switch sortKey {
	case views.SortByPriority, views.SortByConfidence, views.SortByReports, views.SortByTime:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort key"})
		return
	}

	incidents := h.views.AdminIncidents(filter, sortKey)
	c.JSON(http.StatusOK, gin.H{"incidents": ModelsToIncidentResponses(incidents)})
}

// @Summary List reports of an incident (admin)
// @Description Get the reports currently linked to one incident. Requires API key.
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID (INC-00001)"
// @Success 200 {array} ReportResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /admin/incidents/{id}/reports [get]
func (h *Handler) listIncidentReports(c *gin.Context) {
	reports := h.views.ReportsForIncident(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"reports": ModelsToReportResponses(reports)})
}

// @Summary List flagged reports (admin)
// @Description Get the moderation queue: reports flagged for admin review. Requires API key.
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param category query string false "Category filter"
// @Success 200 {array} ReportResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /admin/reports/flagged [get]
func (h *Handler) listFlaggedReports(c *gin.Context) {
	filter := views.Filter{Category: models.IncidentCategory(c.Query("category"))}
	reports := h.views.FlaggedQueue(filter)
	c.JSON(http.StatusOK, gin.H{"reports": ModelsToReportResponses(reports)})
}

// @Summary List unlinked verified reports (admin)
// @Description Get verified reports awaiting a merge decision. Requires API key.
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} ReportResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /admin/reports/unlinked [get]
func (h *Handler) listUnlinkedReports(c *gin.Context) {
	reports := h.views.UnlinkedVerifiedReports()
	c.JSON(http.StatusOK, gin.H{"reports": ModelsToReportResponses(reports)})
}

// @Summary List merge candidates for a report (admin)
// @Description Get ranked incident candidates for an unlinked verified report. Requires API key.
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID (RPT-00001)"
// @Success 200 {array} CandidateResponse
// @Failure 404 {object} map[string]string "Report not found"
// @Router /admin/reports/{id}/candidates [get]
func (h *Handler) listMergeCandidates(c *gin.Context) {
	reportID := c.Param("id")
	rep, ok := h.views.Store().Report(reportID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	candidates := h.matcher.CandidatesFor(rep)
	c.JSON(http.StatusOK, gin.H{"candidates": CandidatesToResponses(candidates)})
}

// @Summary Approve a report (admin)
// @Description Approve a flagged or unverified report. Requires API key.
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID (RPT-00001)"
// @Success 200 {object} ReportResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Action already in progress"
// @Router /admin/reports/{id}/approve [post]
func (h *Handler) approveReport(c *gin.Context) {
	reportID := c.Param("id")
	log := h.logger.WithField("method", "approveReport").WithField("report_id", reportID)

	rep, err := h.orchestrator.ApproveReport(c.Request.Context(), reportID)
	if err != nil {
		log.WithError(err).Warn("Approve failed")
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": ModelToReportResponse(*rep)})
}

// @Summary Reject a report (admin)
// @Description Reject a report, transitioning it toward Not Verified. Requires API key.
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID (RPT-00001)"
// @Success 200 {object} ReportResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Action already in progress"
// @Router /admin/reports/{id}/reject [post]
func (h *Handler) rejectReport(c *gin.Context) {
	reportID := c.Param("id")
	log := h.logger.WithField("method", "rejectReport").WithField("report_id", reportID)

	rep, err := h.orchestrator.RejectReport(c.Request.Context(), reportID)
	if err != nil {
		log.WithError(err).Warn("Reject failed")
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": ModelToReportResponse(*rep)})
}

// @Summary Merge a report into an incident (admin)
// @Description Link an unlinked verified report to an existing incident. Requires API key.
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID (RPT-00001)"
// @Param merge body MergeReportRequest true "Merge target"
// @Success 200 {object} ReportResponse
// @Failure 409 {object} map[string]string "Action already in progress"
// @Failure 501 {object} map[string]string "Merge not supported by the upstream platform"
// @Router /admin/reports/{id}/merge [post]
func (h *Handler) mergeReport(c *gin.Context) {
	reportID := c.Param("id")
	log := h.logger.WithField("method", "mergeReport").WithField("report_id", reportID)

	var input MergeReportRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep, err := h.orchestrator.MergeReport(c.Request.Context(), reportID, input.IncidentID)
	if err != nil {
		log.WithError(err).Warn("Merge failed")
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": ModelToReportResponse(*rep)})
}

// @Summary Toggle incident resolution (admin)
// @Description Flip the incident between Resolved and Unresolved. Requires API key.
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID (INC-00001)"
// @Success 200 {object} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Action already in progress"
// @Router /admin/incidents/{id}/resolution [post]
func (h *Handler) toggleResolution(c *gin.Context) {
	incidentID := c.Param("id")
	log := h.logger.WithField("method", "toggleResolution").WithField("incident_id", incidentID)

	inc, err := h.orchestrator.ToggleResolution(c.Request.Context(), incidentID)
	if err != nil {
		log.WithError(err).Warn("Resolution toggle failed")
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"incident": ModelToIncidentResponse(*inc)})
}

// respondError раскладывает таксономию отказов по HTTP-статусам.
// Unauthorized означает, что admin-возможность к источнику отсутствует или
// истекла: вызывающего направляют на повторную авторизацию, а не на повтор.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, remote.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "upstream authorization lapsed, re-authorize"})
	case errors.Is(err, remote.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "entity not found"})
	case errors.Is(err, remote.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, remote.ErrUnsupported):
		c.JSON(http.StatusNotImplemented, gin.H{"error": "operation not supported by the upstream platform"})
	case errors.Is(err, moderation.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "action already in progress"})
	case errors.Is(err, moderation.ErrPrecondition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream request failed"})
	}
}
