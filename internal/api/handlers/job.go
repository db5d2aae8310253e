package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"example.com/outcry/internal/models"
	"example.com/outcry/internal/service"

	"github.com/gin-gonic/gin"
)

const defaultSearchLimit = 20

// Projects

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) ListClientProjects(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	projects, err := h.svc.ListClientProjects(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) GetProject(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	project, err := h.svc.GetProject(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) CreateProject(c *gin.Context) {
	var in service.ProjectInput
	if !h.bindJSON(c, &in) {
		return
	}
	project, err := h.svc.CreateProject(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *Handler) UpdateProject(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.ProjectInput
	if !h.bindJSON(c, &in) {
		return
	}
	project, err := h.svc.UpdateProject(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProject(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Project")
}

func (h *Handler) ListJobStatuses(c *gin.Context) {
	statuses, err := h.svc.ListJobStatuses(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// Jobs

func (h *Handler) ListJobs(c *gin.Context) {
	jobs, err := h.svc.ListJobs(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) GetJob(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	job, err := h.svc.GetJob(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// CreateJob accepts JSON or a multipart form carrying attachments
func (h *Handler) CreateJob(c *gin.Context) {
	var in service.JobInput
	files, ok := h.bindWithFiles(c, &in)
	if !ok {
		return
	}
	job, err := h.svc.CreateJob(c.Request.Context(), in, files)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) UpdateJob(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.JobUpdateInput
	if !h.bindJSON(c, &in) {
		return
	}
	job, err := h.svc.UpdateJob(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) DeleteJob(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteJob(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Job")
}

// JobStatusRequest moves a job to another status
type JobStatusRequest struct {
	JobStatusID models.JobStatusID `json:"job_status_id" binding:"required"`
}

func (h *Handler) UpdateJobStatus(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var req JobStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	job, err := h.svc.UpdateJobStatus(c.Request.Context(), id, req.JobStatusID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) UpdateJobAddress(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.JobAddressInput
	if !h.bindJSON(c, &in) {
		return
	}
	job, err := h.svc.UpdateJobAddress(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// JobBillingRequest sets or clears the billing entity of a job
type JobBillingRequest struct {
	BillingEntity *uint `json:"billing_entity"`
}

func (h *Handler) UpdateJobBilling(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var req JobBillingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	job, err := h.svc.UpdateJobBilling(c.Request.Context(), id, req.BillingEntity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ApproveQuoteRequest approves a quote, or clears the approval when null.
// The field must be sent; an empty body is rejected rather than read as a clear.
type ApproveQuoteRequest struct {
	ApprovedQuote NullableID `json:"approved_quote"`
}

// NullableID is an id field that tells an absent key apart from an explicit null
type NullableID struct {
	Set bool
	ID  *uint
}

func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	n.ID = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var id uint
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	n.ID = &id
	return nil
}

func (h *Handler) ApproveQuote(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var req ApproveQuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if !req.ApprovedQuote.Set {
		h.writeError(c, &service.Error{
			Kind:    service.ErrValidation,
			Message: "approved_quote is required; send null to clear the approval",
		})
		return
	}
	job, err := h.svc.ApproveQuote(c.Request.Context(), id, req.ApprovedQuote.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// JobStageRequest sets or clears the current stage of a job
type JobStageRequest struct {
	StageID *models.StageID `json:"stage_id"`
}

func (h *Handler) SetJobStage(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var req JobStageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	job, err := h.svc.SetJobStage(c.Request.Context(), id, req.StageID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) SetStageDueDate(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.StageDueDateInput
	if !h.bindJSON(c, &in) {
		return
	}
	stageDate, err := h.svc.SetStageDueDate(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stageDate)
}

func (h *Handler) ListStatusHistory(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	history, err := h.svc.ListStatusHistory(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handler) ListStageDates(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	dates, err := h.svc.ListStageDates(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dates)
}

// SearchJobs runs a full text query against the job index
func (h *Handler) SearchJobs(c *gin.Context) {
	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.badRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}
	docs, err := h.svc.SearchJobs(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}
