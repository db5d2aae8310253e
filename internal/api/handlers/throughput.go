package handlers

import (
	"net/http"

	"example.com/outcry/internal/models"
	"example.com/outcry/internal/service"

	"github.com/gin-gonic/gin"
)

// Stages

func (h *Handler) ListStages(c *gin.Context) {
	stages, err := h.svc.ListStages(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stages)
}

func (h *Handler) CreateStage(c *gin.Context) {
	var in service.StageInput
	if !h.bindJSON(c, &in) {
		return
	}
	stage, err := h.svc.CreateStage(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stage)
}

func (h *Handler) UpdateStage(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.StageInput
	if !h.bindJSON(c, &in) {
		return
	}
	stage, err := h.svc.UpdateStage(c.Request.Context(), models.StageID(id), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stage)
}

func (h *Handler) DeleteStage(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteStage(c.Request.Context(), models.StageID(id)); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Stage")
}

func (h *Handler) ListTaskStatuses(c *gin.Context) {
	statuses, err := h.svc.ListTaskStatuses(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// Tasks

// ListTasks lists a job's tasks, optionally narrowed by ?stage_id=
func (h *Handler) ListTasks(c *gin.Context) {
	jobID, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	stage, ok := h.optionalUintQuery(c, "stage_id")
	if !ok {
		return
	}
	var stageID *models.StageID
	if stage != nil {
		id := models.StageID(*stage)
		stageID = &id
	}

	tasks, err := h.svc.ListTasks(c.Request.Context(), jobID, stageID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c *gin.Context) {
	var in service.TaskInput
	if !h.bindJSON(c, &in) {
		return
	}
	task, err := h.svc.CreateTask(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.TaskUpdateInput
	if !h.bindJSON(c, &in) {
		return
	}
	task, err := h.svc.UpdateTask(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// TaskStatusRequest toggles a task's completion
type TaskStatusRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

func (h *Handler) SetTaskStatus(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var req TaskStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	task, err := h.svc.SetTaskCompletion(c.Request.Context(), id, *req.Completed)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteTask(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Task")
}
