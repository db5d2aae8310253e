package handlers

import (
	"net/http"

	"example.com/outcry/internal/service"

	"github.com/gin-gonic/gin"
)

// Clients

func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.svc.ListClients(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *Handler) GetClient(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	client, err := h.svc.GetClient(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) CreateClient(c *gin.Context) {
	var in service.ClientInput
	if !h.bindJSON(c, &in) {
		return
	}
	client, err := h.svc.CreateClient(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.ClientUpdateInput
	if !h.bindJSON(c, &in) {
		return
	}
	client, err := h.svc.UpdateClient(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) DeleteClient(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteClient(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Client")
}

func (h *Handler) ListContacts(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	contacts, err := h.svc.ListContacts(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

func (h *Handler) ListBilling(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	billing, err := h.svc.ListBilling(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, billing)
}

// Contacts

func (h *Handler) CreateContact(c *gin.Context) {
	var in service.ContactInput
	if !h.bindJSON(c, &in) {
		return
	}
	contact, err := h.svc.CreateContact(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (h *Handler) UpdateContact(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.ContactUpdateInput
	if !h.bindJSON(c, &in) {
		return
	}
	contact, err := h.svc.UpdateContact(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *Handler) DeleteContact(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteContact(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Contact")
}

// Billing entities

func (h *Handler) CreateBilling(c *gin.Context) {
	var in service.BillingInput
	if !h.bindJSON(c, &in) {
		return
	}
	billing, err := h.svc.CreateBilling(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, billing)
}

func (h *Handler) UpdateBilling(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.BillingUpdateInput
	if !h.bindJSON(c, &in) {
		return
	}
	billing, err := h.svc.UpdateBilling(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, billing)
}

func (h *Handler) DeleteBilling(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteBilling(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Billing entity")
}

// Staff

func (h *Handler) ListStaff(c *gin.Context) {
	staff, err := h.svc.ListStaff(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (h *Handler) GetStaff(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	staff, err := h.svc.GetStaff(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var in service.StaffInput
	if !h.bindJSON(c, &in) {
		return
	}
	staff, err := h.svc.CreateStaff(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, staff)
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.StaffInput
	if !h.bindJSON(c, &in) {
		return
	}
	staff, err := h.svc.UpdateStaff(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteStaff(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Staff member")
}
