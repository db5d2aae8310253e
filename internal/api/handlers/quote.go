package handlers

import (
	"net/http"

	"example.com/outcry/internal/service"

	"github.com/gin-gonic/gin"
)

// Quotes

func (h *Handler) ListQuotes(c *gin.Context) {
	jobID, ok := h.optionalUintQuery(c, "job_id")
	if !ok {
		return
	}
	quotes, err := h.svc.ListQuotes(c.Request.Context(), jobID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quotes)
}

func (h *Handler) GetQuote(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	quote, err := h.svc.GetQuote(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *Handler) CreateQuote(c *gin.Context) {
	var in service.QuoteInput
	if !h.bindJSON(c, &in) {
		return
	}
	quote, err := h.svc.CreateQuote(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quote)
}

func (h *Handler) UpdateQuote(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.QuoteCostInput
	if !h.bindJSON(c, &in) {
		return
	}
	quote, err := h.svc.UpdateQuote(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *Handler) DeleteQuote(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteQuote(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Quote")
}

func (h *Handler) RecalculateQuote(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	quote, err := h.svc.RecalculateQuote(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// Items

func (h *Handler) ListItems(c *gin.Context) {
	quoteID, ok := h.optionalUintQuery(c, "quote_id")
	if !ok {
		return
	}
	items, err := h.svc.ListItems(c.Request.Context(), quoteID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetItem(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.GetItem(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) CreateItem(c *gin.Context) {
	var in service.ItemInput
	if !h.bindJSON(c, &in) {
		return
	}
	item, err := h.svc.CreateItem(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) DeleteItem(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Item")
}

func (h *Handler) ListItemVariables(c *gin.Context) {
	itemID, ok := h.optionalUintQuery(c, "item_id")
	if !ok {
		return
	}
	variables, err := h.svc.ListItemVariables(c.Request.Context(), itemID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, variables)
}

func (h *Handler) CreateItemVariable(c *gin.Context) {
	var in service.ItemVariableInput
	if !h.bindJSON(c, &in) {
		return
	}
	variable, err := h.svc.CreateItemVariable(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, variable)
}
