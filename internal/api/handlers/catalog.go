package handlers

import (
	"net/http"

	"example.com/outcry/internal/service"

	"github.com/gin-gonic/gin"
)

// Categories

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var in service.CategoryInput
	if !h.bindJSON(c, &in) {
		return
	}
	category, err := h.svc.CreateCategory(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.CategoryInput
	if !h.bindJSON(c, &in) {
		return
	}
	category, err := h.svc.UpdateCategory(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Category")
}

func (h *Handler) ListMeasureTypes(c *gin.Context) {
	types, err := h.svc.ListMeasureTypes(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

// Products

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.svc.ListProducts(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	product, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var in service.ProductInput
	if !h.bindJSON(c, &in) {
		return
	}
	product, err := h.svc.CreateProduct(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.ProductInput
	if !h.bindJSON(c, &in) {
		return
	}
	product, err := h.svc.UpdateProduct(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Product")
}

func (h *Handler) GetProductVariables(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	variables, err := h.svc.GetProductVariables(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, variables)
}

// AssignVariableRequest optionally fixes the display order of a new assignment
type AssignVariableRequest struct {
	DisplayOrder *int `json:"display_order"`
}

// AssignVariable takes an optional body; an empty one appends the variable
func (h *Handler) AssignVariable(c *gin.Context) {
	productID, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	variableID, ok := h.uintParam(c, "variable_id")
	if !ok {
		return
	}
	var req AssignVariableRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.AssignVariable(c.Request.Context(), productID, variableID, req.DisplayOrder)
	if err != nil {
		h.writeError(c, err)
		return
	}
	status := http.StatusCreated
	if result.AlreadyAssigned {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

func (h *Handler) UnassignVariable(c *gin.Context) {
	productID, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	variableID, ok := h.uintParam(c, "variable_id")
	if !ok {
		return
	}
	if err := h.svc.UnassignVariable(c.Request.Context(), productID, variableID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Variable removed from product"})
}

// Variables and options

func (h *Handler) ListVariables(c *gin.Context) {
	variables, err := h.svc.ListVariables(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, variables)
}

func (h *Handler) CreateVariable(c *gin.Context) {
	var in service.VariableInput
	if !h.bindJSON(c, &in) {
		return
	}
	variable, err := h.svc.CreateVariable(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, variable)
}

func (h *Handler) UpdateVariable(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.VariableInput
	if !h.bindJSON(c, &in) {
		return
	}
	variable, err := h.svc.UpdateVariable(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, variable)
}

func (h *Handler) DeleteVariable(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteVariable(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Variable")
}

func (h *Handler) CreateOption(c *gin.Context) {
	var in service.OptionInput
	if !h.bindJSON(c, &in) {
		return
	}
	option, err := h.svc.CreateOption(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, option)
}

func (h *Handler) UpdateOption(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.OptionInput
	if !h.bindJSON(c, &in) {
		return
	}
	option, err := h.svc.UpdateOption(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, option)
}

func (h *Handler) DeleteOption(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteOption(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Option")
}

// OptionCostsRequest lists the options to price
type OptionCostsRequest struct {
	OptionIDs []uint `json:"option_ids"`
}

func (h *Handler) OptionCosts(c *gin.Context) {
	var req OptionCostsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	costs, err := h.svc.OptionCosts(c.Request.Context(), req.OptionIDs)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, costs)
}

func (h *Handler) EstimatePrice(c *gin.Context) {
	var in service.EstimateInput
	if !h.bindJSON(c, &in) {
		return
	}
	estimate, err := h.svc.EstimatePrice(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}
