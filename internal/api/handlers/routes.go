package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the health check and every /api route
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	api := router.Group("/api")
	api.GET("/info", h.Info)
	api.GET("/metrics", h.Metrics)

	// Catalog
	api.GET("/categories", h.ListCategories)
	api.POST("/categories", h.CreateCategory)
	api.PUT("/categories/:id", h.UpdateCategory)
	api.DELETE("/categories/:id", h.DeleteCategory)
	api.GET("/measure-types", h.ListMeasureTypes)

	api.GET("/products", h.ListProducts)
	api.POST("/products", h.CreateProduct)
	api.GET("/products/:id", h.GetProduct)
	api.PUT("/products/:id", h.UpdateProduct)
	api.DELETE("/products/:id", h.DeleteProduct)
	api.GET("/products/:id/variables", h.GetProductVariables)
	api.POST("/products/:id/variables/:variable_id", h.AssignVariable)
	api.DELETE("/products/:id/variables/:variable_id", h.UnassignVariable)

	api.GET("/variables", h.ListVariables)
	api.POST("/variables", h.CreateVariable)
	api.PUT("/variables/:id", h.UpdateVariable)
	api.DELETE("/variables/:id", h.DeleteVariable)

	api.POST("/options", h.CreateOption)
	api.PUT("/options/:id", h.UpdateOption)
	api.DELETE("/options/:id", h.DeleteOption)
	api.POST("/variable-options/costs", h.OptionCosts)
	api.POST("/pricing/estimate", h.EstimatePrice)

	// Parties
	api.GET("/clients", h.ListClients)
	api.POST("/clients", h.CreateClient)
	api.GET("/clients/:id", h.GetClient)
	api.PUT("/clients/:id", h.UpdateClient)
	api.DELETE("/clients/:id", h.DeleteClient)
	api.GET("/clients/:id/contacts", h.ListContacts)
	api.GET("/clients/:id/billing-entities", h.ListBilling)
	api.GET("/clients/:id/projects", h.ListClientProjects)

	api.POST("/contacts", h.CreateContact)
	api.PUT("/contacts/:id", h.UpdateContact)
	api.DELETE("/contacts/:id", h.DeleteContact)

	api.POST("/billing", h.CreateBilling)
	api.PUT("/billing/:id", h.UpdateBilling)
	api.DELETE("/billing/:id", h.DeleteBilling)

	api.GET("/staff", h.ListStaff)
	api.POST("/staff", h.CreateStaff)
	api.GET("/staff/:id", h.GetStaff)
	api.PUT("/staff/:id", h.UpdateStaff)
	api.DELETE("/staff/:id", h.DeleteStaff)

	// Projects and jobs
	api.GET("/projects", h.ListProjects)
	api.POST("/projects", h.CreateProject)
	api.GET("/projects/:id", h.GetProject)
	api.PUT("/projects/:id", h.UpdateProject)
	api.DELETE("/projects/:id", h.DeleteProject)
	api.GET("/job-statuses", h.ListJobStatuses)

	api.GET("/jobs", h.ListJobs)
	api.POST("/jobs", h.CreateJob)
	api.GET("/jobs/:id", h.GetJob)
	api.PUT("/jobs/:id", h.UpdateJob)
	api.DELETE("/jobs/:id", h.DeleteJob)
	api.PUT("/jobs/:id/status", h.UpdateJobStatus)
	api.PUT("/jobs/:id/address", h.UpdateJobAddress)
	api.PUT("/jobs/:id/billing", h.UpdateJobBilling)
	api.PUT("/jobs/:id/approve-quote", h.ApproveQuote)
	api.PUT("/jobs/:id/stage", h.SetJobStage)
	api.PUT("/jobs/:id/stage-due-date", h.SetStageDueDate)
	api.GET("/jobs/:id/history", h.ListStatusHistory)
	api.GET("/jobs/:id/tasks", h.ListTasks)
	api.GET("/jobs/:id/stage-dates", h.ListStageDates)
	api.POST("/jobs/:id/attachments", h.UploadJobAttachments)
	api.GET("/search/jobs", h.SearchJobs)

	// Quotes and items
	api.GET("/quotes", h.ListQuotes)
	api.POST("/quotes", h.CreateQuote)
	api.GET("/quotes/:id", h.GetQuote)
	api.PUT("/quotes/:id", h.UpdateQuote)
	api.DELETE("/quotes/:id", h.DeleteQuote)
	api.POST("/quotes/:id/recalculate", h.RecalculateQuote)

	api.GET("/items", h.ListItems)
	api.POST("/items", h.CreateItem)
	api.GET("/items/:id", h.GetItem)
	api.DELETE("/items/:id", h.DeleteItem)
	api.GET("/item-variables", h.ListItemVariables)
	api.POST("/item-variables", h.CreateItemVariable)

	// Throughput
	api.GET("/stages", h.ListStages)
	api.POST("/stages", h.CreateStage)
	api.PUT("/stages/:id", h.UpdateStage)
	api.DELETE("/stages/:id", h.DeleteStage)
	api.GET("/task-statuses", h.ListTaskStatuses)

	api.POST("/tasks", h.CreateTask)
	api.PUT("/tasks/:id", h.UpdateTask)
	api.DELETE("/tasks/:id", h.DeleteTask)
	api.PUT("/tasks/:id/status", h.SetTaskStatus)

	// Delivery
	api.GET("/addresses", h.ListAddresses)
	api.POST("/addresses", h.CreateAddress)
	api.GET("/addresses/:id", h.GetAddress)

	api.GET("/bookings", h.ListBookings)
	api.POST("/bookings", h.CreateBooking)
	api.GET("/bookings/:id", h.GetBooking)
	api.PUT("/bookings/:id", h.UpdateBooking)
	api.DELETE("/bookings/:id", h.DeleteBooking)

	api.POST("/upload-attachments", h.UploadBookingAttachments)
	api.GET("/attachments", h.ListAttachments)
	api.GET("/attachments/:id", h.GetAttachment)
	api.DELETE("/attachments/:id", h.DeleteAttachment)
}
