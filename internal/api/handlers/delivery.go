package handlers

import (
	"net/http"
	"strconv"

	"example.com/outcry/internal/repository"
	"example.com/outcry/internal/service"
	"example.com/outcry/internal/storage"

	"github.com/gin-gonic/gin"
)

// Addresses

func (h *Handler) ListAddresses(c *gin.Context) {
	addresses, err := h.svc.ListAddresses(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

func (h *Handler) GetAddress(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	address, err := h.svc.GetAddress(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

func (h *Handler) CreateAddress(c *gin.Context) {
	var in service.AddressInput
	if !h.bindJSON(c, &in) {
		return
	}
	address, err := h.svc.CreateAddress(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

// Bookings

func (h *Handler) ListBookings(c *gin.Context) {
	bookings, err := h.svc.ListBookings(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	booking, err := h.svc.GetBooking(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CreateBooking accepts JSON or a multipart form carrying attachments
func (h *Handler) CreateBooking(c *gin.Context) {
	var in service.BookingInput
	files, ok := h.bindWithFiles(c, &in)
	if !ok {
		return
	}
	booking, err := h.svc.CreateBooking(c.Request.Context(), in, files)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var in service.BookingUpdateInput
	if !h.bindJSON(c, &in) {
		return
	}
	booking, err := h.svc.UpdateBooking(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteBooking(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Booking")
}

// Attachments

// UploadBookingAttachments stores files against the form's booking_id
func (h *Handler) UploadBookingAttachments(c *gin.Context) {
	bookingID, ok := h.formUint(c, "booking_id", true)
	if !ok {
		return
	}
	h.upload(c, service.AttachmentTarget{BookingID: bookingID})
}

// UploadJobAttachments stores files against the job in the path
func (h *Handler) UploadJobAttachments(c *gin.Context) {
	jobID, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	h.upload(c, service.AttachmentTarget{JobID: &jobID})
}

func (h *Handler) upload(c *gin.Context, target service.AttachmentTarget) {
	uploadedBy, ok := h.formUint(c, "uploaded_by", false)
	if !ok {
		return
	}
	files, ok := h.formFiles(c)
	if !ok {
		return
	}

	attachments, err := h.svc.UploadAttachments(c.Request.Context(), target, uploadedBy, files)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     strconv.Itoa(len(attachments)) + " file(s) uploaded",
		"attachments": attachments,
	})
}

// formUint reads a positive integer form field
func (h *Handler) formUint(c *gin.Context, name string, required bool) (*uint, bool) {
	raw := c.PostForm(name)
	if raw == "" {
		if required {
			h.badRequest(c, name+" is required")
			return nil, false
		}
		return nil, true
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		h.badRequest(c, "invalid "+name)
		return nil, false
	}
	id := uint(value)
	return &id, true
}

// formFiles collects uploads from the files and attachments fields
func (h *Handler) formFiles(c *gin.Context) ([]storage.File, bool) {
	if !isMultipart(c) {
		h.badRequest(c, "expected multipart/form-data")
		return nil, false
	}
	form, err := c.MultipartForm()
	if err != nil {
		h.badRequest(c, "invalid multipart form: "+err.Error())
		return nil, false
	}

	headers := append(form.File[filesField], form.File[attachmentsField]...)
	files, err := readFiles(headers)
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return files, true
}

// ListAttachments filters by ?booking_id= or ?job_id=
func (h *Handler) ListAttachments(c *gin.Context) {
	bookingID, ok := h.optionalUintQuery(c, "booking_id")
	if !ok {
		return
	}
	jobID, ok := h.optionalUintQuery(c, "job_id")
	if !ok {
		return
	}
	attachments, err := h.svc.ListAttachments(c.Request.Context(), repository.AttachmentFilter{BookingID: bookingID, JobID: jobID})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, attachments)
}

func (h *Handler) GetAttachment(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	attachment, err := h.svc.GetAttachment(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, attachment)
}

func (h *Handler) DeleteAttachment(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteAttachment(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	deleted(c, "Attachment")
}
