package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"example.com/outcry/config"
	"example.com/outcry/internal/metrics"
	"example.com/outcry/internal/models"
	"example.com/outcry/internal/repository"
	"example.com/outcry/internal/service"
	"example.com/outcry/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	svc, err := service.NewService(service.ServiceConfig{
		Repository: repository.NewRepository(testutil.NewDB(t)),
		Metrics:    metrics.NewCollector(),
		App:        config.AppConfig{Name: "outcry-test", Version: "test"},
		Upload:     config.UploadConfig{MaxSize: 1 << 20, AllowedExtensions: []string{"pdf"}},
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)

	router := gin.New()
	NewHandler(svc, metrics.NewCollector(), zerolog.Nop()).RegisterRoutes(router)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &value), rec.Body.String())
	return value
}

// create posts body and returns the id field of the created entity
func create(t *testing.T, router *gin.Engine, path string, body interface{}, idField string) uint {
	t.Helper()
	rec := do(t, router, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	fields := decode[map[string]interface{}](t, rec)
	id, ok := fields[idField].(float64)
	require.True(t, ok, "missing %s in %s", idField, rec.Body.String())
	return uint(id)
}

type seeded struct {
	clientID, projectID, contactID, staffID, jobID uint
}

func seedJob(t *testing.T, router *gin.Engine) seeded {
	t.Helper()
	var s seeded
	s.clientID = create(t, router, "/api/clients", gin.H{"name": "Acme Signs"}, "client_id")
	s.projectID = create(t, router, "/api/projects", gin.H{"name": "Shopfront"}, "project_id")
	s.contactID = create(t, router, "/api/contacts", gin.H{"first_name": "Jo", "client_id": s.clientID}, "contact_id")
	s.staffID = create(t, router, "/api/staff", gin.H{"first_name": "Sam", "surname": "Lee"}, "staff_id")
	s.jobID = create(t, router, "/api/jobs", gin.H{
		"reference":  "Window decals",
		"project_id": s.projectID,
		"client_id":  s.clientID,
		"contact_id": s.contactID,
		"staff_id":   s.staffID,
	}, "job_id")
	return s
}

func TestJobListingShowsItemProductName(t *testing.T) {
	router := newTestRouter(t)
	s := seedJob(t, router)

	categoryID := create(t, router, "/api/categories", gin.H{"name": "Signage"}, "product_category_id")
	productID := create(t, router, "/api/products", gin.H{"name": "Banner", "product_category_id": categoryID}, "product_id")
	quoteID := create(t, router, "/api/quotes", gin.H{"job_id": s.jobID}, "quote_id")
	create(t, router, "/api/items", gin.H{"quote_id": quoteID, "product_id": productID, "quantity": 2, "cost_excl_gst": 120}, "item_id")

	rec := do(t, router, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	jobs := decode[[]models.JobDetail](t, rec)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Acme Signs", jobs[0].ClientName)
	assert.Equal(t, "Quote", jobs[0].JobStatus)
	require.Len(t, jobs[0].StatusHistory, 1)
	require.Len(t, jobs[0].Quotes, 1)
	assert.Equal(t, fmt.Sprintf("%d-001", s.jobID), jobs[0].Quotes[0].QuoteNumber)
	require.Len(t, jobs[0].Quotes[0].Items, 1)
	assert.Equal(t, "Banner", jobs[0].Quotes[0].Items[0].ProductName)

	rec = do(t, router, http.MethodPost, fmt.Sprintf("/api/quotes/%d/recalculate", quoteID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	quote := decode[models.Quote](t, rec)
	require.NotNil(t, quote.CostInclGST)
	assert.InDelta(t, 132.0, *quote.CostInclGST, 0.001)
}

func TestApproveQuoteOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	s := seedJob(t, router)
	quoteID := create(t, router, "/api/quotes", gin.H{"job_id": s.jobID}, "quote_id")

	rec := do(t, router, http.MethodPut, fmt.Sprintf("/api/jobs/%d/approve-quote", s.jobID), gin.H{"approved_quote": quoteID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	job := decode[models.JobDetail](t, rec)
	require.NotNil(t, job.ApprovedQuote)
	assert.Equal(t, quoteID, *job.ApprovedQuote)
	assert.Equal(t, models.JobStatusWorkOrder, job.JobStatusID)
	require.NotNil(t, job.StageID)
	assert.Equal(t, models.StagePreProduction, *job.StageID)

	rec = do(t, router, http.MethodGet, fmt.Sprintf("/api/jobs/%d/history", s.jobID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.StatusHistoryEntry](t, rec), 2)

	rec = do(t, router, http.MethodPut, fmt.Sprintf("/api/jobs/%d/approve-quote", s.jobID), gin.H{"approved_quote": 999})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// a body without the field is rejected and the approval stays
	rec = do(t, router, http.MethodPut, fmt.Sprintf("/api/jobs/%d/approve-quote", s.jobID), gin.H{"quote_id": quoteID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[ErrorResponse](t, rec).Code)

	rec = do(t, router, http.MethodGet, fmt.Sprintf("/api/jobs/%d", s.jobID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	job = decode[models.JobDetail](t, rec)
	require.NotNil(t, job.ApprovedQuote)
	assert.Equal(t, quoteID, *job.ApprovedQuote)

	// an explicit null clears it
	rec = do(t, router, http.MethodPut, fmt.Sprintf("/api/jobs/%d/approve-quote", s.jobID), gin.H{"approved_quote": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decode[models.JobDetail](t, rec).ApprovedQuote)
}

func TestUpdateJobOverHTTPKeepsFieldsNotSent(t *testing.T) {
	router := newTestRouter(t)
	s := seedJob(t, router)

	rec := do(t, router, http.MethodPut, fmt.Sprintf("/api/jobs/%d/address", s.jobID), gin.H{
		"job_address": "1 George St", "suburb": "Sydney", "postcode": "2000",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPut, fmt.Sprintf("/api/jobs/%d", s.jobID), gin.H{
		"reference":     "Window decals v2",
		"client_id":     s.clientID,
		"project_id":    s.projectID,
		"contact_id":    s.contactID,
		"staff_id":      s.staffID,
		"job_status_id": 1,
		"date_created":  "2024-04-01",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	job := decode[models.JobDetail](t, rec)
	assert.Equal(t, "Window decals v2", job.Reference)
	assert.Equal(t, "1 George St", job.JobAddress)
	assert.Equal(t, "Sydney", job.Suburb)
	assert.Equal(t, "2000", job.Postcode)
}

func TestErrorStatuses(t *testing.T) {
	router := newTestRouter(t)
	s := seedJob(t, router)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{name: "missing job", method: http.MethodGet, path: "/api/jobs/999", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "bad id", method: http.MethodGet, path: "/api/jobs/abc", status: http.StatusBadRequest, code: "INVALID_REQUEST"},
		{name: "malformed body", method: http.MethodPost, path: "/api/categories", body: "nope", status: http.StatusBadRequest, code: "INVALID_REQUEST"},
		{name: "failed validation", method: http.MethodPost, path: "/api/categories", body: gin.H{}, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "bad postcode", method: http.MethodPost, path: "/api/clients", body: gin.H{"name": "X", "postcode": "12"}, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "staff with jobs", method: http.MethodDelete, path: fmt.Sprintf("/api/staff/%d", s.staffID), status: http.StatusConflict, code: "CONFLICT"},
		{name: "search disabled", method: http.MethodGet, path: "/api/search/jobs?q=decals", status: http.StatusServiceUnavailable, code: "SERVICE_UNAVAILABLE"},
		{name: "bad filter", method: http.MethodGet, path: "/api/quotes?job_id=x", status: http.StatusBadRequest, code: "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}

	rec := do(t, router, http.MethodDelete, fmt.Sprintf("/api/staff/%d", s.staffID), nil)
	assert.Equal(t, "Cannot delete staff member. They have 1 assigned job(s).", decode[ErrorResponse](t, rec).Error)
}

func TestWriteErrorMapsRepositoryErrors(t *testing.T) {
	h := NewHandler(nil, metrics.NewCollector(), zerolog.Nop())

	tests := []struct {
		err     error
		status  int
		message string
	}{
		{err: errors.Wrap(repository.ErrDuplicateKey, "insert"), status: http.StatusConflict},
		{err: errors.Wrap(repository.ErrForeignKey, "insert"), status: http.StatusConflict},
		{err: service.ErrStorageNotConfigured, status: http.StatusServiceUnavailable},
		{err: errors.New("connection reset"), status: http.StatusInternalServerError, message: "Internal server error"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		h.writeError(c, tt.err)
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		if tt.message != "" {
			assert.Equal(t, tt.message, decode[ErrorResponse](t, rec).Error)
		}
	}
}

func TestTaskToggleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	s := seedJob(t, router)
	taskID := create(t, router, "/api/tasks", gin.H{"task_name": "Print", "job_id": s.jobID, "stage_id": 2}, "task_id")

	rec := do(t, router, http.MethodPut, fmt.Sprintf("/api/tasks/%d/status", taskID), gin.H{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	task := decode[models.TaskDetail](t, rec)
	assert.Equal(t, models.TaskStatusComplete, task.StatusID)
	assert.NotNil(t, task.TimeCompleted)

	rec = do(t, router, http.MethodPut, fmt.Sprintf("/api/tasks/%d/status", taskID), gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, fmt.Sprintf("/api/jobs/%d/tasks?stage_id=2", s.jobID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[[]models.TaskDetail](t, rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Completed", tasks[0].StatusLabel)
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for name, content := range files {
		part, err := writer.CreateFormFile(attachmentsField, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCreateBookingMultipart(t *testing.T) {
	router := newTestRouter(t)
	s := seedJob(t, router)

	payload, err := json.Marshal(gin.H{
		"pickup_address": "12 Smith St, Newtown",
		"pickup_date":    "2024-07-01",
		"dropoff_date":   "2024-07-02",
		"creator_id":     s.staffID,
	})
	require.NoError(t, err)
	body, contentType := multipartBody(t, map[string]string{payloadField: string(payload)}, map[string]string{"plan.pdf": "%PDF"})

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	booking := decode[models.Booking](t, rec)
	require.NotNil(t, booking.PickupAddress)
	assert.Equal(t, "Newtown", booking.PickupAddress.Suburb)
	assert.Empty(t, booking.Attachments)

	// explicit uploads need a configured store
	body, contentType = multipartBody(t, map[string]string{"booking_id": fmt.Sprint(booking.BookingID)}, map[string]string{"plan.pdf": "%PDF"})
	req = httptest.NewRequest(http.MethodPost, "/api/upload-attachments", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())

	body, contentType = multipartBody(t, map[string]string{"booking_id": fmt.Sprint(booking.BookingID)}, nil)
	req = httptest.NewRequest(http.MethodPost, "/api/upload-attachments", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPut, fmt.Sprintf("/api/bookings/%d", booking.BookingID), gin.H{"pickup_complete": true, "completion": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Booking](t, rec)
	assert.True(t, updated.Completion)
	assert.NotNil(t, updated.PickupComplete)
}

func TestHealthAndInfo(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[service.Info](t, rec)
	assert.Equal(t, "outcry-test", info.Name)
	assert.False(t, info.Integrations["storage"])

	rec = do(t, router, http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[map[string]interface{}](t, rec), "runtime")
}
