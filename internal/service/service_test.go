package service

import (
	"context"
	"testing"

	"example.com/outcry/config"
	"example.com/outcry/internal/messaging"
	"example.com/outcry/internal/metrics"
	"example.com/outcry/internal/models"
	"example.com/outcry/internal/repository"
	"example.com/outcry/internal/storage"
	"example.com/outcry/internal/testutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockServiceBusClient records published events
type MockServiceBusClient struct {
	mock.Mock
}

func (m *MockServiceBusClient) SendMessage(ctx context.Context, body interface{}, sessionID string) error {
	args := m.Called(ctx, body, sessionID)
	return args.Error(0)
}

func (m *MockServiceBusClient) Close() error {
	return m.Called().Error(0)
}

// MockObjectStore stands in for S3
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockObjectStore) Upload(ctx context.Context, ns storage.Namespace, files []storage.File) ([]storage.StoredObject, error) {
	args := m.Called(ctx, ns, files)
	objects, _ := args.Get(0).([]storage.StoredObject)
	return objects, args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, storagePath string) error {
	return m.Called(ctx, storagePath).Error(0)
}

// MockSearcher stands in for Elasticsearch
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockSearcher) IndexJob(ctx context.Context, doc models.JobDocument) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockSearcher) DeleteJob(ctx context.Context, jobID uint) error {
	return m.Called(ctx, jobID).Error(0)
}

func (m *MockSearcher) SearchJobs(ctx context.Context, text string, limit int) ([]models.JobDocument, error) {
	args := m.Called(ctx, text, limit)
	docs, _ := args.Get(0).([]models.JobDocument)
	return docs, args.Error(1)
}

type testEnv struct {
	svc     *service
	repo    repository.Repository
	bus     *MockServiceBusClient
	metrics *metrics.Collector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := repository.NewRepository(testutil.NewDB(t))
	bus := new(MockServiceBusClient)
	bus.On("SendMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	collector := metrics.NewCollector()

	svc, err := NewService(ServiceConfig{
		Repository: repo,
		Messaging:  bus,
		Metrics:    collector,
		App:        config.AppConfig{Name: "outcry-test", Version: "test"},
		Upload: config.UploadConfig{
			MaxSize:           1024,
			AllowedExtensions: []string{"pdf", "jpg"},
		},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	return &testEnv{svc: svc.(*service), repo: repo, bus: bus, metrics: collector}
}

// published returns the events sent so far, in order
func (e *testEnv) published() []messaging.Event {
	var events []messaging.Event
	for _, call := range e.bus.Calls {
		if call.Method != "SendMessage" {
			continue
		}
		if event, ok := call.Arguments.Get(1).(messaging.Event); ok {
			events = append(events, event)
		}
	}
	return events
}

func (e *testEnv) publishedTypes() []string {
	var types []string
	for _, event := range e.published() {
		types = append(types, event.Type)
	}
	return types
}

type fixture struct {
	client  *models.Client
	project *models.Project
	contact *models.Contact
	staff   *models.Staff
}

func seedParties(t *testing.T, env *testEnv) fixture {
	t.Helper()
	ctx := context.Background()

	client, err := env.svc.CreateClient(ctx, ClientInput{Name: "Acme Signs", Postcode: "2000"})
	require.NoError(t, err)
	project, err := env.svc.CreateProject(ctx, ProjectInput{Name: "Shopfront"})
	require.NoError(t, err)
	contact, err := env.svc.CreateContact(ctx, ContactInput{FirstName: "Jo", Surname: "Bloggs", ClientID: client.ClientID})
	require.NoError(t, err)
	staff, err := env.svc.CreateStaff(ctx, StaffInput{FirstName: "Sam", Surname: "Lee", Email: "sam@example.com"})
	require.NoError(t, err)

	return fixture{client: client, project: project, contact: contact, staff: staff}
}

func (f fixture) jobInput() JobInput {
	return JobInput{
		Reference: "Window decals",
		ProjectID: f.project.ProjectID,
		ClientID:  f.client.ClientID,
		ContactID: f.contact.ContactID,
		StaffID:   f.staff.StaffID,
	}
}

func createJob(t *testing.T, env *testEnv, f fixture) *models.JobDetail {
	t.Helper()
	job, err := env.svc.CreateJob(context.Background(), f.jobInput(), nil)
	require.NoError(t, err)
	return job
}

func createProduct(t *testing.T, env *testEnv, name string, measureType *uint) *models.ProductDetail {
	t.Helper()
	ctx := context.Background()
	category, err := env.svc.CreateCategory(ctx, CategoryInput{Name: name + " category"})
	require.NoError(t, err)
	product, err := env.svc.CreateProduct(ctx, ProductInput{
		Name:              name,
		ProductCategoryID: category.ProductCategoryID,
		MeasureTypeID:     measureType,
	})
	require.NoError(t, err)
	return product
}

func uintPtr(v uint) *uint { return &v }

func stringPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func mustDate(t *testing.T, s string) *models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(ServiceConfig{})
	require.Error(t, err)
}

func TestInfoReportsIntegrations(t *testing.T) {
	env := newTestEnv(t)

	info := env.svc.Info(context.Background())
	assert.Equal(t, "outcry-test", info.Name)
	assert.Equal(t, map[string]bool{"cache": false, "search": false, "storage": false}, info.Integrations)
	require.NoError(t, env.svc.Ping(context.Background()))
}
