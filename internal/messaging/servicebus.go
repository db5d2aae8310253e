package messaging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"example.com/outcry/config"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ServiceBusClient is an interface for Azure Service Bus operations
type ServiceBusClient interface {
	SendMessage(ctx context.Context, body interface{}, sessionID string) error
	Close() error
}

// serviceBusClient implements the ServiceBusClient interface
type serviceBusClient struct {
	client    *azservicebus.Client
	sender    *azservicebus.Sender
	queueName string
	source    string
}

// logClient stands in for Service Bus when no connection string is configured
type logClient struct {
	source string
	logger zerolog.Logger
}

// NewServiceBusClient creates a new Azure Service Bus client. Without a
// connection string the returned client only logs what it would have sent.
func NewServiceBusClient(cfg config.ServiceBusConfig, source string, logger zerolog.Logger) (ServiceBusClient, error) {
	if cfg.ConnectionString == "" {
		return &logClient{source: source, logger: logger}, nil
	}

	client, err := azservicebus.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Service Bus client")
	}

	sender, err := client.NewSender(cfg.QueueName, nil)
	if err != nil {
		_ = client.Close(context.Background())
		return nil, errors.Wrap(err, "failed to create Service Bus sender")
	}

	return &serviceBusClient{
		client:    client,
		sender:    sender,
		queueName: cfg.QueueName,
		source:    source,
	}, nil
}

// generateSessionID generates a random session ID if none is provided
func generateSessionID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// SendMessage sends a message to the Service Bus queue
func (s *serviceBusClient) SendMessage(ctx context.Context, body interface{}, sessionID string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message body")
	}

	if sessionID == "" {
		sessionID = generateSessionID()
	}

	msg := &azservicebus.Message{
		Body:        data,
		ContentType: stringPtr("application/json"),
		ApplicationProperties: map[string]interface{}{
			"source": s.source,
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
		SessionID: &sessionID,
	}
	if event, ok := body.(Event); ok {
		msg.Subject = stringPtr(event.Type)
	}

	return errors.Wrapf(s.sender.SendMessage(ctx, msg, nil), "failed to send message to %s", s.queueName)
}

// Close closes the Service Bus client
func (s *serviceBusClient) Close() error {
	if s.sender != nil {
		if err := s.sender.Close(context.Background()); err != nil {
			return err
		}
	}
	if s.client != nil {
		return s.client.Close(context.Background())
	}
	return nil
}

func (m *logClient) SendMessage(ctx context.Context, body interface{}, sessionID string) error {
	m.logger.Info().
		Str("source", m.source).
		Str("session_id", sessionID).
		Interface("body", body).
		Msg("service bus disabled, message not sent")
	return nil
}

func (m *logClient) Close() error {
	return nil
}

func stringPtr(s string) *string {
	return &s
}
