// Package eventbridge publishes entity-change notifications to an event bus.
// Publishing is best-effort: handlers log failures and keep going, so a bus
// outage never turns into a failed user request.
package eventbridge

import (
	"context"
	"encoding/json"

	"calendar-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

const eventSource = "calendar-backend"

// Client is the subset of the EventBridge API the publisher uses
type Client interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher emits entity-change events to a named bus
type Publisher struct {
	client  Client
	busName string
	logger  *zap.Logger
}

// NewPublisher creates an EventBridge publisher
func NewPublisher(client Client, busName string, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, busName: busName, logger: logger}
}

var _ ports.EventPublisher = (*Publisher)(nil)

// Publish sends one event to the bus
func (p *Publisher) Publish(ctx context.Context, detailType string, detail interface{}) error {
	payload, err := json.Marshal(detail)
	if err != nil {
		return err
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				EventBusName: aws.String(p.busName),
				Source:       aws.String(eventSource),
				DetailType:   aws.String(detailType),
				Detail:       aws.String(string(payload)),
			},
		},
	})
	if err != nil {
		return err
	}
	if out.FailedEntryCount > 0 {
		p.logger.Warn("event bus rejected entry",
			zap.String("detail_type", detailType),
			zap.Int32("failed", out.FailedEntryCount),
		)
	}
	return nil
}

// NopPublisher discards events; used when no bus is configured
type NopPublisher struct{}

// Publish drops the event
func (NopPublisher) Publish(ctx context.Context, detailType string, detail interface{}) error {
	return nil
}

var _ ports.EventPublisher = NopPublisher{}
