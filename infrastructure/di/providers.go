// Package di wires the application together. Providers construct each
// dependency; google/wire generates the assembly in wire_gen.go.
package di

import (
	"context"
	"net/http"

	"calendar-backend/application/permissions"
	"calendar-backend/application/ports"
	"calendar-backend/infrastructure/config"
	"calendar-backend/infrastructure/messaging/eventbridge"
	"calendar-backend/infrastructure/persistence/dynamodb"
	"calendar-backend/interfaces/http/rest"
	"calendar-backend/interfaces/http/rest/handlers"
	"calendar-backend/interfaces/http/rest/middleware"
	"calendar-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// Container holds the wired application
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Store       *dynamodb.Store
	EventRepo   ports.EventRepository
	ProjectRepo ports.ProjectRepository
	TaskRepo    ports.TaskRepository
	Permissions ports.PermissionChecker
	Publisher   ports.EventPublisher
	Metrics     *observability.Collector
	Router      http.Handler
}

// Close releases background resources
func (c *Container) Close() {
	if c.Metrics != nil {
		c.Metrics.Stop()
	}
	if c.Logger != nil {
		c.Logger.Sync()
	}
}

// ProvideLogger creates the process logger
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig loads the AWS SDK configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates the DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideStore creates the single-table store
func ProvideStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamodb.Store {
	return dynamodb.NewStore(client, cfg.TableName, cfg.GSI1Name, cfg.GSI2Name, logger)
}

// ProvideEventRepository creates the event repository
func ProvideEventRepository(store *dynamodb.Store, logger *zap.Logger) ports.EventRepository {
	return dynamodb.NewEventRepository(store, logger)
}

// ProvideProjectRepository creates the project repository
func ProvideProjectRepository(store *dynamodb.Store, logger *zap.Logger) ports.ProjectRepository {
	return dynamodb.NewProjectRepository(store, logger)
}

// ProvideTaskRepository creates the task repository
func ProvideTaskRepository(store *dynamodb.Store, logger *zap.Logger) ports.TaskRepository {
	return dynamodb.NewTaskRepository(store, logger)
}

// ProvidePermissionChecker creates the permission checker
func ProvidePermissionChecker(projects ports.ProjectRepository, tasks ports.TaskRepository, logger *zap.Logger) ports.PermissionChecker {
	return permissions.NewChecker(projects, tasks, logger)
}

// ProvideEventBridgeClient creates the EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideEventPublisher creates the change publisher, or a no-op when no
// bus is configured
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return eventbridge.NopPublisher{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideCloudWatchClient creates the CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideMetrics creates the request-metrics collector when enabled
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector(client, cfg.Environment, logger)
}

// ProvideRouter assembles the HTTP handler
func ProvideRouter(
	cfg *config.Config,
	events ports.EventRepository,
	projects ports.ProjectRepository,
	tasks ports.TaskRepository,
	permChecker ports.PermissionChecker,
	publisher ports.EventPublisher,
	metrics *observability.Collector,
	logger *zap.Logger,
) http.Handler {
	h := rest.Handlers{
		Events:   handlers.NewEventHandler(events, publisher, logger),
		Projects: handlers.NewProjectHandler(projects, permChecker, publisher, logger),
		Tasks:    handlers.NewTaskHandler(tasks, permChecker, publisher, logger),
	}

	opts := rest.Options{
		Auth: middleware.AuthConfig{
			Secret:             cfg.JWTSecret,
			Issuer:             cfg.JWTIssuer,
			TrustGatewayHeader: config.IsLambda(),
		},
		EnableCORS: cfg.EnableCORS,
	}
	if metrics != nil {
		opts.Metrics = metrics.Middleware
	}

	return rest.NewRouter(h, opts, logger)
}
