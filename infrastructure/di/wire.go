//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"calendar-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the full provider set
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideStore,
	ProvideEventRepository,
	ProvideProjectRepository,
	ProvideTaskRepository,
	ProvidePermissionChecker,
	ProvideEventBridgeClient,
	ProvideEventPublisher,
	ProvideCloudWatchClient,
	ProvideMetrics,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // replaced by wire
}
