//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/robofield/internal/app"
	"github.com/zeusync/robofield/internal/config"
	"github.com/zeusync/robofield/internal/core/observability/log"
)

func InitializeApp(cfg *config.Config) (*app.App, error) {
	wire.Build(app.ProviderSet)
	return nil, nil
}

// InitializeAppWithLogger builds the app around an existing logger.
func InitializeAppWithLogger(cfg *config.Config, logger log.Log) (*app.App, error) {
	wire.Build(
		app.ProvideEventBus,
		app.ProvideWorld,
		app.ProvideRobots,
		app.ProvideSpectator,
		app.ProvideHTTPServer,
		app.ProvideOutput,
		app.ProvideRecorder,
		app.ProvideDriver,
		app.NewApp,
	)
	return nil, nil
}
