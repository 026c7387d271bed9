package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/lifecycle/internal/config"
	"github.com/zeusync/lifecycle/internal/core/lifecycle"
	"github.com/zeusync/lifecycle/internal/core/observability/log"
	"github.com/zeusync/lifecycle/internal/host"
	"github.com/zeusync/lifecycle/internal/server"
)

// Runtime is the assembled daemon.
type Runtime struct {
	Config      *config.Config
	Logger      *log.Logger
	Manager     *lifecycle.Manager
	Diagnostics *server.Diagnostics
	Loop        *host.Loop
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideManager,
	ProvideDiagnostics,
	ProvideLoop,
	wire.Struct(new(Runtime), "*"),
)

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	return log.New(cfg.LogOptions())
}

func ProvideManager(cfg *config.Config, logger *log.Logger) *lifecycle.Manager {
	return lifecycle.New(logger, lifecycle.WithFaultHistory(cfg.Lifecycle.FaultHistory))
}

// ProvideDiagnostics returns nil when the diagnostics server is disabled.
func ProvideDiagnostics(cfg *config.Config, logger *log.Logger) *server.Diagnostics {
	if !cfg.Diagnostics.Enabled {
		return nil
	}
	return server.NewDiagnostics(cfg.Diagnostics.Addr, logger)
}

// ProvideLoop builds the frame loop and, when diagnostics are on, publishes a
// manager snapshot every PublishEvery frames.
func ProvideLoop(cfg *config.Config, m *lifecycle.Manager, diag *server.Diagnostics, logger *log.Logger) *host.Loop {
	loop := host.NewLoop(m, cfg.Loop.TickRate, logger)
	loop.SetMaxFrames(cfg.Loop.MaxFrames)
	if diag != nil {
		every := cfg.Diagnostics.PublishEvery
		if every == 0 {
			every = 1
		}
		diag.Publish(m.Snapshot())
		loop.OnFrame(func(frame uint64) {
			if frame%every == 0 {
				diag.Publish(m.Snapshot())
			}
		})
	}
	return loop
}
