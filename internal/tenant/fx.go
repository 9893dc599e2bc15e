package tenant

import (
	"github.com/sewtrack/sewtrack/internal/tenant/repository"
	"github.com/sewtrack/sewtrack/internal/tenant/service"
	"github.com/sewtrack/sewtrack/internal/tenant/session"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.Provide),
	fx.Provide(session.NewStore),
	fx.Provide(service.New),
)
