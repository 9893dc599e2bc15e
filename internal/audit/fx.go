package audit

import (
	"github.com/sewtrack/sewtrack/internal/audit/repository"
	"github.com/sewtrack/sewtrack/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
