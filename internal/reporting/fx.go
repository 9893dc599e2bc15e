package reporting

import (
	"github.com/sewtrack/sewtrack/internal/reporting/repository"
	"github.com/sewtrack/sewtrack/internal/reporting/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reporting.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
