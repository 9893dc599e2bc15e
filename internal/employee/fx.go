package employee

import (
	"github.com/sewtrack/sewtrack/internal/employee/repository"
	"github.com/sewtrack/sewtrack/internal/employee/service"
	"go.uber.org/fx"
)

var Module = fx.Module("employee.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
