package task

import (
	"github.com/sewtrack/sewtrack/internal/task/repository"
	"github.com/sewtrack/sewtrack/internal/task/service"
	"go.uber.org/fx"
)

var Module = fx.Module("task.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
