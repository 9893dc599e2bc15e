package workrecord

import (
	"github.com/sewtrack/sewtrack/internal/workrecord/repository"
	"github.com/sewtrack/sewtrack/internal/workrecord/service"
	"go.uber.org/fx"
)

var Module = fx.Module("workrecord.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
