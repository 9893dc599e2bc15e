package ratecard

import (
	"github.com/sewtrack/sewtrack/internal/ratecard/repository"
	"github.com/sewtrack/sewtrack/internal/ratecard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ratecard.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
