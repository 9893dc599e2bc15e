package product

import (
	"github.com/sewtrack/sewtrack/internal/product/repository"
	"github.com/sewtrack/sewtrack/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
