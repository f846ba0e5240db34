package catalog

import (
	"github.com/dealdesk/dealdesk/internal/catalog/repository"
	"github.com/dealdesk/dealdesk/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
