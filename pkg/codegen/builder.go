package codegen

import (
	"github.com/osakka/axiosgen/pkg/config"
	"github.com/osakka/axiosgen/pkg/logging"
)

// Builder turns a loaded document into services and definitions
type Builder struct {
	logger   logging.Logger
	opts     *config.Options
	resolver *Resolver
	include  *IncludeFilter
}

// NewBuilder creates a builder for the given options
func NewBuilder(logger logging.Logger, opts *config.Options) *Builder {
	if logger == nil {
		logger = logging.NewNoOp()
	}
	return &Builder{
		logger:   logger.WithComponent("codegen"),
		opts:     opts,
		resolver: NewResolver(opts.ExtendGenericType, opts.StrictNullChecks),
		include:  NewIncludeFilter(opts.Include, opts.ServiceNameSuffix),
	}
}

// Resolver returns the schema type resolver used by the builder
func (b *Builder) Resolver() *Resolver {
	return b.resolver
}
