package port

import (
	"context"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

// Provider queries a hosted multimodal model with a finished package.
// The core never depends on a concrete provider, only on the Package value.
type Provider interface {
	Name() string
	Query(ctx context.Context, pkg *entity.Package, question string) (string, error)
}
