package ports

import (
	"github.com/aretw0/buildsync/pkg/boundary"
	"github.com/aretw0/buildsync/pkg/domain"
)

// SyncTarget is the observer store that receives the current build.
// Each Set replaces the previously observed handle; Set must not block.
type SyncTarget interface {
	Set(ref boundary.Ref[*domain.Build])
}
