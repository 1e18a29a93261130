package ports

import "github.com/aretw0/buildsync/pkg/domain"

// ConfigSchema looks up config option descriptors by key.
type ConfigSchema interface {
	Lookup(key string) (domain.ConfigOption, bool)
}
