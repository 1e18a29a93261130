// Package localengine is a reference implementation of the engine boundary.
//
// It decodes and parses shared build codes, loads passive tree data through
// the host disk cache, finds allocation paths and produces a structural
// summary of a build. It does not implement the damage calculation.
package localengine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/buildsync/internal/logging"
	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/aretw0/buildsync/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Manifest is the engine image: the data the engine serves without loading files.
type Manifest struct {
	Name         string            `yaml:"name"`
	TreeVersions []string          `yaml:"tree_versions"`
	SkillGems    []domain.SkillGem `yaml:"skill_gems"`
}

// ParseManifest decodes an engine image.
func ParseManifest(image []byte) (Manifest, error) {
	var m Manifest
	if len(image) == 0 {
		return m, fmt.Errorf("empty engine image")
	}
	if err := yaml.Unmarshal(image, &m); err != nil {
		return m, fmt.Errorf("failed to parse engine manifest: %w", err)
	}
	if m.Name == "" {
		m.Name = "reference"
	}
	return m, nil
}

// Loader creates engines from manifests.
type Loader struct {
	dataDir string
	logger  *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithDataDir sets the directory holding per-version data files.
func WithDataDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.dataDir = dir
	}
}

// WithLogger sets the logger handed to loaded engines.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader. Data is read from "data" unless configured.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		dataDir: "data",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load implements ports.EngineLoader.
func (l *Loader) Load(ctx context.Context, image []byte) (ports.Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := ParseManifest(image)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("engine manifest loaded", "name", m.Name, "trees", len(m.TreeVersions), "gems", len(m.SkillGems))
	return newEngine(m, l.dataDir, l.logger), nil
}
