package ports

import (
	"context"

	"github.com/aretw0/buildsync/pkg/domain"
)

// EngineLoader instantiates the calculation engine from an engine image.
// Loading may suspend for an arbitrarily long time.
type EngineLoader interface {
	Load(ctx context.Context, image []byte) (Engine, error)
}

// Engine is the opaque calculation and parsing capability a session depends on.
type Engine interface {
	// InitLogging configures the engine's own diagnostics.
	InitLogging(verbose bool)

	// InitializeDiskCache hands the engine the host storage used for cached artifacts.
	InitializeDiskCache(ctx context.Context, bridge StorageBridge) error

	// InitializeAll loads bulk data for dataVersion, reporting progress as it goes.
	InitializeAll(ctx context.Context, dataVersion string, progress func(string)) error

	// DecodeDecompress turns an encoded build string into build text.
	DecodeDecompress(code string) (string, error)

	// ParseBuildStr parses build text into a Build.
	ParseBuildStr(text string) (*domain.Build, error)

	// NewCalculator returns a calculator for build, or nil when none can be created.
	NewCalculator(build *domain.Build) Calculator

	// GetSkillGems returns the gem catalogue, or nil when data is not loaded.
	GetSkillGems() []domain.SkillGem

	// GetRawTree returns raw tree data for version, or nil when unknown.
	GetRawTree(version string) []byte

	// CalculateTreePath returns the nodes to allocate to reach target from activeNodes.
	CalculateTreePath(version string, activeNodes []int64, target int64) []int64

	// Info describes the engine for diagnostics.
	Info() map[string]string
}

// Calculator computes output for one build.
type Calculator interface {
	// BuildOutput returns the computed environment, or nil when nothing could be computed.
	BuildOutput(ctx context.Context, mode domain.OutputMode) *domain.Environment
}

// OutputCallback receives the output of every successful tick.
type OutputCallback func(out domain.Outputs)
