package localengine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/aretw0/buildsync/pkg/ports"
)

// Engine implements ports.Engine.
// Data loading may run concurrently with queries.
type Engine struct {
	manifest Manifest
	dataDir  string
	logger   *slog.Logger
	verbose  atomic.Bool

	mu          sync.RWMutex
	cache       ports.StorageBridge
	dataVersion string
	trees       map[string]*passiveTree
	gems        map[string]domain.SkillGem
}

var _ ports.Engine = (*Engine)(nil)

func newEngine(m Manifest, dataDir string, logger *slog.Logger) *Engine {
	gems := make(map[string]domain.SkillGem, len(m.SkillGems))
	for _, g := range m.SkillGems {
		gems[g.ID] = g
	}
	return &Engine{
		manifest: m,
		dataDir:  dataDir,
		logger:   logger,
		trees:    make(map[string]*passiveTree),
		gems:     gems,
	}
}

// InitLogging toggles the engine's debug diagnostics.
func (e *Engine) InitLogging(verbose bool) {
	e.verbose.Store(verbose)
}

func (e *Engine) debug(msg string, args ...any) {
	if e.verbose.Load() {
		e.logger.Debug(msg, args...)
	}
}

// InitializeDiskCache records the host storage used by InitializeAll.
func (e *Engine) InitializeDiskCache(_ context.Context, bridge ports.StorageBridge) error {
	if !bridge.Complete() {
		return fmt.Errorf("disk cache requires load, store and exists")
	}
	e.mu.Lock()
	e.cache = bridge
	e.mu.Unlock()
	return nil
}

// InitializeAll loads every tree version listed in the manifest.
func (e *Engine) InitializeAll(ctx context.Context, dataVersion string, progress func(string)) error {
	if progress == nil {
		progress = func(string) {}
	}

	e.mu.RLock()
	cache := e.cache
	e.mu.RUnlock()

	trees := make(map[string]*passiveTree, len(e.manifest.TreeVersions))
	for _, version := range e.manifest.TreeVersions {
		if err := ctx.Err(); err != nil {
			return err
		}

		progress(fmt.Sprintf("Loading tree %s", version))
		data, err := e.treeData(ctx, cache, dataVersion, version)
		if err != nil {
			return fmt.Errorf("tree %s: %w", version, err)
		}

		tree, err := parseTree(data)
		if err != nil {
			return fmt.Errorf("tree %s: %w", version, err)
		}
		trees[version] = tree
		e.debug("tree loaded", "version", version, "nodes", len(tree.names))
	}

	e.mu.Lock()
	e.dataVersion = dataVersion
	e.trees = trees
	e.mu.Unlock()

	progress("Done")
	return nil
}

func cacheKey(dataVersion, version string) string {
	return fmt.Sprintf("data/%s/tree/%s.json", dataVersion, version)
}

// treeData reads a tree through the disk cache, filling it from the data
// directory on a miss.
func (e *Engine) treeData(ctx context.Context, cache ports.StorageBridge, dataVersion, version string) ([]byte, error) {
	key := cacheKey(dataVersion, version)

	if cache.Complete() {
		ok, err := cache.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("cache exists: %w", err)
		}
		if ok {
			data, err := cache.Load(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("cache load: %w", err)
			}
			if len(data) > 0 {
				e.debug("tree cache hit", "key", key)
				return data, nil
			}
		}
	}

	path := filepath.Join(e.dataDir, dataVersion, "tree", version+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree data: %w", err)
	}

	if cache.Complete() {
		if err := cache.Store(ctx, key, data); err != nil {
			return nil, fmt.Errorf("cache store: %w", err)
		}
	}
	return data, nil
}

// DecodeDecompress implements ports.Engine.
func (e *Engine) DecodeDecompress(code string) (string, error) {
	return DecodeDecompress(code)
}

// ParseBuildStr implements ports.Engine.
func (e *Engine) ParseBuildStr(text string) (*domain.Build, error) {
	return ParseBuild(text)
}

// NewCalculator returns a calculator for build, or nil when build is nil.
func (e *Engine) NewCalculator(build *domain.Build) ports.Calculator {
	if build == nil {
		return nil
	}
	return &calculator{engine: e, build: build}
}

// GetSkillGems returns the gem catalogue sorted by id, or nil before InitializeAll.
func (e *Engine) GetSkillGems() []domain.SkillGem {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.dataVersion == "" {
		return nil
	}
	out := make([]domain.SkillGem, 0, len(e.gems))
	for _, g := range e.gems {
		g.Tags = slices.Clone(g.Tags)
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b domain.SkillGem) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (e *Engine) gem(id string) (domain.SkillGem, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	g, ok := e.gems[id]
	return g, ok
}

// GetRawTree returns the tree document for version, or nil when not loaded.
func (e *Engine) GetRawTree(version string) []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tree, ok := e.trees[version]
	if !ok {
		return nil
	}
	return slices.Clone(tree.raw)
}

// CalculateTreePath implements ports.Engine.
func (e *Engine) CalculateTreePath(version string, activeNodes []int64, target int64) []int64 {
	e.mu.RLock()
	tree, ok := e.trees[version]
	e.mu.RUnlock()

	if !ok {
		return nil
	}
	return tree.path(activeNodes, target)
}

// Info describes the engine.
func (e *Engine) Info() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	versions := slices.Clone(e.manifest.TreeVersions)
	slices.Sort(versions)
	return map[string]string{
		"name":          e.manifest.Name,
		"data_version":  e.dataVersion,
		"tree_versions": strings.Join(versions, ","),
		"trees_loaded":  strconv.Itoa(len(e.trees)),
		"skill_gems":    strconv.Itoa(len(e.gems)),
	}
}
