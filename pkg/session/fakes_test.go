package session_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/buildsync/pkg/adapters/configschema"
	"github.com/aretw0/buildsync/pkg/boundary"
	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/aretw0/buildsync/pkg/ports"
	"github.com/aretw0/buildsync/pkg/session"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLoader hands out a preconfigured engine.
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context, image []byte) (ports.Engine, error) {
	args := m.Called(ctx, image)
	engine, _ := args.Get(0).(ports.Engine)
	return engine, args.Error(1)
}

// FakeEngine decodes "code" to "xml:code" and parses it by looking the code up in Builds.
type FakeEngine struct {
	mu sync.Mutex

	Builds       map[string]*domain.Build
	DecodeErr    error
	NoCalculator bool
	Output       func(b *domain.Build) *domain.Environment
	Gems         []domain.SkillGem
	Trees        map[string][]byte
	Paths        map[int64][]int64
	InitErr      error
	CacheErr     error

	Verbose       bool
	Bridge        ports.StorageBridge
	DataVersions  []string
	CalculatorLog []*domain.Build
}

var errBadXML = errors.New("bad xml")

func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		Builds: make(map[string]*domain.Build),
		Trees:  make(map[string][]byte),
		Paths:  make(map[int64][]int64),
		Output: computable,
	}
}

// computable reports the level and passive node count as output.
func computable(b *domain.Build) *domain.Environment {
	return &domain.Environment{
		Player: &domain.Actor{
			Output: map[string]any{
				"Level": b.Character.Level,
				"Nodes": len(b.Character.PassiveNodes),
			},
			OutputTable: map[string]any{"Inputs": len(b.Config.Inputs)},
			MainSkill:   &domain.ActiveSkill{Name: "Smite", SkillFlags: map[string]bool{"attack": true}},
		},
		DebugErrors: []string{"reference output"},
	}
}

func (e *FakeEngine) InitLogging(verbose bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Verbose = verbose
}

func (e *FakeEngine) InitializeDiskCache(ctx context.Context, bridge ports.StorageBridge) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.CacheErr != nil {
		return e.CacheErr
	}
	e.Bridge = bridge
	return nil
}

func (e *FakeEngine) InitializeAll(ctx context.Context, dataVersion string, progress func(string)) error {
	e.mu.Lock()
	e.DataVersions = append(e.DataVersions, dataVersion)
	err := e.InitErr
	e.mu.Unlock()

	if progress != nil {
		progress("loading " + dataVersion)
	}
	return err
}

func (e *FakeEngine) DecodeDecompress(code string) (string, error) {
	if e.DecodeErr != nil {
		return "", e.DecodeErr
	}
	return "xml:" + code, nil
}

func (e *FakeEngine) ParseBuildStr(text string) (*domain.Build, error) {
	b, ok := e.Builds[strings.TrimPrefix(text, "xml:")]
	if !ok {
		return nil, errBadXML
	}
	return b.Clone(), nil
}

func (e *FakeEngine) NewCalculator(build *domain.Build) ports.Calculator {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.NoCalculator {
		return nil
	}
	e.CalculatorLog = append(e.CalculatorLog, build)
	return fakeCalculator{build: build, output: e.Output}
}

func (e *FakeEngine) GetSkillGems() []domain.SkillGem {
	return e.Gems
}

func (e *FakeEngine) GetRawTree(version string) []byte {
	return e.Trees[version]
}

func (e *FakeEngine) CalculateTreePath(version string, activeNodes []int64, target int64) []int64 {
	if _, ok := e.Trees[version]; !ok {
		return nil
	}
	return e.Paths[target]
}

func (e *FakeEngine) Info() map[string]string {
	return map[string]string{"name": "fake"}
}

func (e *FakeEngine) calculatorCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.CalculatorLog)
}

type fakeCalculator struct {
	build  *domain.Build
	output func(b *domain.Build) *domain.Environment
}

func (c fakeCalculator) BuildOutput(ctx context.Context, mode domain.OutputMode) *domain.Environment {
	if mode != domain.ModeMain {
		return nil
	}
	return c.output(c.build)
}

// SyncRecorder records every handle pushed by the session.
type SyncRecorder struct {
	mu   sync.Mutex
	refs []boundary.Ref[*domain.Build]
}

func (r *SyncRecorder) Set(ref boundary.Ref[*domain.Build]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refs = append(r.refs, ref)
}

func (r *SyncRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.refs)
}

func (r *SyncRecorder) Last() boundary.Ref[*domain.Build] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refs[len(r.refs)-1]
}

// Harness is a booted session with its collaborators.
type Harness struct {
	Session *session.Session
	Engine  *FakeEngine
	Target  *SyncRecorder

	mu      sync.Mutex
	outputs []domain.Outputs
	ticks   []domain.TickEvent
}

func (h *Harness) onOutput(out domain.Outputs) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outputs = append(h.outputs, out)
}

func (h *Harness) Outputs() []domain.Outputs {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Outputs(nil), h.outputs...)
}

// Ticks returns the reasons of every tick attempt so far.
func (h *Harness) Ticks() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	reasons := make([]string, 0, len(h.ticks))
	for _, e := range h.ticks {
		reasons = append(reasons, e.Reason)
	}
	return reasons
}

func (h *Harness) LastTick() domain.TickEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ticks[len(h.ticks)-1]
}

var testSchema = configschema.Static{
	"lvl":  {Kind: domain.KindCheck},
	"mode": {Kind: domain.KindList, List: []domain.ListOption{{Value: "off"}, {Value: "aggressive"}}},
	"X":    {Kind: domain.KindCount},
	"onslaught": {
		Kind:         domain.KindCheck,
		DefaultState: func() *bool { b := true; return &b }(),
	},
	"penalty": {Kind: domain.KindList, List: []domain.ListOption{{Value: 0}, {Value: -30}}},
}

// newHarness boots a session on a fresh FakeEngine. Extra options are applied last.
func newHarness(t *testing.T, opts ...session.Option) *Harness {
	t.Helper()
	h := &Harness{
		Engine: NewFakeEngine(),
		Target: &SyncRecorder{},
	}

	loader := new(MockLoader)
	loader.On("Load", mock.Anything, mock.Anything).Return(h.Engine, nil)

	hooks := domain.SessionHooks{
		OnTick: func(ctx context.Context, e *domain.TickEvent) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.ticks = append(h.ticks, *e)
		},
	}

	all := append([]session.Option{session.WithSchema(testSchema), session.WithHooks(hooks)}, opts...)
	h.Session = session.New(loader, all...)
	t.Cleanup(func() { h.Session.Close() })

	require.NoError(t, h.Session.Boot(testContext(t), []byte("image"), h.onOutput, h.Target))
	return h
}

// importBuild registers b with the engine under code and imports it.
func (h *Harness) importBuild(t *testing.T, code string, b *domain.Build) {
	t.Helper()
	h.Engine.Builds[code] = b
	require.NoError(t, h.Session.ImportBuild(testContext(t), code))
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func sampleBuild() *domain.Build {
	return &domain.Build{
		Character: domain.Character{
			Level:           90,
			ClassName:       "Marauder",
			MainSocketGroup: 1,
			PassiveNodes:    []int64{1, 2, 3},
		},
		Config: domain.Config{
			Inputs: []domain.Input{mustInput("enemyIsBoss", "Pinnacle")},
		},
	}
}

func mustInput(name string, value any) domain.Input {
	in, err := domain.NewInput(name, value)
	if err != nil {
		panic(err)
	}
	return in
}
