package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/aretw0/buildsync/internal/logging"
	"github.com/aretw0/buildsync/pkg/boundary"
	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/aretw0/buildsync/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// ErrUnknownMethod is returned for names outside the message surface.
var ErrUnknownMethod = errors.New("unknown method")

// ErrInvalidArgs is returned when arguments do not decode into a method's parameters.
var ErrInvalidArgs = errors.New("invalid arguments")

// Session is the message surface a Dispatcher drives.
type Session interface {
	Boot(ctx context.Context, image []byte, cb ports.OutputCallback, target ports.SyncTarget) error
	LoadInitialData(ctx context.Context, progress func(string)) error
	ImportBuild(ctx context.Context, code string) error
	Tick(ctx context.Context, reason string) error
	SetConfigOption(ctx context.Context, key string, value any) error
	GetConfigOption(ctx context.Context, name string) (any, bool, error)
	SetMainSocketGroup(ctx context.Context, mainSocketGroup int) error
	GetSkillGems(ctx context.Context) (boundary.Ref[[]domain.SkillGem], error)
	GetTree(ctx context.Context, version string) (string, error)
	SetClass(ctx context.Context, class string) error
	SetAscendancy(ctx context.Context, ascendancy string) error
	SetLevel(ctx context.Context, level int) error
	AllocateNodes(ctx context.Context, nodeIDs []int64) error
	DeallocateNodes(ctx context.Context, nodeID int64) error
	CalculateTreePath(ctx context.Context, version string, activeNodes []int64, target int64) ([]int64, error)
	BuildInfo(ctx context.Context) (domain.BuildInfo, error)
	CurrentBuild(ctx context.Context) (*domain.Build, error)
}

// Handler runs one method.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Dispatcher routes method names to session operations.
type Dispatcher struct {
	session  Session
	output   ports.OutputCallback
	target   ports.SyncTarget
	progress func(string)
	logger   *slog.Logger
	handlers map[string]Handler
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithOutput sets the output callback passed to boot.
func WithOutput(cb ports.OutputCallback) Option {
	return func(d *Dispatcher) {
		d.output = cb
	}
}

// WithSyncTarget sets the sync target passed to boot.
func WithSyncTarget(target ports.SyncTarget) Option {
	return func(d *Dispatcher) {
		d.target = target
	}
}

// WithProgress sets the progress reporter passed to loadData.
func WithProgress(progress func(string)) Option {
	return func(d *Dispatcher) {
		d.progress = progress
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a Dispatcher over sess.
func NewDispatcher(sess Session, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		session: sess,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.handlers = d.routes()
	return d
}

// Dispatch runs the named method.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (any, error) {
	h, ok := d.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
	if args == nil {
		args = map[string]any{}
	}

	result, err := h(ctx, args)
	if err != nil {
		d.logger.Debug("rpc failed", "method", name, "err", err)
		return nil, err
	}
	d.logger.Debug("rpc handled", "method", name)
	return result, nil
}

// Methods returns the method names, sorted.
func (d *Dispatcher) Methods() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decode fills params from args. Strings and numbers convert into each other
// and unknown keys are rejected.
func decode(args map[string]any, params any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           params,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}

// StatusCode maps an error from Dispatch to an HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnknownMethod), errors.Is(err, domain.ErrTreeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotReady), errors.Is(err, domain.ErrAlreadyBooted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidArgs),
		errors.Is(err, domain.ErrUnknownConfigOption),
		errors.Is(err, domain.ErrInvalidConfigValue),
		errors.Is(err, domain.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns a stable machine-readable name for err.
func ErrorCode(err error) string {
	codes := []struct {
		target error
		code   string
	}{
		{ErrUnknownMethod, "unknown_method"},
		{ErrInvalidArgs, "invalid_args"},
		{domain.ErrNotReady, "not_ready"},
		{domain.ErrAlreadyBooted, "already_booted"},
		{domain.ErrSessionClosed, "session_closed"},
		{domain.ErrUnknownConfigOption, "unknown_config_option"},
		{domain.ErrInvalidConfigValue, "invalid_config_value"},
		{domain.ErrDecode, "decode_failed"},
		{domain.ErrParse, "parse_failed"},
		{domain.ErrTreeNotFound, "tree_not_found"},
	}
	for _, c := range codes {
		if errors.Is(err, c.target) {
			return c.code
		}
	}
	return "internal"
}
