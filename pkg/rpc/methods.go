package rpc

import (
	"context"
	"fmt"
)

// Method names of the session message surface.
const (
	MethodBoot               = "boot"
	MethodLoadData           = "loadData"
	MethodImportCode         = "importCode"
	MethodTick               = "tick"
	MethodSetConfigOption    = "setConfigOption"
	MethodGetConfigOption    = "getConfigOption"
	MethodSetMainSocketGroup = "setMainSocketGroup"
	MethodGetSkillGems       = "getSkillGems"
	MethodGetTree            = "getTree"
	MethodSetClass           = "setClass"
	MethodSetAscendancy      = "setAscendancy"
	MethodSetLevel           = "setLevel"
	MethodAllocateNodes      = "allocateNodes"
	MethodDeallocateNodes    = "deallocateNodes"
	MethodCalculateTreePath  = "calculateTreePath"
	MethodBuildInfo          = "buildInfo"
	MethodCurrentBuild       = "currentBuild"
)

// Ack is the result of methods that return nothing.
type Ack struct {
	OK bool `json:"ok"`
}

var ack = Ack{OK: true}

// ConfigValue is the result of getConfigOption.
type ConfigValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
	Found bool   `json:"found"`
}

// TreePath is the result of calculateTreePath.
type TreePath struct {
	Nodes []int64 `json:"nodes"`
}

type bootParams struct {
	Image string `mapstructure:"image"`
}

type codeParams struct {
	Code string `mapstructure:"code"`
}

type tickParams struct {
	Reason string `mapstructure:"reason"`
}

type setConfigParams struct {
	Key   string `mapstructure:"key"`
	Value any    `mapstructure:"value"`
}

type nameParams struct {
	Name string `mapstructure:"name"`
}

type socketGroupParams struct {
	MainSocketGroup int `mapstructure:"main_socket_group"`
}

type versionParams struct {
	Version string `mapstructure:"version"`
}

type classParams struct {
	Class string `mapstructure:"class"`
}

type ascendancyParams struct {
	Ascendancy string `mapstructure:"ascendancy"`
}

type levelParams struct {
	Level int `mapstructure:"level"`
}

type allocateParams struct {
	NodeIDs []int64 `mapstructure:"node_ids"`
}

type deallocateParams struct {
	NodeID int64 `mapstructure:"node_id"`
}

type treePathParams struct {
	Version     string  `mapstructure:"version"`
	ActiveNodes []int64 `mapstructure:"active_nodes"`
	Target      int64   `mapstructure:"target"`
}

// call decodes args into P and runs fn.
func call[P any](fn func(ctx context.Context, p P) (any, error)) Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		var p P
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		return fn(ctx, p)
	}
}

func required(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidArgs, name)
	}
	return nil
}

func (d *Dispatcher) routes() map[string]Handler {
	s := d.session
	return map[string]Handler{
		MethodBoot: call(func(ctx context.Context, p bootParams) (any, error) {
			return ack, s.Boot(ctx, []byte(p.Image), d.output, d.target)
		}),
		MethodLoadData: call(func(ctx context.Context, _ struct{}) (any, error) {
			return ack, s.LoadInitialData(ctx, d.progress)
		}),
		MethodImportCode: call(func(ctx context.Context, p codeParams) (any, error) {
			if err := required("code", p.Code); err != nil {
				return nil, err
			}
			return ack, s.ImportBuild(ctx, p.Code)
		}),
		MethodTick: call(func(ctx context.Context, p tickParams) (any, error) {
			if p.Reason == "" {
				p.Reason = "manual"
			}
			return ack, s.Tick(ctx, p.Reason)
		}),
		MethodSetConfigOption: call(func(ctx context.Context, p setConfigParams) (any, error) {
			if err := required("key", p.Key); err != nil {
				return nil, err
			}
			return ack, s.SetConfigOption(ctx, p.Key, p.Value)
		}),
		MethodGetConfigOption: call(func(ctx context.Context, p nameParams) (any, error) {
			if err := required("name", p.Name); err != nil {
				return nil, err
			}
			value, found, err := s.GetConfigOption(ctx, p.Name)
			if err != nil {
				return nil, err
			}
			return ConfigValue{Name: p.Name, Value: value, Found: found}, nil
		}),
		MethodSetMainSocketGroup: call(func(ctx context.Context, p socketGroupParams) (any, error) {
			return ack, s.SetMainSocketGroup(ctx, p.MainSocketGroup)
		}),
		MethodGetSkillGems: call(func(ctx context.Context, _ struct{}) (any, error) {
			ref, err := s.GetSkillGems(ctx)
			if err != nil {
				return nil, err
			}
			return ref, nil
		}),
		MethodGetTree: call(func(ctx context.Context, p versionParams) (any, error) {
			if err := required("version", p.Version); err != nil {
				return nil, err
			}
			tree, err := s.GetTree(ctx, p.Version)
			if err != nil {
				return nil, err
			}
			return tree, nil
		}),
		MethodSetClass: call(func(ctx context.Context, p classParams) (any, error) {
			return ack, s.SetClass(ctx, p.Class)
		}),
		MethodSetAscendancy: call(func(ctx context.Context, p ascendancyParams) (any, error) {
			return ack, s.SetAscendancy(ctx, p.Ascendancy)
		}),
		MethodSetLevel: call(func(ctx context.Context, p levelParams) (any, error) {
			return ack, s.SetLevel(ctx, p.Level)
		}),
		MethodAllocateNodes: call(func(ctx context.Context, p allocateParams) (any, error) {
			return ack, s.AllocateNodes(ctx, p.NodeIDs)
		}),
		MethodDeallocateNodes: call(func(ctx context.Context, p deallocateParams) (any, error) {
			return ack, s.DeallocateNodes(ctx, p.NodeID)
		}),
		MethodCalculateTreePath: call(func(ctx context.Context, p treePathParams) (any, error) {
			if err := required("version", p.Version); err != nil {
				return nil, err
			}
			nodes, err := s.CalculateTreePath(ctx, p.Version, p.ActiveNodes, p.Target)
			if err != nil {
				return nil, err
			}
			return TreePath{Nodes: nodes}, nil
		}),
		MethodBuildInfo: call(func(ctx context.Context, _ struct{}) (any, error) {
			info, err := s.BuildInfo(ctx)
			if err != nil {
				return nil, err
			}
			return info, nil
		}),
		MethodCurrentBuild: call(func(ctx context.Context, _ struct{}) (any, error) {
			build, err := s.CurrentBuild(ctx)
			if err != nil {
				return nil, err
			}
			return build, nil
		}),
	}
}
