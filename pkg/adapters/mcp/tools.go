package mcp

import (
	"github.com/aretw0/buildsync/pkg/rpc"
	"github.com/mark3labs/mcp-go/mcp"
)

type paramKind int

const (
	kindString paramKind = iota
	kindNumber
	kindIntegers
	kindAny
)

type param struct {
	name        string
	kind        paramKind
	required    bool
	description string
}

// toolSpec describes the tool fronting one dispatcher method.
type toolSpec struct {
	method      string
	description string
	params      []param
}

func (ts toolSpec) tool() mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(ts.description)}
	var untyped []param
	for _, p := range ts.params {
		propOpts := []mcp.PropertyOption{mcp.Description(p.description)}
		if p.required {
			propOpts = append(propOpts, mcp.Required())
		}
		switch p.kind {
		case kindString:
			opts = append(opts, mcp.WithString(p.name, propOpts...))
		case kindNumber:
			opts = append(opts, mcp.WithNumber(p.name, propOpts...))
		case kindIntegers:
			propOpts = append(propOpts, mcp.Items(map[string]any{"type": "integer"}))
			opts = append(opts, mcp.WithArray(p.name, propOpts...))
		case kindAny:
			untyped = append(untyped, p)
		}
	}

	tool := mcp.NewTool(ts.method, opts...)
	// Values of any JSON type have no typed option; declare them directly.
	for _, p := range untyped {
		tool.InputSchema.Properties[p.name] = map[string]any{"description": p.description}
		if p.required {
			tool.InputSchema.Required = append(tool.InputSchema.Required, p.name)
		}
	}
	return tool
}

var toolSpecs = []toolSpec{
	{
		method:      rpc.MethodBoot,
		description: "Load the calculation engine from an engine image. Must be called once before anything else.",
		params:      []param{{"image", kindString, true, "Engine image (reference engine manifest YAML)"}},
	},
	{
		method:      rpc.MethodLoadData,
		description: "Load the bulk game data. Errors are logged by the session, not returned.",
	},
	{
		method:      rpc.MethodImportCode,
		description: "Replace the current build with one decoded from a shared build code.",
		params:      []param{{"code", kindString, true, "Shared build code"}},
	},
	{
		method:      rpc.MethodTick,
		description: "Recompute the build output.",
		params:      []param{{"reason", kindString, false, "Label recorded with the tick"}},
	},
	{
		method:      rpc.MethodSetConfigOption,
		description: "Set a config option. Setting the option's default value removes it from the build.",
		params: []param{
			{"key", kindString, true, "Config option variable name"},
			{"value", kindAny, false, "New value (boolean, number or string)"},
		},
	},
	{
		method:      rpc.MethodGetConfigOption,
		description: "Read a config option stored on the build.",
		params:      []param{{"name", kindString, true, "Config option variable name"}},
	},
	{
		method:      rpc.MethodSetMainSocketGroup,
		description: "Select the main socket group (1-based).",
		params:      []param{{"main_socket_group", kindNumber, true, "Socket group index"}},
	},
	{
		method:      rpc.MethodGetSkillGems,
		description: "Return a handle to the gem catalogue. Read it with read_ref.",
	},
	{
		method:      rpc.MethodGetTree,
		description: "Return the raw passive tree JSON for a tree version.",
		params:      []param{{"version", kindString, true, "Tree version, e.g. 3_18"}},
	},
	{
		method:      rpc.MethodSetClass,
		description: "Set the character class.",
		params:      []param{{"class", kindString, true, "Class name"}},
	},
	{
		method:      rpc.MethodSetAscendancy,
		description: "Set the ascendancy class.",
		params:      []param{{"ascendancy", kindString, true, "Ascendancy class name"}},
	},
	{
		method:      rpc.MethodSetLevel,
		description: "Set the character level.",
		params:      []param{{"level", kindNumber, true, "Character level"}},
	},
	{
		method:      rpc.MethodAllocateNodes,
		description: "Allocate passive tree nodes.",
		params:      []param{{"node_ids", kindIntegers, true, "Node ids to allocate"}},
	},
	{
		method:      rpc.MethodDeallocateNodes,
		description: "Deallocate one passive tree node.",
		params:      []param{{"node_id", kindNumber, true, "Node id to deallocate"}},
	},
	{
		method:      rpc.MethodCalculateTreePath,
		description: "Shortest path from the allocated nodes to a target node.",
		params: []param{
			{"version", kindString, true, "Tree version"},
			{"active_nodes", kindIntegers, true, "Currently allocated node ids"},
			{"target", kindNumber, true, "Target node id"},
		},
	},
	{
		method:      rpc.MethodCurrentBuild,
		description: "Return a copy of the current build.",
	},
}
