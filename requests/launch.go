// Package requests builds typed DAP request messages and queues them onto a
// connection, and owns the session-level orchestration (spawning the
// adapter, running the initialize/launch handshake, tearing the session
// down) that sits above conn's lower-level scheduling primitives.
package requests

import "github.com/kory-oss/dap-core/jsonvalue"

// LaunchConfig is the opaque launch/attach configuration a caller supplies
// (spec.md §6.3): the core never parses a launch.json or similar file
// itself, it only knows how to turn one of these into a launch/attach
// request's Arguments. Extra carries whatever adapter-specific fields a
// configuration collaborator read from its own config format, merged in
// without this package needing to know their schema.
type LaunchConfig struct {
	Request     string // "launch" or "attach"
	Program     string
	Args        []string
	Cwd         string
	Env         map[string]string
	StopOnEntry bool
	Extra       *jsonvalue.Object
}

// Arguments renders cfg into the raw JSON a launch/attach request's
// Arguments field should carry, merging Extra's fields on top of the
// well-known ones (Extra wins on key collisions, consistent with
// jsonvalue.MergeAt's override semantics).
func (cfg LaunchConfig) Arguments() (jsonvalue.Value, error) {
	obj := jsonvalue.NewObject()
	if cfg.Program != "" {
		obj.Set("program", jsonvalue.String(cfg.Program))
	}
	if len(cfg.Args) > 0 {
		items := make([]jsonvalue.Value, len(cfg.Args))
		for i, a := range cfg.Args {
			items[i] = jsonvalue.String(a)
		}
		obj.Set("args", jsonvalue.Array(items...))
	}
	if cfg.Cwd != "" {
		obj.Set("cwd", jsonvalue.String(cfg.Cwd))
	}
	if len(cfg.Env) > 0 {
		envObj := jsonvalue.NewObject()
		for k, v := range cfg.Env {
			envObj.Set(k, jsonvalue.String(v))
		}
		obj.Set("env", jsonvalue.FromObject(envObj))
	}
	if cfg.StopOnEntry {
		obj.Set("stopOnEntry", jsonvalue.Bool(true))
	}

	root := jsonvalue.FromObject(obj)
	if cfg.Extra == nil || cfg.Extra.Len() == 0 {
		return root, nil
	}
	return jsonvalue.MergeAt(root, nil, cfg.Extra)
}
