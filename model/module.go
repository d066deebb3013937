package model

import (
	"fmt"

	dap "github.com/google/go-dap"
)

// Modules tracks the modules an adapter has reported, keyed by the
// stringified form of dap.Module.Id (DAP allows either a number or string
// as a module id).
type Modules struct {
	order []string
	byID  map[string]dap.Module
}

// NewModules returns an empty module tracker.
func NewModules() *Modules {
	return &Modules{byID: make(map[string]dap.Module)}
}

func moduleKey(id any) string {
	return fmt.Sprint(id)
}

// ReplaceAll installs modules as the complete current module list, as
// returned by a modules request.
func (m *Modules) ReplaceAll(modules []dap.Module) {
	m.order = m.order[:0]
	m.byID = make(map[string]dap.Module, len(modules))
	for _, mod := range modules {
		key := moduleKey(mod.Id)
		m.order = append(m.order, key)
		m.byID[key] = mod
	}
}

// ApplyEvent applies a module event (reason "new", "changed", or "removed")
// to the tracked set.
func (m *Modules) ApplyEvent(reason string, mod dap.Module) {
	key := moduleKey(mod.Id)
	switch reason {
	case "removed":
		if _, ok := m.byID[key]; !ok {
			return
		}
		delete(m.byID, key)
		for i, existing := range m.order {
			if existing == key {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	case "new":
		if _, ok := m.byID[key]; !ok {
			m.order = append(m.order, key)
		}
		m.byID[key] = mod
	default: // "changed"
		m.byID[key] = mod
	}
}

// All returns the current module list in display order.
func (m *Modules) All() []dap.Module {
	out := make([]dap.Module, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, m.byID[key])
	}
	return out
}
