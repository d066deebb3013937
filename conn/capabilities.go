package conn

import dap "github.com/google/go-dap"

// Capabilities holds a deep copy of the adapter's advertised Capabilities
// body (spec.md §3.3: capability sets are "arena-cloned" out of the response
// that produced them so later responses reusing the same wire buffer can
// never retroactively mutate what the connection remembers supporting). Go
// is garbage collected, so the clone is a plain value copy of every slice
// field rather than an arena allocation; see DESIGN.md for that adaptation.
type Capabilities struct {
	body dap.Capabilities
	set  bool
}

// Set records body as the adapter's capabilities, deep-copying every slice
// field so the stored value is independent of whatever buffer decoded it.
func (c *Capabilities) Set(body dap.Capabilities) {
	clone := body
	clone.ExceptionBreakpointFilters = append([]dap.ExceptionBreakpointsFilter(nil), body.ExceptionBreakpointFilters...)
	clone.CompletionTriggerCharacters = append([]string(nil), body.CompletionTriggerCharacters...)
	clone.AdditionalModuleColumns = append([]dap.ColumnDescriptor(nil), body.AdditionalModuleColumns...)
	clone.SupportedChecksumAlgorithms = append([]dap.ChecksumAlgorithm(nil), body.SupportedChecksumAlgorithms...)
	clone.BreakpointModes = append([]dap.BreakpointMode(nil), body.BreakpointModes...)
	c.body = clone
	c.set = true
}

// Body returns a copy of the stored capabilities. Safe to call before Set;
// returns the zero value (every Supports* false) until the initialize
// response has been handled.
func (c *Capabilities) Body() dap.Capabilities {
	return c.body
}

// gatingTable maps a request command to the capability flag that must be
// true before the request may be queued. Commands absent from this table are
// always permitted once the connection is past the initialize handshake;
// they are part of the DAP base protocol every adapter must implement.
var gatingTable = map[string]func(dap.Capabilities) bool{
	"setFunctionBreakpoints":  func(c dap.Capabilities) bool { return c.SupportsFunctionBreakpoints },
	"setDataBreakpoints":      func(c dap.Capabilities) bool { return c.SupportsDataBreakpoints },
	"dataBreakpointInfo":      func(c dap.Capabilities) bool { return c.SupportsDataBreakpoints },
	"stepBack":                func(c dap.Capabilities) bool { return c.SupportsStepBack },
	"reverseContinue":         func(c dap.Capabilities) bool { return c.SupportsStepBack },
	"setVariable":             func(c dap.Capabilities) bool { return c.SupportsSetVariable },
	"restartFrame":            func(c dap.Capabilities) bool { return c.SupportsRestartFrame },
	"gotoTargets":             func(c dap.Capabilities) bool { return c.SupportsGotoTargetsRequest },
	"goto":                    func(c dap.Capabilities) bool { return c.SupportsGotoTargetsRequest },
	"stepInTargets":           func(c dap.Capabilities) bool { return c.SupportsStepInTargetsRequest },
	"completions":             func(c dap.Capabilities) bool { return c.SupportsCompletionsRequest },
	"modules":                 func(c dap.Capabilities) bool { return c.SupportsModulesRequest },
	"restart":                 func(c dap.Capabilities) bool { return c.SupportsRestartRequest },
	"exceptionInfo":           func(c dap.Capabilities) bool { return c.SupportsExceptionInfoRequest },
	"loadedSources":           func(c dap.Capabilities) bool { return c.SupportsLoadedSourcesRequest },
	"terminateThreads":        func(c dap.Capabilities) bool { return c.SupportsTerminateThreadsRequest },
	"setExpression":           func(c dap.Capabilities) bool { return c.SupportsSetExpression },
	"terminate":               func(c dap.Capabilities) bool { return c.SupportsTerminateRequest },
	"readMemory":              func(c dap.Capabilities) bool { return c.SupportsReadMemoryRequest },
	"writeMemory":             func(c dap.Capabilities) bool { return c.SupportsWriteMemoryRequest },
	"disassemble":             func(c dap.Capabilities) bool { return c.SupportsDisassembleRequest },
	"cancel":                  func(c dap.Capabilities) bool { return c.SupportsCancelRequest },
	"breakpointLocations":     func(c dap.Capabilities) bool { return c.SupportsBreakpointLocationsRequest },
	"setInstructionBreakpoints": func(c dap.Capabilities) bool { return c.SupportsInstructionBreakpoints },
	"setExceptionBreakpoints": func(c dap.Capabilities) bool { return true },
}

// Supports reports whether the adapter's advertised capabilities permit
// command. Commands with no gating entry are always supported.
func (c *Capabilities) Supports(command string) bool {
	check, gated := gatingTable[command]
	if !gated {
		return true
	}
	return check(c.body)
}
