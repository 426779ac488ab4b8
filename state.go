package forman

// FieldState is a UI-restore entry recorded during validation: enough to
// redraw a chosen option, a walked path or validated nested content
// without re-resolving remote sources.
type FieldState struct {
	Mode   string         `json:"mode,omitempty"`
	Label  string         `json:"label,omitempty"`
	Path   []string       `json:"path,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
	Nested StateTree      `json:"nested,omitempty"`
	Items  []StateTree    `json:"items,omitempty"`
}

// StateTree maps field names to their states within one collection level.
type StateTree map[string]*FieldState

// Result is the outcome of a validation run. Errors accumulates every data
// problem found; Valid is false whenever Errors is non-empty. States is
// present only when requested.
type Result struct {
	Valid  bool                 `json:"valid"`
	Errors Issues               `json:"errors,omitempty"`
	States map[string]StateTree `json:"states,omitempty"`
}
