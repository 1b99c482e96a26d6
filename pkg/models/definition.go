package models

// Node categories shown by the editor palette.
const (
	CategoryTrigger = "Trigger"
	CategoryAction  = "Action"
	CategoryLogic   = "Logic"
	CategoryAI      = "AI"
)

// NodeDefinition describes a node type for the graph editor.
type NodeDefinition struct {
	Type            string             `json:"type"`
	Label           string             `json:"label"`
	Category        string             `json:"category"`
	Description     string             `json:"description"`
	Fields          []FieldDefinition  `json:"fields"`
	Inputs          []HandleDefinition `json:"inputs"`
	Outputs         []HandleDefinition `json:"outputs"`
	OutputVariables []OutputVariable   `json:"outputVariables,omitempty"`
}

// FieldDefinition describes one configurable field of a node.
type FieldDefinition struct {
	Name           string        `json:"name"`
	Label          string        `json:"label"`
	Type           string        `json:"type"`
	Options        []FieldOption `json:"options,omitempty"`
	DynamicOptions string        `json:"dynamicOptions,omitempty"`
	DefaultValue   any           `json:"defaultValue,omitempty"`
	Placeholder    string        `json:"placeholder,omitempty"`
	Required       bool          `json:"required,omitempty"`
}

type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// HandleDefinition is a connection point; Type is "target" for inputs and "source" for outputs.
type HandleDefinition struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// OutputVariable documents a context key written by a node.
type OutputVariable struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Defaults returns the default value of every field that declares one.
func (d NodeDefinition) Defaults() map[string]any {
	defaults := make(map[string]any)

	for _, field := range d.Fields {
		if field.DefaultValue != nil {
			defaults[field.Name] = field.DefaultValue
		}
	}

	return defaults
}

// InputHandle is the single target handle most nodes expose.
func InputHandle() []HandleDefinition {
	return []HandleDefinition{{ID: "input", Type: "target", Label: "Input"}}
}

// OutputHandles builds source handles from id/label pairs.
func OutputHandles(pairs ...string) []HandleDefinition {
	handles := make([]HandleDefinition, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		handles = append(handles, HandleDefinition{ID: pairs[i], Type: "source", Label: pairs[i+1]})
	}

	return handles
}
