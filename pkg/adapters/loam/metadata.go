package loam

// NodeMetadata is the front matter of a node document.
// It uses "mapstructure" tags to match the keys of a graph definition file.
type NodeMetadata struct {
	Name        string         `json:"name" mapstructure:"name"`
	Op          string         `json:"op" mapstructure:"op"`
	Deps        []string       `json:"deps" mapstructure:"deps"`
	Args        map[string]any `json:"args" mapstructure:"args"`
	Description string         `json:"description" mapstructure:"description"`
}
