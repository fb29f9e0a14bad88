package meta

// Metadata summarizes what a generation run would produce for one source
// file, without writing anything. Printed by the inspect command.
type Metadata struct {
	Source    string       `json:"source" yaml:"source" toml:"source"`
	Symbols   []string     `json:"symbols" yaml:"symbols" toml:"symbols"` // header whitelist
	Structs   []StructInfo `json:"structs" yaml:"structs" toml:"structs"`
	Traits    []TraitInfo  `json:"traits" yaml:"traits" toml:"traits"`
	Transport Transport    `json:"transport" yaml:"transport" toml:"transport"`
	Imports   []string     `json:"imports" yaml:"imports" toml:"imports"`
	Skipped   []string     `json:"skipped,omitempty" yaml:"skipped,omitempty" toml:"skipped,omitempty"`
}

// StructInfo describes one struct in emission order.
type StructInfo struct {
	Name   string      `json:"name" yaml:"name" toml:"name"`
	Symbol string      `json:"symbol" yaml:"symbol" toml:"symbol"`
	Level  int         `json:"level" yaml:"level" toml:"level"`
	Deep   bool        `json:"deep" yaml:"deep" toml:"deep"`
	Fields []FieldInfo `json:"fields" yaml:"fields" toml:"fields"`
}

// FieldInfo is a named, typed struct field or function parameter.
type FieldInfo struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Type string `json:"type" yaml:"type" toml:"type"`
}

// TraitInfo describes one trait.
type TraitInfo struct {
	Name      string         `json:"name" yaml:"name" toml:"name"`
	Functions []FunctionInfo `json:"functions" yaml:"functions" toml:"functions"`
}

// Transport names.
const (
	TransportDirect = "direct"
	TransportShm    = "shm"
)

// FunctionInfo describes one trait function and the transport serving it.
// MemCallID is -1 for direct calls.
type FunctionInfo struct {
	Name      string      `json:"name" yaml:"name" toml:"name"`
	Params    []FieldInfo `json:"params" yaml:"params" toml:"params"`
	Returns   string      `json:"returns,omitempty" yaml:"returns,omitempty" toml:"returns,omitempty"`
	Async     bool        `json:"async" yaml:"async" toml:"async"`
	Transport string      `json:"transport" yaml:"transport" toml:"transport"`
	MemCallID int         `json:"mem_call_id" yaml:"mem_call_id" toml:"mem_call_id"`
}

// Transport is the run-wide transport decision.
type Transport struct {
	SharedMemory bool `json:"shared_memory" yaml:"shared_memory" toml:"shared_memory"`
	DirectCall   bool `json:"direct_call" yaml:"direct_call" toml:"direct_call"`
}
