package declnet

// NetworkDef is the YAML schema for a declaratively wired network.
type NetworkDef struct {
	// Name identifies the network and, when loaded via a Loader, the file
	// it was loaded from.
	Name string `yaml:"name" validate:"required"`
	// Includes lists other network definitions to compose in before this
	// definition's own Operations, resolved recursively.
	Includes []string `yaml:"includes,omitempty"`
	// Operations defines this network's own operation wirings.
	Operations []OperationDef `yaml:"operations" validate:"dive"`
}

// OperationDef wires one operation's name, needs, provides and flags to a
// Go body implementation looked up from a BodyRegistry by Component.
type OperationDef struct {
	// Name uniquely identifies the operation within the resolved network.
	Name string `yaml:"name" validate:"required"`
	// Component is the registry lookup key for the operation's body.
	Component string `yaml:"component" validate:"required"`
	// Needs lists the operation's input data wirings.
	Needs []NeedDef `yaml:"needs,omitempty" validate:"dive"`
	// Provides lists the operation's output data wirings.
	Provides []ProvideDef `yaml:"provides" validate:"required,dive"`
	// Endured marks the operation as non-fatal on failure.
	Endured bool `yaml:"endured,omitempty"`
	// Rescheduled marks the operation as tolerant of partial output.
	Rescheduled bool `yaml:"rescheduled,omitempty"`
	// Parallel allows this operation to run concurrently within its layer.
	Parallel bool `yaml:"parallel,omitempty"`
	// Marshalled requests input/output marshalling across worker boundaries.
	Marshalled bool `yaml:"marshalled,omitempty"`
}

// NeedDef describes one of an operation's needs.
type NeedDef struct {
	// Name is the data base name.
	Name string `yaml:"name" validate:"required"`
	// Modifier selects a non-plain dataname.Kind: "optional", "sideffect",
	// "implicit" or "keyword". Empty means plain.
	Modifier string `yaml:"modifier,omitempty" validate:"omitempty,oneof=optional sideffect implicit keyword"`
	// Keyword is the rename target, required when Modifier is "keyword".
	Keyword string `yaml:"keyword,omitempty"`
}

// ProvideDef describes one of an operation's provides.
type ProvideDef struct {
	// Name is the data base name.
	Name string `yaml:"name" validate:"required"`
	// Modifier selects a non-plain dataname.Kind: "optional", "sideffect"
	// or "aliased". Empty means plain.
	Modifier string `yaml:"modifier,omitempty" validate:"omitempty,oneof=optional sideffect aliased"`
	// Alias is the destination name, required when Modifier is "aliased".
	Alias string `yaml:"alias,omitempty"`
}
