package pvis

import "fmt"

// MissingChannelError reports a required channel argument that is absent from
// the resolved argument mapping.
type MissingChannelError struct {
	Function string
	Argument string
}

func (e *MissingChannelError) Error() string {
	return fmt.Sprintf("%s: required channel argument %q is missing", e.Function, e.Argument)
}

// UnknownFunctionError reports an algorithm name outside the registry.
type UnknownFunctionError struct {
	Kind string // "nighttime" or "vis"
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown %s function %q", e.Kind, e.Name)
}
