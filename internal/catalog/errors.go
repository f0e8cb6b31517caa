package catalog

import (
	"fmt"
	"strings"
)

// DependencyCycleError reports a cyclic factor dependency. Path lists the
// factors along the cycle and repeats the first one at the end.
type DependencyCycleError struct {
	Path []string
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Path, " -> "))
}

// UnknownFactorReferenceError reports a factor name that is not in the catalog.
// ReferencedBy is empty when the name came from the requested set.
type UnknownFactorReferenceError struct {
	Name         string
	ReferencedBy string
}

func (e *UnknownFactorReferenceError) Error() string {
	if e.ReferencedBy == "" {
		return fmt.Sprintf("unknown factor %q", e.Name)
	}
	return fmt.Sprintf("factor %q depends on unknown factor %q", e.ReferencedBy, e.Name)
}

// UnknownFunctionReferenceError reports a compute, intermediate or
// preparation function that the function registry does not declare.
type UnknownFunctionReferenceError struct {
	Name   string
	Kind   FunctionKind
	Factor string
}

func (e *UnknownFunctionReferenceError) Error() string {
	if e.Factor == "" {
		return fmt.Sprintf("unknown %s function %q", e.Kind, e.Name)
	}
	return fmt.Sprintf("factor %q references unknown %s function %q", e.Factor, e.Kind, e.Name)
}

// MissingIndicatorMappingError reports an indicator name with no column
// mapping in the indicator catalog entry of its data path.
type MissingIndicatorMappingError struct {
	DataPath  string
	Indicator string
	Factor    string
}

func (e *MissingIndicatorMappingError) Error() string {
	return fmt.Sprintf("factor %q reads indicator %q from data path %q, which has no column mapping for it", e.Factor, e.Indicator, e.DataPath)
}

// InvalidFrequencyTagError reports a frequency tag outside the known set.
type InvalidFrequencyTagError struct {
	Value string
	Owner string
}

func (e *InvalidFrequencyTagError) Error() string {
	if e.Owner == "" {
		return fmt.Sprintf("invalid frequency tag %q (expected daily or intraday)", e.Value)
	}
	return fmt.Sprintf("%s: invalid frequency tag %q (expected daily or intraday)", e.Owner, e.Value)
}

// MissingDataPathError reports a resolved data path that has no entry in the
// indicator catalog.
type MissingDataPathError struct {
	Factor   string
	DataPath string
}

func (e *MissingDataPathError) Error() string {
	if e.Factor == "" {
		return fmt.Sprintf("data path %q is not in the indicator catalog", e.DataPath)
	}
	return fmt.Sprintf("factor %q resolves data path %q, which is not in the indicator catalog", e.Factor, e.DataPath)
}

// JoinKeyError reports a data path that cannot be joined onto the first
// source of its join-group because the two share no key column kind.
type JoinKeyError struct {
	Group string
	Left  string
	Right string
}

func (e *JoinKeyError) Error() string {
	return fmt.Sprintf("join group %s: data path %q shares no join key with %q", e.Group, e.Right, e.Left)
}
