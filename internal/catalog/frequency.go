package catalog

import (
	"fmt"
	"strings"
)

// Frequency is the sampling frequency of a data path or of a factor's output.
type Frequency int

const (
	FrequencyUnknown Frequency = iota
	Daily
	Intraday
)

// String returns the canonical tag of the frequency.
func (f Frequency) String() string {
	switch f {
	case Daily:
		return "daily"
	case Intraday:
		return "intraday"
	default:
		return "unknown"
	}
}

// MarshalText renders the canonical tag so plans serialize readably.
func (f Frequency) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseFrequency converts a configuration tag into a Frequency. owner names
// the definition carrying the tag and is only used for error reporting.
func ParseFrequency(owner, tag string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "daily", "day", "d":
		return Daily, nil
	case "intraday", "minute", "min", "m":
		return Intraday, nil
	default:
		return FrequencyUnknown, &InvalidFrequencyTagError{Value: tag, Owner: owner}
	}
}

// FunctionKind is the role a registered function plays in a plan.
type FunctionKind int

const (
	KindUnknown FunctionKind = iota
	KindCompute
	KindIntermediate
	KindPrepare
)

func (k FunctionKind) String() string {
	switch k {
	case KindCompute:
		return "compute"
	case KindIntermediate:
		return "intermediate"
	case KindPrepare:
		return "prepare"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind name.
func (k FunctionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseFunctionKind converts a manifest kind tag.
func ParseFunctionKind(tag string) (FunctionKind, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "compute":
		return KindCompute, nil
	case "intermediate", "mid", "util":
		return KindIntermediate, nil
	case "prepare", "prep", "class":
		return KindPrepare, nil
	default:
		return KindUnknown, fmt.Errorf("invalid function kind %q (expected compute, intermediate or prepare)", tag)
	}
}

// Signature tells an executor which arguments a function accepts, so calls
// are built from the declared tag rather than from the function's arity.
type Signature int

const (
	// SignatureNone functions receive only the prepared data.
	SignatureNone Signature = iota
	// SignatureName functions also receive the factor name.
	SignatureName
	// SignatureParams functions receive the factor name and its params.
	SignatureParams
)

func (s Signature) String() string {
	switch s {
	case SignatureName:
		return "name"
	case SignatureParams:
		return "params"
	default:
		return "none"
	}
}

// MarshalText renders the signature name.
func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSignature converts a manifest signature tag. An empty tag is SignatureNone.
func ParseSignature(tag string) (Signature, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "", "none":
		return SignatureNone, nil
	case "name":
		return SignatureName, nil
	case "params":
		return SignatureParams, nil
	default:
		return SignatureNone, fmt.Errorf("invalid function signature %q (expected none, name or params)", tag)
	}
}
