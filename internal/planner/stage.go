package planner

import (
	"github.com/vk/factorgrid/internal/catalog"
	"github.com/vk/factorgrid/internal/classify"
)

// Kind identifies the work a stage performs.
type Kind int

const (
	KindRead Kind = iota + 1
	KindJoin
	KindClassPrep
	KindIntermediateFunc
	KindCompute
	KindPersist
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "Read"
	case KindJoin:
		return "Join"
	case KindClassPrep:
		return "ClassPrep"
	case KindIntermediateFunc:
		return "IntermediateFunc"
	case KindCompute:
		return "Compute"
	case KindPersist:
		return "Persist"
	default:
		return "Unknown"
	}
}

// MarshalText renders the kind name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Kinds lists every stage kind in emission precedence.
var Kinds = []Kind{KindRead, KindJoin, KindClassPrep, KindIntermediateFunc, KindCompute, KindPersist}

// IndicatorRef names one indicator read from a data path and the physical
// column backing it.
type IndicatorRef struct {
	DataPath  string `json:"data_path"`
	Indicator string `json:"indicator"`
	Column    string `json:"column"`
}

// JoinKey pairs the columns of one key kind on both sides of a join. Left is
// the column on the first source of the group, Right on the joined source.
type JoinKey struct {
	Kind  string `json:"kind"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Stage is one step of an execution plan. Only the fields relevant to its
// Kind are set.
type Stage struct {
	Seq  int
	Kind Kind
	// Key identifies the stage uniquely within its plan.
	Key string

	// Group is the join-group key for every kind except Persist.
	Group string
	// Factor is set on IntermediateFunc and Compute stages.
	Factor string
	// Class is set on ClassPrep, IntermediateFunc and Compute stages.
	Class string
	// Function is set on ClassPrep, IntermediateFunc and Compute stages.
	Function string
	// Deps lists the direct factor dependencies of a Compute stage.
	Deps []string
	// Params are the factor's opaque parameters, set on Compute stages.
	Params map[string]any

	// DataPaths is the path read by a Read stage, the accumulated paths after
	// a Join stage, and the group tuple of a Compute stage.
	DataPaths []string
	// Indicators lists what a Read or Join stage brings in.
	Indicators []IndicatorRef
	// JoinKeys is set on Join stages.
	JoinKeys []JoinKey
	// Shape is the join shape of the stage's group.
	Shape classify.Shape

	// Bucket and Factors are set on Persist stages.
	Bucket  catalog.Frequency
	Factors []string
}
