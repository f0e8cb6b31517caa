package emitter

import (
	"encoding/json"
	"io"

	"github.com/vk/factorgrid/internal/planner"
)

type planDoc struct {
	Requested []string   `json:"requested"`
	Universe  []string   `json:"universe"`
	Groups    []groupDoc `json:"groups"`
	Stages    []stageDoc `json:"stages"`
}

type groupDoc struct {
	Key       string   `json:"key"`
	DataPaths []string `json:"data_paths"`
	Members   []string `json:"members"`
	Shape     string   `json:"shape"`
}

type stageDoc struct {
	Seq        int                    `json:"seq"`
	Kind       string                 `json:"kind"`
	Key        string                 `json:"key"`
	Group      string                 `json:"group,omitempty"`
	Factor     string                 `json:"factor,omitempty"`
	Class      string                 `json:"class,omitempty"`
	Function   string                 `json:"function,omitempty"`
	Deps       []string               `json:"deps,omitempty"`
	Params     map[string]any         `json:"params,omitempty"`
	DataPaths  []string               `json:"data_paths,omitempty"`
	Indicators []planner.IndicatorRef `json:"indicators,omitempty"`
	JoinKeys   []planner.JoinKey      `json:"join_keys,omitempty"`
	Shape      string                 `json:"shape,omitempty"`
	Bucket     string                 `json:"bucket,omitempty"`
	Factors    []string               `json:"factors,omitempty"`
}

// JSON writes the plan as indented JSON: the requested set, the universe,
// the join-groups and the stage list.
func JSON(w io.Writer, plan *planner.Plan) error {
	doc := planDoc{
		Requested: nonNil(plan.Requested),
		Universe:  nonNil(plan.Universe),
		Groups:    make([]groupDoc, 0, len(plan.Groups)),
		Stages:    make([]stageDoc, 0, len(plan.Stages)),
	}
	for _, g := range plan.Groups {
		doc.Groups = append(doc.Groups, groupDoc{
			Key:       g.Key,
			DataPaths: nonNil(g.DataPaths),
			Members:   nonNil(g.Members),
			Shape:     g.Shape.String(),
		})
	}
	for _, s := range plan.Stages {
		sd := stageDoc{
			Seq:        s.Seq,
			Kind:       s.Kind.String(),
			Key:        s.Key,
			Group:      s.Group,
			Factor:     s.Factor,
			Class:      s.Class,
			Function:   s.Function,
			Deps:       s.Deps,
			Params:     s.Params,
			DataPaths:  s.DataPaths,
			Indicators: s.Indicators,
			JoinKeys:   s.JoinKeys,
			Factors:    s.Factors,
		}
		if s.Kind == planner.KindPersist {
			sd.Bucket = s.Bucket.String()
		} else {
			sd.Shape = s.Shape.String()
		}
		doc.Stages = append(doc.Stages, sd)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
