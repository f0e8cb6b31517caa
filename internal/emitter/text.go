package emitter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vk/factorgrid/internal/planner"
)

// Text writes one line per stage: sequence, kind, key and the kind-specific
// details.
func Text(w io.Writer, plan *planner.Plan) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range plan.Stages {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Seq, s.Kind, s.Key, details(s)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func details(s planner.Stage) string {
	switch s.Kind {
	case planner.KindRead:
		return fmt.Sprintf("path=%s shape=%s indicators=%s", strings.Join(s.DataPaths, ","), s.Shape, indicatorList(s.Indicators))
	case planner.KindJoin:
		keys := make([]string, 0, len(s.JoinKeys))
		for _, k := range s.JoinKeys {
			keys = append(keys, fmt.Sprintf("%s:%s=%s", k.Kind, k.Left, k.Right))
		}
		return fmt.Sprintf("paths=%s on=%s indicators=%s", strings.Join(s.DataPaths, ","), strings.Join(keys, ","), indicatorList(s.Indicators))
	case planner.KindClassPrep:
		return fmt.Sprintf("class=%s fn=%s", s.Class, s.Function)
	case planner.KindIntermediateFunc:
		return fmt.Sprintf("factor=%s fn=%s", s.Factor, s.Function)
	case planner.KindCompute:
		line := fmt.Sprintf("factor=%s class=%s fn=%s group=%s shape=%s", s.Factor, s.Class, s.Function, s.Group, s.Shape)
		if len(s.Deps) > 0 {
			line += " deps=" + strings.Join(s.Deps, ",")
		}
		return line
	case planner.KindPersist:
		return fmt.Sprintf("bucket=%s factors=%s", s.Bucket, strings.Join(s.Factors, ","))
	}
	return ""
}

func indicatorList(refs []planner.IndicatorRef) string {
	if len(refs) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.Column == r.Indicator {
			parts = append(parts, r.Indicator)
		} else {
			parts = append(parts, r.Indicator+"="+r.Column)
		}
	}
	return strings.Join(parts, ",")
}
