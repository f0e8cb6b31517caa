package emitter

import (
	"fmt"
	"io"
	"strings"

	"github.com/emicklei/dot"
	"github.com/vk/factorgrid/internal/catalog"
)

// View selects what part of the catalog a DOT graph shows.
type View int

const (
	// ViewComplete shows factors, class preparation functions, intermediate
	// functions and data sources.
	ViewComplete View = iota
	// ViewFactors shows factors and their factor dependencies only.
	ViewFactors
	// ViewClass shows the factors of one class and the dependencies among them.
	ViewClass
)

// ParseView converts a view name as used on the command line.
func ParseView(s string) (View, error) {
	switch strings.ToLower(s) {
	case "", "complete":
		return ViewComplete, nil
	case "factors", "simple":
		return ViewFactors, nil
	case "class":
		return ViewClass, nil
	default:
		return ViewComplete, fmt.Errorf("unknown graph view %q (expected complete, factors or class)", s)
	}
}

// DotOptions configures DOT rendering.
type DotOptions struct {
	View View
	// Class is required for ViewClass.
	Class string
	// Direction is the graph rank direction. Default: "LR".
	Direction string
}

const (
	colorDaily    = "#5470c6"
	colorIntraday = "#91cc75"
	colorPrepare  = "#fac858"
	colorMid      = "#73c0de"
	colorSource   = "#9a60b4"
)

// DOT writes the catalog's dependency graph in Graphviz format. Factor
// nodes are coloured by their declared frequency.
func DOT(w io.Writer, cat *catalog.Catalog, opts DotOptions) error {
	g, err := BuildGraph(cat, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, g.String())
	return err
}

// BuildGraph assembles the dependency graph of one view. Node IDs are
// "factor:<name>", "prep:<class>:<fn>", "mid:<fn>" and "source:<path>".
func BuildGraph(cat *catalog.Catalog, opts DotOptions) (*dot.Graph, error) {
	if opts.View == ViewClass {
		if opts.Class == "" {
			return nil, fmt.Errorf("class view requires a class name")
		}
		if !hasClass(cat, opts.Class) {
			return nil, fmt.Errorf("no factor belongs to class %q", opts.Class)
		}
	}
	dir := opts.Direction
	if dir == "" {
		dir = "LR"
	}

	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", dir)

	switch opts.View {
	case ViewClass:
		addFactorGraph(g, cat, func(f *catalog.FactorDefinition) bool { return f.Class == opts.Class })
	case ViewFactors:
		addFactorGraph(g, cat, func(*catalog.FactorDefinition) bool { return true })
	default:
		addCompleteGraph(g, cat)
	}
	return g, nil
}

func addFactorGraph(g *dot.Graph, cat *catalog.Catalog, include func(*catalog.FactorDefinition) bool) {
	shown := make(map[string]dot.Node)
	for _, f := range cat.Factors() {
		if include(f) {
			shown[f.Name] = addFactorNode(g, f)
		}
	}
	for _, f := range cat.Factors() {
		to, ok := shown[f.Name]
		if !ok {
			continue
		}
		for _, dep := range f.DependsOn.Factors {
			if from, ok := shown[dep]; ok {
				g.Edge(from, to).Attr("color", colorDaily).Attr("penwidth", "2")
			}
		}
	}
}

func addCompleteGraph(g *dot.Graph, cat *catalog.Catalog) {
	factors := make(map[string]dot.Node)
	for _, f := range cat.Factors() {
		factors[f.Name] = addFactorNode(g, f)
	}

	byClass := make(map[string][]string)
	var classOrder []string
	for _, f := range cat.Factors() {
		if _, seen := byClass[f.Class]; !seen {
			classOrder = append(classOrder, f.Class)
		}
		byClass[f.Class] = append(byClass[f.Class], f.Name)
	}
	for _, class := range classOrder {
		for _, fn := range cat.PrepareFuncs(class) {
			styled(g.Node(prepID(class, fn)), fn, "diamond", colorPrepare)
		}
	}
	for _, f := range cat.Factors() {
		for _, mid := range f.DependsOn.IntermediateFuncs {
			styled(g.Node(midID(mid)), mid, "triangle", colorMid)
		}
		for _, path := range f.DataPaths() {
			styled(g.Node(sourceID(path)), path, "cylinder", colorSource)
		}
	}

	for _, f := range cat.Factors() {
		for _, dep := range f.DependsOn.Factors {
			if from, ok := factors[dep]; ok {
				g.Edge(from, factors[f.Name]).Attr("color", colorDaily).Attr("penwidth", "2")
			}
		}
	}
	for _, class := range classOrder {
		for _, fn := range cat.PrepareFuncs(class) {
			prep := g.Node(prepID(class, fn))
			for _, name := range byClass[class] {
				g.Edge(prep, factors[name]).Attr("color", colorPrepare).Attr("style", "dashed")
			}
		}
	}
	for _, f := range cat.Factors() {
		for _, mid := range f.DependsOn.IntermediateFuncs {
			g.Edge(g.Node(midID(mid)), factors[f.Name]).Attr("color", colorMid).Attr("style", "dotted")
		}
		for _, path := range f.DataPaths() {
			g.Edge(g.Node(sourceID(path)), factors[f.Name]).Attr("color", colorSource).Attr("style", "dashed")
		}
	}
}

func addFactorNode(g *dot.Graph, f *catalog.FactorDefinition) dot.Node {
	color := colorDaily
	if f.Frequency == catalog.Intraday {
		color = colorIntraday
	}
	return styled(g.Node(factorID(f.Name)), f.Name, "box", color).
		Attr("tooltip", fmt.Sprintf("class: %s\nfrequency: %s", f.Class, f.Frequency))
}

func styled(n dot.Node, label, shape, color string) dot.Node {
	return n.Label(label).Attr("shape", shape).Attr("style", "filled").Attr("fillcolor", color)
}

func hasClass(cat *catalog.Catalog, class string) bool {
	for _, f := range cat.Factors() {
		if f.Class == class {
			return true
		}
	}
	return false
}

func factorID(name string) string { return "factor:" + name }
func midID(name string) string    { return "mid:" + name }
func sourceID(path string) string { return "source:" + path }
func prepID(class, fn string) string { return "prep:" + class + ":" + fn }
