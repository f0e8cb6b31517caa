package yamlcfg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/factorgrid/internal/catalog"
	"github.com/vk/factorgrid/internal/ctxlog"
	"github.com/vk/factorgrid/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions this loader reads.
var Extensions = []string{".yaml", ".yml", ".json"}

// Loader reads catalog definitions from YAML and JSON files.
type Loader struct{}

// NewLoader creates a new YAML catalog loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ catalog.Loader = (*Loader)(nil)

// Load discovers every YAML or JSON file under paths and translates all
// documents into one catalog.
func (l *Loader) Load(ctx context.Context, paths ...string) (*catalog.Catalog, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.CollectFiles(paths, Extensions...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	cat := catalog.New()
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file %s: %w", file, err)
		}
		if err := parseInto(cat, file, src); err != nil {
			return nil, err
		}
		logger.Debug("Successfully loaded definitions from YAML file", "file", file)
	}
	return cat, nil
}

// ParseFile decodes one YAML or JSON source and appends its definitions to cat.
func (l *Loader) ParseFile(ctx context.Context, cat *catalog.Catalog, filename string, src []byte) error {
	if err := parseInto(cat, filename, src); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Successfully loaded definitions from YAML file", "file", filename)
	return nil
}

// parseInto decodes every document of one file. Unknown fields are rejected.
func parseInto(cat *catalog.Catalog, filename string, src []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	for {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to decode catalog file %s: %w", filename, err)
		}
		if err := addDocument(cat, filename, &doc); err != nil {
			return fmt.Errorf("invalid definitions in %s: %w", filename, err)
		}
	}
}

func addDocument(cat *catalog.Catalog, origin string, doc *document) error {
	var errs []error
	for _, d := range doc.Indicators {
		freq, err := catalog.ParseFrequency(fmt.Sprintf("indicator %q", d.DataPath), d.Frequency)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		errs = append(errs, cat.AddIndicator(&catalog.IndicatorDefinition{
			DataPath:  d.DataPath,
			Frequency: freq,
			Location:  catalog.Location{Namespace: d.Location.Namespace, Table: d.Location.Table},
			Keys:      catalog.Keys{Symbol: d.Keys.Symbol, Date: d.Keys.Date, Time: d.Keys.Time},
			Columns:   d.Columns,
			Origin:    origin,
		}))
	}
	for _, d := range doc.Classes {
		errs = append(errs, cat.AddClass(&catalog.ClassDefinition{Name: d.Name, Prepare: d.Prepare, Origin: origin}))
	}
	for _, d := range doc.Functions {
		kind, err := catalog.ParseFunctionKind(d.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("function %q: %w", d.Name, err))
			continue
		}
		sig, err := catalog.ParseSignature(d.Signature)
		if err != nil {
			errs = append(errs, fmt.Errorf("function %q: %w", d.Name, err))
			continue
		}
		errs = append(errs, cat.AddFunction(&catalog.FunctionDefinition{
			Name:      d.Name,
			Kind:      kind,
			Signature: sig,
			Doc:       d.Description,
			Origin:    origin,
		}))
	}
	for _, d := range doc.Factors {
		freq, err := catalog.ParseFrequency(fmt.Sprintf("factor %q", d.Name), d.Frequency)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		def := &catalog.FactorDefinition{
			Name:        d.Name,
			Class:       d.Class,
			ComputeFunc: d.Compute,
			Frequency:   freq,
			DependsOn: catalog.Dependencies{
				Factors:           d.DependsOn.Factors,
				IntermediateFuncs: d.DependsOn.Intermediate,
			},
			Params: normalizeParams(d.Params),
			Origin: origin,
		}
		for _, s := range d.Sources {
			def.Sources = append(def.Sources, catalog.Source{DataPath: s.DataPath, Indicators: s.Indicators})
		}
		errs = append(errs, cat.AddFactor(def))
	}
	return errors.Join(errs...)
}

// normalizeParams converts integer scalars to float64 so that params decoded
// from YAML look the same as params decoded from HCL.
func normalizeParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case map[string]any:
		return normalizeParams(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
