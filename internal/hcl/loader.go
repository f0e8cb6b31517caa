package hcl

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/factorgrid/internal/catalog"
	"github.com/vk/factorgrid/internal/ctxlog"
	"github.com/vk/factorgrid/internal/fsutil"
)

// Extensions lists the file extensions this loader reads.
var Extensions = []string{".hcl"}

// Loader is the HCL-specific implementation of the catalog.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL catalog loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ catalog.Loader = (*Loader)(nil)

// Load discovers every .hcl file under paths, in lexical order per path, and
// translates all blocks into one catalog.
func (l *Loader) Load(ctx context.Context, paths ...string) (*catalog.Catalog, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, Extensions...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	cat := catalog.New()
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read HCL file %s: %w", file, err)
		}
		if err := l.parseInto(ctx, parser, cat, file, src); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.",
		"factors", cat.Len(),
		"indicators", len(cat.Indicators()),
		"classes", len(cat.Classes()),
		"functions", len(cat.Functions()))
	return cat, nil
}

// ParseFile parses one HCL source and appends its definitions to cat.
func (l *Loader) ParseFile(ctx context.Context, cat *catalog.Catalog, filename string, src []byte) error {
	return l.parseInto(ctx, hclparse.NewParser(), cat, filename, src)
}

// parseInto parses one file and appends its definitions to cat.
func (l *Loader) parseInto(ctx context.Context, parser *hclparse.Parser, cat *catalog.Catalog, filename string, src []byte) error {
	logger := ctxlog.FromContext(ctx)

	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	var errs []error
	for _, b := range root.Indicators {
		def, err := translateIndicator(b, filename)
		if err == nil {
			err = cat.AddIndicator(def)
		}
		errs = append(errs, err)
	}
	for _, b := range root.Classes {
		errs = append(errs, cat.AddClass(&catalog.ClassDefinition{Name: b.Name, Prepare: b.Prepare, Origin: filename}))
	}
	for _, b := range root.Functions {
		def, err := translateFunction(b, filename)
		if err == nil {
			err = cat.AddFunction(def)
		}
		errs = append(errs, err)
	}
	for _, b := range root.Factors {
		def, err := translateFactor(b, filename)
		if err == nil {
			err = cat.AddFactor(def)
		}
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid definitions in %s: %w", filename, err)
	}

	logger.Debug("Successfully loaded definitions from HCL file", "file", filename,
		"factors", len(root.Factors), "indicators", len(root.Indicators))
	return nil
}

func translateIndicator(b *indicatorBlock, origin string) (*catalog.IndicatorDefinition, error) {
	owner := fmt.Sprintf("indicator %q", b.DataPath)
	freq, err := catalog.ParseFrequency(owner, b.Frequency)
	if err != nil {
		return nil, err
	}
	def := &catalog.IndicatorDefinition{
		DataPath:  b.DataPath,
		Frequency: freq,
		Columns:   b.Columns,
		Origin:    origin,
	}
	if b.Location != nil {
		def.Location = catalog.Location{Namespace: b.Location.Namespace, Table: b.Location.Table}
	}
	if b.Keys != nil {
		def.Keys = catalog.Keys{Symbol: b.Keys.Symbol, Date: b.Keys.Date, Time: b.Keys.Time}
	}
	return def, nil
}

func translateFunction(b *functionBlock, origin string) (*catalog.FunctionDefinition, error) {
	kind, err := catalog.ParseFunctionKind(b.Kind)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", b.Name, err)
	}
	sig, err := catalog.ParseSignature(b.Signature)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", b.Name, err)
	}
	return &catalog.FunctionDefinition{
		Name:      b.Name,
		Kind:      kind,
		Signature: sig,
		Doc:       b.Description,
		Origin:    origin,
	}, nil
}

func translateFactor(b *factorBlock, origin string) (*catalog.FactorDefinition, error) {
	owner := fmt.Sprintf("factor %q", b.Name)
	freq, err := catalog.ParseFrequency(owner, b.Frequency)
	if err != nil {
		return nil, err
	}

	def := &catalog.FactorDefinition{
		Name:        b.Name,
		Class:       b.Class,
		ComputeFunc: b.Compute,
		Frequency:   freq,
		Origin:      origin,
	}
	if b.DependsOn != nil {
		def.DependsOn = catalog.Dependencies{
			Factors:           b.DependsOn.Factors,
			IntermediateFuncs: b.DependsOn.Intermediate,
		}
	}
	for _, s := range b.Sources {
		def.Sources = append(def.Sources, catalog.Source{DataPath: s.DataPath, Indicators: s.Indicators})
	}

	if b.Params != nil {
		val, diags := b.Params.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%s: evaluating params: %w", owner, diags)
		}
		params, err := paramsFromValue(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", owner, err)
		}
		def.Params = params
	}
	return def, nil
}
