package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes all possible top-level blocks of a catalog file. Any other
// block or attribute is rejected by the decoder.
type fileRoot struct {
	Indicators []*indicatorBlock `hcl:"indicator,block"`
	Classes    []*classBlock     `hcl:"class,block"`
	Functions  []*functionBlock  `hcl:"function,block"`
	Factors    []*factorBlock    `hcl:"factor,block"`
}

type indicatorBlock struct {
	DataPath  string            `hcl:"data_path,label"`
	Frequency string            `hcl:"frequency"`
	Location  *locationBlock    `hcl:"location,block"`
	Keys      *keysBlock        `hcl:"keys,block"`
	Columns   map[string]string `hcl:"columns"`
}

type locationBlock struct {
	Namespace string `hcl:"namespace,optional"`
	Table     string `hcl:"table,optional"`
}

type keysBlock struct {
	Symbol string `hcl:"symbol,optional"`
	Date   string `hcl:"date,optional"`
	Time   string `hcl:"time,optional"`
}

type classBlock struct {
	Name    string   `hcl:"name,label"`
	Prepare []string `hcl:"prepare,optional"`
}

type functionBlock struct {
	Name        string `hcl:"name,label"`
	Kind        string `hcl:"kind"`
	Signature   string `hcl:"signature,optional"`
	Description string `hcl:"description,optional"`
}

type factorBlock struct {
	Name      string          `hcl:"name,label"`
	Class     string          `hcl:"class"`
	Compute   string          `hcl:"compute"`
	Frequency string          `hcl:"frequency"`
	DependsOn *dependsOnBlock `hcl:"depends_on,block"`
	Sources   []*sourceBlock  `hcl:"source,block"`
	Params    hcl.Expression  `hcl:"params,optional"`
}

type dependsOnBlock struct {
	Factors      []string `hcl:"factors,optional"`
	Intermediate []string `hcl:"intermediate,optional"`
}

type sourceBlock struct {
	DataPath   string   `hcl:"data_path,label"`
	Indicators []string `hcl:"indicators,optional"`
}
