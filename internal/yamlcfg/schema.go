package yamlcfg

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// document is the top-level shape of a catalog file.
type document struct {
	Indicators []indicatorDoc `yaml:"indicators"`
	Classes    []classDoc     `yaml:"classes"`
	Functions  []functionDoc  `yaml:"functions"`
	Factors    []factorDoc    `yaml:"factors"`
}

type indicatorDoc struct {
	DataPath  string            `yaml:"data_path"`
	Frequency string            `yaml:"frequency"`
	Location  locationDoc       `yaml:"location"`
	Keys      keysDoc           `yaml:"keys"`
	Columns   map[string]string `yaml:"columns"`
}

type locationDoc struct {
	Namespace string `yaml:"namespace"`
	Table     string `yaml:"table"`
}

type keysDoc struct {
	Symbol string `yaml:"symbol"`
	Date   string `yaml:"date"`
	Time   string `yaml:"time"`
}

type classDoc struct {
	Name    string   `yaml:"name"`
	Prepare []string `yaml:"prepare"`
}

type functionDoc struct {
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"`
	Signature   string `yaml:"signature"`
	Description string `yaml:"description"`
}

type factorDoc struct {
	Name      string         `yaml:"name"`
	Class     string         `yaml:"class"`
	Compute   string         `yaml:"compute"`
	Frequency string         `yaml:"frequency"`
	DependsOn dependsOnDoc   `yaml:"depends_on"`
	Sources   []sourceDoc    `yaml:"sources"`
	Params    map[string]any `yaml:"params"`
}

type dependsOnDoc struct {
	Factors      stringList `yaml:"factors"`
	Intermediate stringList `yaml:"intermediate"`
}

// stringList accepts a list of strings, a single string, or null.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.ShortTag() == "!!null" || value.Value == "" {
			*l = nil
			return nil
		}
		if value.ShortTag() != "!!str" {
			return fmt.Errorf("line %d: expected a name or a list of names, got %s", value.Line, value.ShortTag())
		}
		*l = stringList{value.Value}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		*l = names
		return nil
	default:
		return fmt.Errorf("line %d: expected a name or a list of names", value.Line)
	}
}

type sourceDoc struct {
	DataPath   string   `yaml:"data_path"`
	Indicators []string `yaml:"indicators"`
}
