package writebinary

import (
	"reflect"

	"github.com/c360/binfile/component"
	"github.com/c360/binfile/errors"
	"github.com/c360/binfile/pathquery"
)

// TargetConfig is the JSON form of a Target. Exactly one field must be set.
type TargetConfig struct {
	Value      string `json:"value,omitempty"`
	Expression string `json:"expression,omitempty"`
}

// Config holds configuration for the write binary file processor
type Config struct {
	Ports *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`

	BinaryElementPath string `json:"binary_element_path,omitempty" schema:"type:string,description:XPath selecting the node holding the base64 payload,category:basic"`

	Namespaces map[string]string `json:"namespaces,omitempty" schema:"type:object,description:Namespace prefix bindings shared by all queries,category:advanced"`

	TargetDirectory *TargetConfig `json:"target_directory,omitempty" schema:"type:object,description:Output directory as a value or an expression,category:basic"`
	TargetFileName  *TargetConfig `json:"target_file_name,omitempty" schema:"type:object,description:Output file name as a value or an expression,category:basic"`

	ForceUniqueFileName *bool `json:"force_unique_file_name,omitempty" schema:"type:bool,description:Prefix file names with the message id,default:false,category:advanced"`
	AllowOverwrite      *bool `json:"allow_overwrite,omitempty"        schema:"type:bool,description:Replace files that already exist,default:true,category:advanced"`

	// Definition holds the declarative XML form. It replaces every field above
	// except Ports.
	Definition string `json:"definition,omitempty" schema:"type:string,description:Declarative writeBinaryFile XML block,category:advanced"`
}

// DefaultConfig returns the default configuration for the write binary file processor
func DefaultConfig() Config {
	inputDefs := []component.PortDefinition{
		{
			Name:        "nats_input",
			Type:        "nats",
			Subject:     "binfile.documents",
			Interface:   "core.xml.v1",
			Required:    true,
			Description: "XML documents carrying an embedded base64 payload",
		},
	}

	outputDefs := []component.PortDefinition{
		{
			Name:        "nats_output",
			Type:        "nats",
			Subject:     "binfile.written",
			Interface:   "core.xml.v1",
			Required:    false,
			Description: "Rewritten documents referencing the written file",
		},
	}

	return Config{
		Ports: &component.PortConfig{
			Inputs:  inputDefs,
			Outputs: outputDefs,
		},
	}
}

// writeBinarySchema defines the configuration schema for the write binary file processor
var writeBinarySchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Settings compiles the configuration. All queries are checked for syntax here so
// malformed XPath never reaches a document.
func (c Config) Settings() (Settings, error) {
	if c.Definition != "" {
		if c.hasFields() {
			return Settings{}, errors.WrapInvalid(
				errors.Detail(errors.ErrInvalidConfig, "definition cannot be combined with individual settings"),
				"Config", "Settings", "check definition")
		}
		return ParseDefinitionString(c.Definition)
	}

	var s Settings
	if c.BinaryElementPath == "" {
		return Settings{}, missingSetting("binaryElementXPath")
	}
	q, err := pathquery.Compile(c.BinaryElementPath, c.Namespaces)
	if err != nil {
		return Settings{}, err
	}
	s.BinaryElementPath = q

	if s.TargetDirectory, err = c.TargetDirectory.target(c.Namespaces, "targetDirectory"); err != nil {
		return Settings{}, err
	}
	if s.TargetFileName, err = c.TargetFileName.target(c.Namespaces, "targetFileName"); err != nil {
		return Settings{}, err
	}

	s.ForceUniqueFileName = c.ForceUniqueFileName
	s.AllowOverwrite = c.AllowOverwrite

	return s, s.Validate()
}

// Validate checks the configuration without keeping the compiled result.
func (c Config) Validate() error {
	_, err := c.Settings()
	return err
}

func (c Config) hasFields() bool {
	return c.BinaryElementPath != "" || len(c.Namespaces) > 0 ||
		c.TargetDirectory != nil || c.TargetFileName != nil ||
		c.ForceUniqueFileName != nil || c.AllowOverwrite != nil
}

func (t *TargetConfig) target(namespaces map[string]string, setting string) (Target, error) {
	if t == nil || (t.Value == "" && t.Expression == "") {
		return nil, missingSetting(setting)
	}
	if t.Value != "" && t.Expression != "" {
		return nil, errors.WrapInvalid(
			errors.Detail(errors.ErrInvalidConfig, "%s takes either a value or an expression, not both", setting),
			"Config", "Settings", "check "+setting)
	}
	if t.Value != "" {
		return Literal(t.Value), nil
	}

	q, err := pathquery.Compile(t.Expression, namespaces)
	if err != nil {
		return nil, err
	}
	return Dynamic{Query: q}, nil
}
