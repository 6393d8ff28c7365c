package dc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlSchema mirrors the on-disk shape of a DC schema file.
type yamlSchema struct {
	Classes []yamlClass `yaml:"classes"`
}

type yamlClass struct {
	Handle uint16      `yaml:"handle"`
	Name   string      `yaml:"name"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	ID      uint16   `yaml:"id"`
	Name    string   `yaml:"name"`
	Flags   []string `yaml:"flags"`
	Default []byte   `yaml:"default"`
}

var flagNames = map[string]FieldFlags{
	"required":  FlagRequired,
	"ram":       FlagRAM,
	"db":        FlagDB,
	"broadcast": FlagBroadcast,
	"ownrecv":   FlagOwnRecv,
	"clrecv":    FlagClRecv,
	"airecv":    FlagAIRecv,
}

// LoadFile parses a single YAML-encoded DC schema file.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dc: reading schema file %s: %w", path, err)
	}
	return parse(data, path)
}

// LoadFiles parses multiple schema files and merges them into one Schema.
// Later files' classes override earlier ones with the same handle,
// matching the DC compiler's own last-definition-wins behavior for
// multi-file schemas.
func LoadFiles(paths []string) (*Schema, error) {
	merged := &Schema{Classes: make(map[uint16]*ClassDef)}
	for _, path := range paths {
		s, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		for handle, class := range s.Classes {
			merged.Classes[handle] = class
		}
	}
	return merged, nil
}

func parse(data []byte, path string) (*Schema, error) {
	var raw yamlSchema
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("dc: parsing schema file %s: %w", path, err)
	}

	classes := make([]*ClassDef, 0, len(raw.Classes))
	for _, rc := range raw.Classes {
		fields := make([]FieldDef, 0, len(rc.Fields))
		for _, rf := range rc.Fields {
			flags, err := parseFlags(rf.Flags)
			if err != nil {
				return nil, fmt.Errorf("dc: schema file %s, class %s field %s: %w", path, rc.Name, rf.Name, err)
			}
			fields = append(fields, FieldDef{
				ID:      rf.ID,
				Name:    rf.Name,
				Flags:   flags,
				Default: rf.Default,
			})
		}
		classes = append(classes, &ClassDef{
			Handle: rc.Handle,
			Name:   rc.Name,
			Fields: fields,
		})
	}

	return NewSchema(classes), nil
}

func parseFlags(names []string) (FieldFlags, error) {
	var flags FieldFlags
	for _, name := range names {
		flag, ok := flagNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown field flag %q", name)
		}
		flags |= flag
	}
	return flags, nil
}
