package yaml

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaGenerator reflects a Go configuration type into a JSON schema
// document suitable for embedding and for editor integration.
type SchemaGenerator struct {
	reflector *jsonschema.Reflector
	root      any
	id        string
}

// NewSchemaGenerator creates a generator for the given root object.
// Doc comments from the module rooted at basePkg are folded into the
// schema descriptions.
func NewSchemaGenerator(root any, id, basePkg string) (*SchemaGenerator, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
	}

	err := r.AddGoComments(basePkg, "./")
	if err != nil {
		return nil, fmt.Errorf("add comments for %s: %w", basePkg, err)
	}

	return &SchemaGenerator{
		reflector: r,
		root:      root,
		id:        id,
	}, nil
}

// Generate returns the indented JSON schema document.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	jss := g.reflector.Reflect(g.root)
	jss.ID = jsonschema.ID(g.id)

	data, err := json.MarshalIndent(jss, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(data, '\n'), nil
}
