package conversation

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// resolvedSchema is what decodeSegment needs from a compiled schema
type resolvedSchema interface {
	Validate(instance any) error
}

// Segment schemas stay loose on purpose: they reject payloads of the wrong
// shape (the MalformedSegment case) but carry no required fields, so a
// partial payload surfaces with zero values instead of being discarded.
// Emptiness is handled downstream where it matters.
var (
	stateSchema = mustResolve(&jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"complexityLoad":   {Type: "number"},
			"contextAlignment": {Type: "number"},
			"activeZone":       {Type: "string"},
			"creativeMode":     {Type: "string"},
			"resonanceLevel":   {Type: "string"},
			"valueTension":     {Type: "string"},
		},
	})

	proposalSchema = mustResolve(&jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name":                {Type: "string"},
			"description":         {Type: "string"},
			"logic":               {Type: "string"},
			"instructionModifier": {Type: "string"},
		},
	})

	nexusSchema = mustResolve(&jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"content":  {Type: "string"},
			"category": {Type: "string"},
		},
	})
)

func mustResolve(s *jsonschema.Schema) *jsonschema.Resolved {
	resolved, err := s.Resolve(nil)
	if err != nil {
		panic(err)
	}
	return resolved
}
