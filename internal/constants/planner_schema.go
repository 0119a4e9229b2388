package constants

import "github.com/google/generative-ai-go/genai"

// OpenAIPlannerResponseSchema constrains planner responses to the
// whitelisted query grammar: the model may only fill in the tagged
// expression tree, never free-form code
const OpenAIPlannerResponseSchema = `{
  "type": "object",
  "properties": {
    "intent": {
      "type": "string",
      "enum": ["query", "conversation"],
      "description": "query when the question is answerable from the dataset, conversation otherwise"
    },
    "query": {
      "type": "object",
      "properties": {
        "filter": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "column": {"type": "string"},
              "op": {"type": "string", "enum": ["eq", "neq", "gt", "gte", "lt", "lte", "contains"]},
              "value": {"type": "string"}
            },
            "required": ["column", "op", "value"],
            "additionalProperties": false
          }
        },
        "group_by": {"type": "string"},
        "aggregate": {
          "type": "object",
          "properties": {
            "op": {"type": "string", "enum": ["sum", "mean", "count", "distinct_count", "argmax", "argmin"]},
            "column": {"type": "string"}
          },
          "required": ["op"],
          "additionalProperties": false
        },
        "sort": {
          "type": "object",
          "properties": {
            "column": {"type": "string"},
            "descending": {"type": "boolean"}
          },
          "required": ["column"],
          "additionalProperties": false
        },
        "select": {"type": "array", "items": {"type": "string"}},
        "limit": {"type": "integer"}
      },
      "additionalProperties": false
    }
  },
  "required": ["intent"],
  "additionalProperties": false
}`

// GeminiPlannerResponseSchema is the same grammar expressed as a genai
// schema, built fresh per call site since the SDK mutates model state
func GeminiPlannerResponseSchema() *genai.Schema {
	compareOps := []string{"eq", "neq", "gt", "gte", "lt", "lte", "contains"}
	aggregateOps := []string{"sum", "mean", "count", "distinct_count", "argmax", "argmin"}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"intent": {
				Type: genai.TypeString,
				Enum: []string{"query", "conversation"},
			},
			"query": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"filter": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"column": {Type: genai.TypeString},
								"op":     {Type: genai.TypeString, Enum: compareOps},
								"value":  {Type: genai.TypeString},
							},
							Required: []string{"column", "op", "value"},
						},
					},
					"group_by": {Type: genai.TypeString},
					"aggregate": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"op":     {Type: genai.TypeString, Enum: aggregateOps},
							"column": {Type: genai.TypeString},
						},
						Required: []string{"op"},
					},
					"sort": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"column":     {Type: genai.TypeString},
							"descending": {Type: genai.TypeBoolean},
						},
						Required: []string{"column"},
					},
					"select": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
					"limit": {Type: genai.TypeInteger},
				},
			},
		},
		Required: []string{"intent"},
	}
}
