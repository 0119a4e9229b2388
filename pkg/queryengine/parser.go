package queryengine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ConversationalSentinel is the token the planner prompt instructs the model
// to emit when the question is not a data query
const ConversationalSentinel = "TEXT_RESPONSE"

// PlannerOutcome is either a structured query or the conversational sentinel
type PlannerOutcome struct {
	Conversational bool
	Query          *QueryExpression
}

// plannerResponse is the JSON envelope the planner prompt asks the model for
type plannerResponse struct {
	Intent string           `json:"intent"`
	Query  *QueryExpression `json:"query,omitempty"`
}

// ParsePlannerOutput turns raw model output into a PlannerOutcome. Code
// fences and surrounding whitespace are stripped; if the model prepends
// prose, only the suffix from the first recognizable token onward is taken.
// Anything that does not decode into the whitelisted grammar is rejected
// with ErrMalformedQuery and never executed.
func ParsePlannerOutput(text string) (*PlannerOutcome, error) {
	cleaned := stripFences(text)

	// Tie-break: drop explanatory prose before the first JSON object. The
	// sentinel is only consulted when no object decodes, so a query whose
	// string literals happen to contain the token is still executed.
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		if hasSentinel(cleaned) {
			return &PlannerOutcome{Conversational: true}, nil
		}
		return nil, fmt.Errorf("%w: no structured query in planner output", ErrMalformedQuery)
	}
	payload := cleaned[start : end+1]

	decoder := json.NewDecoder(bytes.NewReader([]byte(payload)))
	decoder.DisallowUnknownFields()

	var resp plannerResponse
	if err := decoder.Decode(&resp); err != nil {
		if hasSentinel(cleaned) {
			return &PlannerOutcome{Conversational: true}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuery, err)
	}

	switch resp.Intent {
	case "conversation":
		return &PlannerOutcome{Conversational: true}, nil
	case "query", "":
		if resp.Query == nil {
			return nil, fmt.Errorf("%w: missing query object", ErrMalformedQuery)
		}
		if err := resp.Query.CheckGrammar(); err != nil {
			return nil, err
		}
		return &PlannerOutcome{Query: resp.Query}, nil
	default:
		return nil, fmt.Errorf("%w: unknown intent %q", ErrMalformedQuery, resp.Intent)
	}
}

func hasSentinel(cleaned string) bool {
	return strings.Contains(strings.ToUpper(cleaned), ConversationalSentinel)
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
