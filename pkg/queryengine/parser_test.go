package queryengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlannerOutputStructuredQuery(t *testing.T) {
	raw := "```json\n" + `{"intent":"query","query":{"filter":[{"column":"product","op":"eq","value":"milk"}],"aggregate":{"op":"sum","column":"quantity"}}}` + "\n```"

	outcome, err := ParsePlannerOutput(raw)
	require.NoError(t, err)
	require.False(t, outcome.Conversational)
	require.NotNil(t, outcome.Query)
	assert.Equal(t, AggSum, outcome.Query.Aggregate.Op)
	assert.Equal(t, "milk", outcome.Query.Filter[0].Value)
}

func TestParsePlannerOutputSentinel(t *testing.T) {
	outcome, err := ParsePlannerOutput("  TEXT_RESPONSE\n")
	require.NoError(t, err)
	assert.True(t, outcome.Conversational)
}

func TestParsePlannerOutputSentinelInsideLiteralIsAQuery(t *testing.T) {
	raw := `{"intent":"query","query":{"filter":[{"column":"status","op":"eq","value":"text_response"}],"aggregate":{"op":"count"}}}`

	outcome, err := ParsePlannerOutput(raw)
	require.NoError(t, err)
	require.False(t, outcome.Conversational)
	require.NotNil(t, outcome.Query)
	assert.Equal(t, "text_response", outcome.Query.Filter[0].Value)
	assert.Equal(t, AggCount, outcome.Query.Aggregate.Op)
}

func TestParsePlannerOutputSentinelWithUndecodableBraces(t *testing.T) {
	outcome, err := ParsePlannerOutput("TEXT_RESPONSE {cannot express this as a query}")
	require.NoError(t, err)
	assert.True(t, outcome.Conversational)
}

func TestParsePlannerOutputConversationIntent(t *testing.T) {
	outcome, err := ParsePlannerOutput(`{"intent":"conversation"}`)
	require.NoError(t, err)
	assert.True(t, outcome.Conversational)
}

func TestParsePlannerOutputStripsLeadingProse(t *testing.T) {
	raw := `Sure, here is the query you asked for: {"intent":"query","query":{"aggregate":{"op":"count"}}}`

	outcome, err := ParsePlannerOutput(raw)
	require.NoError(t, err)
	require.NotNil(t, outcome.Query)
	assert.Equal(t, AggCount, outcome.Query.Aggregate.Op)
}

func TestParsePlannerOutputRejectsUnknownFields(t *testing.T) {
	_, err := ParsePlannerOutput(`{"intent":"query","query":{"eval":"df.sum()"}}`)
	assert.ErrorIs(t, err, ErrMalformedQuery)
}

func TestParsePlannerOutputRejectsUnknownOperator(t *testing.T) {
	_, err := ParsePlannerOutput(`{"intent":"query","query":{"filter":[{"column":"a","op":"regex","value":"x"}]}}`)
	assert.ErrorIs(t, err, ErrMalformedQuery)
}

func TestParsePlannerOutputRejectsProseOnly(t *testing.T) {
	_, err := ParsePlannerOutput("I cannot answer that question")
	assert.ErrorIs(t, err, ErrMalformedQuery)
}

func TestParsePlannerOutputRejectsMissingQuery(t *testing.T) {
	_, err := ParsePlannerOutput(`{"intent":"query"}`)
	assert.ErrorIs(t, err, ErrMalformedQuery)
}

func TestCheckGrammarRejections(t *testing.T) {
	cases := map[string]*QueryExpression{
		"group_by without aggregate": {GroupBy: "product"},
		"aggregate without column":   {Aggregate: &Aggregate{Op: AggSum}},
		"argmax with group_by":       {GroupBy: "product", Aggregate: &Aggregate{Op: AggArgMax, Column: "quantity"}},
		"sort with aggregate":        {Sort: &Sort{Column: "quantity"}, Aggregate: &Aggregate{Op: AggCount}},
		"negative limit":             {Limit: -1},
	}
	for name, expr := range cases {
		assert.ErrorIs(t, expr.CheckGrammar(), ErrMalformedQuery, name)
	}
}
