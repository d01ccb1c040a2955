package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func contextWithPrev(t *testing.T, output interface{}) *ExecutionContext {
	t.Helper()
	ctx := NewExecutionContext(nil)
	ctx.RecordStep("getUser", output)
	return ctx
}

func TestSubstitutePrevInjectsWholeSerializedOutput(t *testing.T) {
	ctx := contextWithPrev(t, map[string]interface{}{"id": float64(7)})

	got := Substitute("/posts?userId=$prev.id", ctx)

	// The accessor chain is consumed but the whole output is injected.
	assert.Equal(t, `/posts?userId={"id":7}`, got)
}

func TestSubstitutePrevWithoutAccessor(t *testing.T) {
	ctx := contextWithPrev(t, map[string]interface{}{"id": float64(7)})

	got := Substitute("/posts?userId=$prev", ctx)
	assert.Equal(t, `/posts?userId={"id":7}`, got)
}

func TestSubstitutePrevNoPreviousOutputLeavesMarker(t *testing.T) {
	ctx := NewExecutionContext(nil)

	got := Substitute("/posts?userId=$prev.id", ctx)
	assert.Equal(t, "/posts?userId=$prev.id", got)
}

func TestSubstituteNamedStep(t *testing.T) {
	ctx := NewExecutionContext(nil)
	ctx.RecordStep("login", map[string]interface{}{"token": "abc"})
	ctx.RecordStep("profile", map[string]interface{}{"name": "alice"})

	got := Substitute("session=$steps.login", ctx)
	assert.Equal(t, `session={"token":"abc"}`, got)
}

func TestSubstituteNamedStepAccessorConsumed(t *testing.T) {
	ctx := NewExecutionContext(nil)
	ctx.RecordStep("login", map[string]interface{}{"token": "abc"})

	got := Substitute("session=$steps.login.token", ctx)
	assert.Equal(t, `session={"token":"abc"}`, got)
}

func TestSubstituteUnknownStepLeavesMarker(t *testing.T) {
	ctx := NewExecutionContext(nil)
	ctx.RecordStep("login", "ok")

	got := Substitute("$steps.logout", ctx)
	assert.Equal(t, "$steps.logout", got)
}

func TestSubstituteInputStringFieldIsRawText(t *testing.T) {
	ctx := NewExecutionContext(map[string]interface{}{"username": "alice"})

	got := Substitute("/users/$input.username", ctx)
	assert.Equal(t, "/users/alice", got)
}

func TestSubstituteInputNonStringFieldIsJSON(t *testing.T) {
	ctx := NewExecutionContext(map[string]interface{}{
		"limit":  float64(10),
		"filter": map[string]interface{}{"active": true},
	})

	assert.Equal(t, "?limit=10", Substitute("?limit=$input.limit", ctx))
	assert.Equal(t, map[string]interface{}{"active": true}, Substitute("$input.filter", ctx))
}

func TestSubstituteInputLongerFieldWins(t *testing.T) {
	ctx := NewExecutionContext(map[string]interface{}{
		"user":   "bob",
		"userId": float64(4),
	})

	got := Substitute("/posts?userId=$input.userId&author=$input.user", ctx)
	assert.Equal(t, "/posts?userId=4&author=bob", got)
}

func TestSubstituteReparsesJSONLookingResult(t *testing.T) {
	ctx := contextWithPrev(t, map[string]interface{}{"id": float64(7)})

	got := Substitute("$prev", ctx)
	assert.Equal(t, map[string]interface{}{"id": float64(7)}, got)
}

func TestSubstituteMalformedJSONDegradesToString(t *testing.T) {
	ctx := NewExecutionContext(map[string]interface{}{"rest": `"id": }`})

	got := Substitute("{$input.rest", ctx)
	assert.Equal(t, `{"id": }`, got)
}

func TestSubstituteNoMarkersReturnsValueUnchanged(t *testing.T) {
	ctx := contextWithPrev(t, map[string]interface{}{"id": float64(7)})

	assert.Equal(t, "/users/1", Substitute("/users/1", ctx))
	assert.Equal(t, float64(42), Substitute(float64(42), ctx))
	assert.Equal(t, true, Substitute(true, ctx))
	assert.Nil(t, Substitute(nil, ctx))
	// A JSON-looking string without markers is never re-parsed.
	assert.Equal(t, `{"raw": "text"}`, Substitute(`{"raw": "text"}`, ctx))
}

func TestSubstituteRecursesIntoMapsAndArrays(t *testing.T) {
	ctx := NewExecutionContext(map[string]interface{}{"name": "alice"})
	ctx.RecordStep("getUser", map[string]interface{}{"id": float64(7)})

	value := map[string]interface{}{
		"user": "$input.name",
		"refs": []interface{}{"$prev", "static"},
		"nested": map[string]interface{}{
			"query": "id=$prev",
		},
	}

	got := Substitute(value, ctx)
	assert.Equal(t, map[string]interface{}{
		"user": "alice",
		"refs": []interface{}{map[string]interface{}{"id": float64(7)}, "static"},
		"nested": map[string]interface{}{
			"query": `id={"id":7}`,
		},
	}, got)
}

func TestSubstituteStringPreviousOutput(t *testing.T) {
	ctx := contextWithPrev(t, "plain text")

	// Strings serialize to their JSON form, quotes included.
	got := Substitute("value=$prev", ctx)
	assert.Equal(t, `value="plain text"`, got)
}

func TestAsText(t *testing.T) {
	assert.Equal(t, "hello", AsText("hello"))
	assert.Equal(t, "7", AsText(float64(7)))
	assert.Equal(t, `{"id":7}`, AsText(map[string]interface{}{"id": float64(7)}))
	assert.Equal(t, "null", AsText(nil))
}
