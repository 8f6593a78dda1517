package bloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidComponentName(t *testing.T) {
	assert.True(t, isValidComponentName("my-widget"))
	assert.False(t, isValidComponentName(""))
	assert.False(t, isValidComponentName("div"))
	assert.False(t, isValidComponentName("MyWidget"), "must be lowercase")
	assert.False(t, isValidComponentName("widget"), "must contain a hyphen")
	assert.False(t, isValidComponentName("my_widget"), "underscore is not a valid custom-element char")
}

func TestIsReservedKey(t *testing.T) {
	assert.True(t, isReservedKey("_internal"))
	assert.True(t, isReservedKey("$emit"))
	assert.False(t, isReservedKey("count"))
}

func TestArrayMutatorMethods_ListsAllSeven(t *testing.T) {
	assert.ElementsMatch(t, []string{"push", "pop", "shift", "unshift", "splice", "sort", "reverse"}, ArrayMutatorMethods)
}
