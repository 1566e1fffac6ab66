package gf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewIsFirstWriterWinsByName exercises C5: two calls to New with the
// same name both resolve to the same underlying Dispatching record (the
// aspect store's first-writer-wins semantics), so the second call's body
// never becomes the default rule.
func TestNewIsFirstWriterWinsByName(t *testing.T) {
	first := New("shared-identity", func(args ...any) (any, error) { return "first", nil })
	second := New("shared-identity", func(args ...any) (any, error) { return "second", nil })

	result, err := second.Call(1)
	require.NoError(t, err)
	assert.Equal(t, "first", result, "second New call must not re-seed the default rule")

	result, err = first.Call(1)
	require.NoError(t, err)
	assert.Equal(t, "first", result)
}

// TestAbstractSharesIdentityWithNew confirms the aspect attachment is keyed
// only by name, not by which constructor first created it: once a name is
// claimed (by New or Abstract), every later caller observes the same
// RuleSet/Engine.
func TestAbstractSharesIdentityWithNew(t *testing.T) {
	base := Abstract("shared-abstract-identity")
	base.When(Sig(), Plain(func(args ...any) (any, error) { return "seeded", nil }))

	again := New("shared-abstract-identity", func(args ...any) (any, error) { return "unused", nil })
	result, err := again.Call(1)
	require.NoError(t, err)
	assert.Equal(t, "seeded", result)
}
