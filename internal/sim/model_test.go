package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseWithResets is a base model that also implements Resets.
type baseWithResets struct {
	saw
}

func TestBind(t *testing.T) {
	m, err := Bind(rampDescriptor())
	require.NoError(t, err)
	assert.Equal(t, 1, m.StateCount())
	assert.Equal(t, 1, m.VariableCount())
	assert.Equal(t, 0, m.ResetCount())
	assert.Nil(t, m.ExternalSlots())

	m, err = Bind(spikerDescriptor())
	require.NoError(t, err)
	assert.Equal(t, 1, m.ResetCount())
	assert.Equal(t, []int{0}, m.ExternalSlots())
}

func TestBind_Mismatch(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
	}{
		{"driven declared base", Descriptor{Info: testInfo("x", 1, 2), Kind: KindBase, New: func() any { return &follower{} }}},
		{"base declared driven", Descriptor{Info: testInfo("x", 1, 1), Kind: KindExternallyDriven, New: func() any { return &ramp{} }}},
		{"resets undeclared", Descriptor{Info: testInfo("x", 1, 1), Kind: KindBase, New: func() any { return &baseWithResets{} }}},
		{"resets missing", Descriptor{Info: testInfo("x", 1, 1), Kind: KindResetCapable, New: func() any { return &ramp{} }}},
		{"both missing resets", Descriptor{Info: testInfo("x", 1, 2), Kind: KindBoth, New: func() any { return &follower{} }}},
		{"not a model", Descriptor{Info: testInfo("x", 1, 1), Kind: KindBase, New: func() any { return struct{}{} }}},
		{"nil constructor", Descriptor{Info: testInfo("x", 1, 1), Kind: KindBase}},
		{"nil instance", Descriptor{Info: testInfo("x", 1, 1), Kind: KindBase, New: func() any { return nil }}},
		{"invalid kind", Descriptor{Info: testInfo("x", 1, 1), Kind: Kind(9), New: func() any { return &ramp{} }}},
		{"state info length", Descriptor{Info: testInfo("x", 2, 1), Kind: KindBase, New: func() any { return &ramp{} }}},
		{"variable info length", Descriptor{Info: testInfo("x", 1, 0), Kind: KindBase, New: func() any { return &ramp{} }}},
		{"slot out of range", Descriptor{Info: testInfo("x", 1, 2), Kind: KindExternallyDriven, New: func() any { return &follower{slot: 5} }}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Bind(tt.d)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestBind_NilResetFunctions(t *testing.T) {
	d := Descriptor{
		Info: testInfo("x", 1, 1),
		Kind: KindResetCapable,
		New:  func() any { return &halfReset{} },
	}
	_, err := Bind(d)
	assert.ErrorIs(t, err, ErrConfiguration)
}

type halfReset struct {
	ramp
}

func (m *halfReset) Resets() []ResetSpec {
	return []ResetSpec{{Test: func(float64, []float64, []float64) float64 { return 0 }}}
}
