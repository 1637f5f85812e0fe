package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNameFieldTrims(t *testing.T) {
	in, err := NewNameField("  Alice  ")
	require.NoError(t, err)

	assert.Equal(t, "Alice", in.Content)
	assert.Equal(t, NameSlot, in.Slot)
	assert.Equal(t, AlignCenter, in.Align)
	assert.Equal(t, FontShrinkToFit, in.Policy)
	assert.Greater(t, in.FontSize, in.MinFontSize)
}

func TestNewNameFieldRejectsBlank(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := NewNameField(name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestNewNameFieldDeterministic(t *testing.T) {
	first, err := NewNameField("Carol")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := NewNameField("Carol")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestNameFieldFitsDefaultTemplate(t *testing.T) {
	in, err := NewNameField("Dave")
	require.NoError(t, err)
	assert.NoError(t, checkField(DefaultTemplate(), in))
}

func TestAlignmentCellAlign(t *testing.T) {
	assert.Equal(t, "LM", AlignLeft.cellAlign())
	assert.Equal(t, "CM", AlignCenter.cellAlign())
	assert.Equal(t, "RM", AlignRight.cellAlign())
	assert.Equal(t, "CM", Alignment("").cellAlign())
}
