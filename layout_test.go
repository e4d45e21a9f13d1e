package camelalloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/camelalloc/sizeclass"
)

func TestLayout_Validate(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		wantErr bool
	}{
		{"zero size", Layout{Size: 0, Align: 1}, false},
		{"byte", Layout{Size: 1, Align: 1}, false},
		{"page aligned", Layout{Size: 100, Align: MaxAlign}, false},
		{"negative size", Layout{Size: -1, Align: 1}, true},
		{"zero align", Layout{Size: 1, Align: 0}, true},
		{"negative align", Layout{Size: 1, Align: -8}, true},
		{"not power of two", Layout{Size: 1, Align: 24}, true},
		{"too aligned", Layout{Size: 1, Align: 2 * MaxAlign}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLayout)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewLayout(t *testing.T) {
	l, err := NewLayout(24, 8)
	require.NoError(t, err)
	assert.Equal(t, Layout{Size: 24, Align: 8}, l)

	l, err = NewLayout(24, 7)
	require.ErrorIs(t, err, ErrInvalidLayout)
	assert.Equal(t, Layout{}, l)
}

func TestLayoutOf(t *testing.T) {
	type pair struct {
		a uint8
		b uint32
	}
	assert.Equal(t, Layout{Size: 8, Align: 4}, LayoutOf[pair]())
	assert.Equal(t, Layout{Size: 0, Align: 1}, LayoutOf[struct{}]())
}

func TestLayout_Class(t *testing.T) {
	assert.Equal(t, sizeclass.Small, Layout{Size: 100, Align: 8}.Class().Category())
	assert.Equal(t, sizeclass.Large, Layout{Size: 4096, Align: 8}.Class().Category())
	assert.Equal(t, sizeclass.Huge, Layout{Size: 2 << 20, Align: 8}.Class().Category())
}

func TestFatalError(t *testing.T) {
	fe := &FatalError{Err: ErrAlreadyInitialized}
	assert.ErrorIs(t, fe, ErrAlreadyInitialized)
	assert.Contains(t, fe.Error(), "initialized once")
}
