package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericFromFloat(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "two decimals kept", in: 19.99, want: 19.99},
		{name: "extra decimals rounded", in: 19.999, want: 20.00},
		{name: "whole number", in: 10, want: 10.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			numeric, err := numericFromFloat(tt.in)
			require.NoError(t, err)

			value, err := numeric.Float64Value()
			require.NoError(t, err)
			assert.Equal(t, tt.want, value.Float64)
		})
	}
}
