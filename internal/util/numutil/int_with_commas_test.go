package numutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithCommas(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{in: 0, want: "0"},
		{in: 999, want: "999"},
		{in: 1000, want: "1,000"},
		{in: 12345, want: "12,345"},
		{in: 1000001, want: "1,000,001"},
		{in: -45678, want: "-45,678"},
		{in: -999, want: "-999"},
		{in: math.MaxInt64, want: "9,223,372,036,854,775,807"},
		{in: math.MinInt64, want: "-9,223,372,036,854,775,808"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, WithCommas(tt.in))
		})
	}

	assert.Equal(t, "2,048", WithCommas(2048))
	assert.Equal(t, "-128", WithCommas(int8(math.MinInt8)))
}
