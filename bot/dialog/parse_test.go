package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1200.50", 1200.50, true},
		{"1200,50", 1200.50, true},
		{"1200-50", 1200.50, true},
		{"  26  ", 26, true},
		{"0", 0, true},
		{"", 0, false},
		{"abc", 0, false},
		{"12.3.4", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValidReportDate(t *testing.T) {
	assert.True(t, validReportDate("01.05"))
	assert.True(t, validReportDate("29.02"))
	assert.False(t, validReportDate("32.01"))
	assert.False(t, validReportDate("01.13"))
	assert.False(t, validReportDate("1.5.2025"))
	assert.False(t, validReportDate("вчера"))
	assert.False(t, validReportDate(""))
}
