package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name string
		max  int64
		want int
	}{
		{"unlimited uploads", 0, math.MaxInt},
		{"negative means unlimited", -1, math.MaxInt},
		{"file cap plus framing", 50 << 20, 50<<20 + bodyLimitSlack},
		{"cap near the int ceiling", math.MaxInt64, math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bodyLimit(tt.max))
		})
	}
}
