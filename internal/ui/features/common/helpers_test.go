package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStatusPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{StatusPath, true},
		{FlagsPath, true},
		{ConfigPath, true},
		{PlaygroundPath, false},
		{"/", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStatusPath(tt.path))
		})
	}
}
