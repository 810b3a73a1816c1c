package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfo_PreservesOrder(t *testing.T) {
	var in Info
	err := json.Unmarshal([]byte(`{"startTime":"2024-05-01T10:00:00Z","CWD":"/","goroutineCount":7,"GOGC":"","nested":{"a":1}}`), &in)
	require.NoError(t, err)

	assert.Equal(t, []string{"startTime", "CWD", "goroutineCount", "GOGC", "nested"}, in.Keys())

	v, ok := in.Get("goroutineCount")
	require.True(t, ok)
	assert.Equal(t, json.Number("7"), v)

	_, ok = in.Get("missing")
	assert.False(t, ok)
}

func TestInfo_RejectsNonObject(t *testing.T) {
	tests := []string{`[]`, `"x"`, `{"a":}`}
	for _, body := range tests {
		t.Run(body, func(t *testing.T) {
			var in Info
			assert.Error(t, json.Unmarshal([]byte(body), &in))
		})
	}
}

func TestInfo_Empty(t *testing.T) {
	var in Info
	require.NoError(t, json.Unmarshal([]byte(`{}`), &in))
	assert.Empty(t, in.Keys())
}
