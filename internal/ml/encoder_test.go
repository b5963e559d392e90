package ml

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncoderKnownCategories(t *testing.T) {
	e := NewLabelEncoder([]string{"tcp", "udp", "icmp"})

	code, ok := e.Encode("udp")
	require.True(t, ok)
	require.Equal(t, 1.0, code)

	code, ok = e.Encode("tcp")
	require.True(t, ok)
	require.Equal(t, 0.0, code)
}

func TestEncoderUnseenCategory(t *testing.T) {
	e := NewLabelEncoder([]string{"tcp", "udp"})

	code, ok := e.Encode("gre")
	require.False(t, ok)
	require.Equal(t, 0.0, code)
}

func TestEncoderWithoutIndex(t *testing.T) {
	// Built by literal, as an unmarshalled artifact would be before the
	// registry publishes it.
	e := &LabelEncoder{Classes: []string{"a", "b"}}

	code, ok := e.Encode("b")
	require.True(t, ok)
	require.Equal(t, 1.0, code)

	_, ok = e.Encode("z")
	require.False(t, ok)
}

func TestEncoderUnmarshal(t *testing.T) {
	var e LabelEncoder
	require.NoError(t, json.Unmarshal([]byte(`{"classes":["x","y"]}`), &e))
	e.buildIndex()

	code, ok := e.Encode("y")
	require.True(t, ok)
	require.Equal(t, 1.0, code)
}
