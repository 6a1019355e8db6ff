package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, uint64(100), cfg.MemLatency)
	require.Equal(t, uint64(1), cfg.SnoopHitLatency)
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	data := []byte(`{
		// operators may annotate their overrides
		"memLatency": 250,
	}`)
	cfg, err := Load(data)
	require.NoError(t, err)
	require.Equal(t, uint64(250), cfg.MemLatency)
	require.Equal(t, uint64(1), cfg.SnoopHitLatency, "unspecified field keeps its default")
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := Load([]byte(`{not json`))
	require.Error(t, err)
}

func TestValidateRejectsNegativeProcessors(t *testing.T) {
	cfg := Default()
	cfg.Processors = -1
	require.Error(t, cfg.Validate())
}
