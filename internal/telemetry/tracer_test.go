package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_DisabledReturnsNil(t *testing.T) {
	tp, err := InitTracer(Config{
		ServiceName: "codecrafts-backend",
		Enabled:     false,
	})
	require.NoError(t, err)
	assert.Nil(t, tp, "disabled tracing must not build a provider")
}
