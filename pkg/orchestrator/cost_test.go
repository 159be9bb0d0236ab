package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCostUSDZeroForNonPositiveTokens(t *testing.T) {
	assert.Equal(t, 0.0, estimateCostUSD(0))
	assert.Equal(t, 0.0, estimateCostUSD(-5))
}

func TestEstimateCostUSDScalesWithTokens(t *testing.T) {
	small := estimateCostUSD(1000)
	large := estimateCostUSD(2000)
	assert.Greater(t, large, small)
	assert.InDelta(t, small*2, large, 1e-12)
}
