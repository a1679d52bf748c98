package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBeginRun_IncrementsGenerationAndResetsFlag(t *testing.T) {
	requestCancel()
	gen1 := beginRun()
	assert.False(t, cancelled(gen1))

	requestCancel()
	assert.True(t, cancelled(gen1))

	gen2 := beginRun()
	assert.NotEqual(t, gen1, gen2)
	assert.False(t, cancelled(gen2))
	// A cancel request targeting the old generation never resurfaces.
	assert.False(t, cancelled(gen1))
}

func TestCancelled_OnlyTrueForCurrentGeneration(t *testing.T) {
	gen := beginRun()
	assert.False(t, cancelled(gen))
	requestCancel()
	assert.True(t, cancelled(gen))
	assert.False(t, cancelled(gen+1))
}
