package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelsRouteToWriters(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWithWriters("worker 2", false, &out, &errOut)

	l.Debugf("hidden %d", 1)
	l.Infof("frame %d", 7)
	l.Warnf("slow")
	l.Errorf("boom: %s", "x")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[worker 2] INFO: frame 7")
	assert.Contains(t, errOut.String(), "[worker 2] WARN: slow")
	assert.Contains(t, errOut.String(), "[worker 2] ERROR: boom: x")
}

func TestSetDebug(t *testing.T) {
	var out bytes.Buffer
	l := NewWithWriters("", false, &out, &out)

	l.SetDebug(true)
	l.Debugf("visible")

	assert.True(t, l.DebugEnabled())
	assert.Contains(t, out.String(), "DEBUG: visible")
}

func TestWithSharesOutput(t *testing.T) {
	var out bytes.Buffer
	l := NewWithWriters("controller", true, &out, &out)

	l.With("worker 0").Debugf("ready")

	assert.Contains(t, out.String(), "[worker 0] DEBUG: ready")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	assert.False(t, OrNop(nil).DebugEnabled())
}
