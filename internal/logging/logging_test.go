package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, New(nil, false).GetLevel())
	assert.Equal(t, logrus.DebugLevel, New(nil, true).GetLevel())
}

func TestNew_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	l.WithField("stage", "fetch").Info("hello")
	assert.Contains(t, buf.String(), "stage=fetch")
	assert.Contains(t, buf.String(), "hello")

	buf.Reset()
	l.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	NewJSON(&buf, false).WithField("run_id", "abc").Info("done")
	assert.Contains(t, buf.String(), `"run_id":"abc"`)
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing to see")
}
