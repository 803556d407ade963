package logger

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetupLevel(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)
	dir := t.TempDir()

	w := Setup(filepath.Join(dir, "app.log"), "debug")
	assert.NotNil(t, w)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	Setup(filepath.Join(dir, "app.log"), "chatty")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}
