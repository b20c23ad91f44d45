package runconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequiresComponentFile(t *testing.T) {
	c := &Config{MaxRounds: 10, MaxWorkers: 1, OutputFormat: "json"}
	assert.Error(t, c.Validate())
}

func TestValidateRequiresATerminationBound(t *testing.T) {
	c := &Config{ComponentFile: "x.yaml", MaxWorkers: 1, OutputFormat: "json"}
	assert.Error(t, c.Validate())
}

func TestValidateRequiresPositiveWorkers(t *testing.T) {
	c := &Config{ComponentFile: "x.yaml", MaxRounds: 1, MaxWorkers: 0, OutputFormat: "json"}
	assert.Error(t, c.Validate())
}

func TestValidateRejectsUnknownFormat(t *testing.T) {
	c := &Config{ComponentFile: "x.yaml", MaxRounds: 1, MaxWorkers: 1, OutputFormat: "xml"}
	assert.Error(t, c.Validate())
}

func TestValidateAcceptsMinimalConfig(t *testing.T) {
	c := &Config{ComponentFile: "x.yaml", MaxRounds: 1, MaxWorkers: 1, OutputFormat: "json"}
	assert.NoError(t, c.Validate())
}
