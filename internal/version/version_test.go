package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	assert.Regexp(t, `^v\d+\.\d+\.\d+$`, Short())
	assert.Contains(t, Banner(), "CLI "+Short())
}
