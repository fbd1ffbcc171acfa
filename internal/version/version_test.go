package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientTag(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "1.2.3"
	assert.Equal(t, "kava-go:1.2.3", ClientTag())
	assert.Equal(t, "kava-go/1.2.3", UserAgent())
	assert.Contains(t, GetVersionInfo(), "kava v1.2.3")
}
