package views

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndRender(t *testing.T) {
	set, err := Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, set.Render(&buf, Home, map[string]interface{}{
		"Title": "Home", "User": nil, "SignInURL": "/in", "SignUpURL": "/up",
	}))
	assert.Contains(t, buf.String(), "You are not signed in.")
	assert.Contains(t, buf.String(), `href="/in"`)

	assert.Error(t, set.Render(&buf, "missing", nil))
}
