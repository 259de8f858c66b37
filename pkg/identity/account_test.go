package identity_test

import (
	"context"
	"encoding/json"
	"errors"
	gohttp "net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/authflow/pkg/flow"
	"github.com/shashiranjanraj/authflow/pkg/http"
	"github.com/shashiranjanraj/authflow/pkg/identity"
	"github.com/shashiranjanraj/authflow/pkg/reqid"
	"github.com/shashiranjanraj/authflow/pkg/testkit"
)

var form = flow.SignUpForm{Name: "Ada", Email: "ada@example.com", Password: "pw", Role: flow.RoleAdmin}

func install(t *testing.T, steps ...testkit.MockStep) *testkit.MockTransport {
	t.Helper()
	mt := testkit.NewMockTransport(steps...)
	http.DefaultClient.Transport = mt
	t.Cleanup(http.ResetTransport)
	return mt
}

func TestCreateAccount_Created(t *testing.T) {
	mt := install(t, testkit.MockStep{
		Method:     gohttp.MethodPost,
		MatchURL:   "http://id.test/api/auth/signup",
		StatusCode: gohttp.StatusCreated,
		Body:       `{}`,
	})

	c := identity.NewAccountClient("http://id.test/")
	ctx := reqid.WithValue(context.Background(), "rid-42")
	resp, err := c.CreateAccount(ctx, form)
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, gohttp.StatusCreated, resp.StatusCode)
	assert.Empty(t, resp.Error)

	reqs := mt.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	assert.Equal(t, "rid-42", reqs[0].Header.Get(reqid.Header))

	var sent map[string]string
	require.NoError(t, json.Unmarshal(reqs[0].Body, &sent))
	assert.Equal(t, map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "pw", "role": "ADMIN",
	}, sent)
	assert.Empty(t, mt.AssertAllCalled())
}

func TestCreateAccount_ErrorBody(t *testing.T) {
	install(t, testkit.MockStep{
		MatchURL:   "http://id.test/api/auth/signup",
		StatusCode: gohttp.StatusBadRequest,
		Body:       `{"error":"Email already exists"}`,
	})

	resp, err := identity.NewAccountClient("http://id.test").CreateAccount(context.Background(), form)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, "Email already exists", resp.Error)
}

func TestCreateAccount_NonJSONBody(t *testing.T) {
	install(t, testkit.MockStep{
		MatchURL:   "http://id.test/api/auth/signup",
		StatusCode: gohttp.StatusBadGateway,
		Body:       `<html>bad gateway</html>`,
	})

	_, err := identity.NewAccountClient("http://id.test").CreateAccount(context.Background(), form)
	assert.True(t, errors.Is(err, identity.ErrBadResponse))
}

func TestCreateAccount_TransportError(t *testing.T) {
	install(t) // no steps: every call fails

	_, err := identity.NewAccountClient("http://id.test").CreateAccount(context.Background(), form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity: create account")
}
