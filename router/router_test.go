package router

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/huddle/pkg"
)

type echoPayload struct {
	Name string `json:"name"`
}

func (p echoPayload) Validate() []pkg.FieldIssue {
	if p.Name == "" {
		return []pkg.FieldIssue{{Field: "name", Message: "name is required"}}
	}
	return nil
}

func TestRouteDispatchesToHandler(t *testing.T) {
	r := New()

	var gotConn string
	var gotName string
	r.Register("test:echo", Typed(func(connID string, p echoPayload) error {
		gotConn = connID
		gotName = p.Name
		return nil
	}))

	err := r.Route("c1", "test:echo", json.RawMessage(`{"name":"alice"}`))
	require.NoError(t, err)
	assert.Equal(t, "c1", gotConn)
	assert.Equal(t, "alice", gotName)
}

func TestRouteUnknownEvent(t *testing.T) {
	r := New()

	err := r.Route("c1", "no:such", nil)
	var unknown *pkg.UnknownEventError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "no:such", unknown.Event)
}

func TestRouteHandlerErrorPassthrough(t *testing.T) {
	r := New()

	sentinel := errors.New("boom")
	r.Register("test:fail", func(connID string, data json.RawMessage) error {
		return sentinel
	})

	err := r.Route("c1", "test:fail", nil)
	assert.ErrorIs(t, err, sentinel)
}

func TestTypedDecodeFailure(t *testing.T) {
	called := false
	h := Typed(func(connID string, p echoPayload) error {
		called = true
		return nil
	})

	err := h("c1", json.RawMessage(`{"name":{"nested":true}}`))
	var verr *pkg.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.False(t, called, "handler must not run on decode failure")
}

func TestTypedValidationFailure(t *testing.T) {
	called := false
	h := Typed(func(connID string, p echoPayload) error {
		called = true
		return nil
	})

	err := h("c1", json.RawMessage(`{}`))
	var verr *pkg.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, "name", verr.Issues[0].Field)
	assert.False(t, called)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := New()
	r.Register("test:dup", func(connID string, data json.RawMessage) error { return nil })

	assert.Panics(t, func() {
		r.Register("test:dup", func(connID string, data json.RawMessage) error { return nil })
	})
}
