package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionServiceIssueAndResolve(t *testing.T) {
	service := NewSessionService()

	actor := Actor{UserID: 7, FullName: "Test Master", Role: "Master"}
	token := service.Issue(actor)
	assert.NotEmpty(t, token)

	resolved, ok := service.Resolve(token)
	assert.True(t, ok)
	assert.Equal(t, actor, resolved)
}

func TestSessionServiceIssueProducesDistinctTokens(t *testing.T) {
	service := NewSessionService()

	actor := Actor{UserID: 1, FullName: "Worker", Role: "Worker"}
	first := service.Issue(actor)
	second := service.Issue(actor)

	assert.NotEqual(t, first, second)

	// Both tokens resolve independently
	_, ok := service.Resolve(first)
	assert.True(t, ok)
	_, ok = service.Resolve(second)
	assert.True(t, ok)
}

func TestSessionServiceRevoke(t *testing.T) {
	service := NewSessionService()

	token := service.Issue(Actor{UserID: 3, FullName: "Admin", Role: "Admin"})
	service.Revoke(token)

	_, ok := service.Resolve(token)
	assert.False(t, ok)
}

func TestSessionServiceRevokeUnknownTokenIsNoOp(t *testing.T) {
	service := NewSessionService()
	service.Revoke("never-issued")

	_, ok := service.Resolve("never-issued")
	assert.False(t, ok)
}

func TestSessionServiceResolveUnknownToken(t *testing.T) {
	service := NewSessionService()

	_, ok := service.Resolve("bogus")
	assert.False(t, ok)
}
