package kermesse_test

import (
	"context"
	"testing"
	"time"

	kermesse "github.com/kermesse/go-kermesse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionContextRoundTrip(t *testing.T) {
	actor := testActor(kermesse.ActorAgent, kermesse.AgentRoleVente)
	session := &kermesse.Session{
		ActorID:   actor.ID,
		Token:     "token",
		ExpiresAt: time.Now().Add(time.Hour),
		Actor:     actor,
	}

	ctx := kermesse.WithSessionContext(context.Background(), session)

	got, ok := kermesse.SessionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, session, got)

	gotActor, ok := kermesse.ActorFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, actor, gotActor)
}

func TestSessionFromContextMissing(t *testing.T) {
	_, ok := kermesse.SessionFromContext(context.Background())
	assert.False(t, ok)

	_, ok = kermesse.ActorFromContext(context.Background())
	assert.False(t, ok)
}

func TestActorFromContextWithoutActor(t *testing.T) {
	ctx := kermesse.WithSessionContext(context.Background(), &kermesse.Session{Token: "token"})

	_, ok := kermesse.ActorFromContext(ctx)
	assert.False(t, ok)
}
