package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
)

func TestSweeperPurgesIdleSessions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	idle := startRegistration(t, h)
	latched := startRegistration(t, h)

	won, err := h.sessions.TransitionStatus(ctx, latched, models.SessionActive, models.SessionSubmitting)
	require.NoError(t, err)
	require.True(t, won)

	sweeper := NewSessionSweeper(h.sessions, time.Hour, time.Minute)

	n, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "fresh sessions stay")

	sweeper.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	n, err = sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = h.svc.Get(ctx, instructor, idle)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	_, err = h.svc.Get(ctx, instructor, latched)
	assert.NoError(t, err, "a session being submitted is never purged")
}

func TestSweeperStopsWithContext(t *testing.T) {
	h := newHarness(t)
	sweeper := NewSessionSweeper(h.sessions, time.Hour, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
