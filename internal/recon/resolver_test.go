package recon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareaudit/internal/domain"
)

func TestResolver_SelectsNearest(t *testing.T) {
	replicas := &fakeReplicas{byRoot: map[string][]string{"example.org": {"dc1", "dc2"}}}
	pinger := &fakePinger{latency: map[string]time.Duration{"dc1": 50 * time.Millisecond, "dc2": 20 * time.Millisecond}}
	r := NewResolver(replicas, NewLatencyProber(pinger, time.Second), time.Second)

	server, err := r.Resolve(context.Background(), domain.NewDomain("", "example.org"))
	require.NoError(t, err)
	assert.Equal(t, "dc2", server.Address)
	assert.False(t, server.Fallback)
}

func TestResolver_EmptyReplicaListFallsBack(t *testing.T) {
	pinger := &fakePinger{}
	r := NewResolver(&fakeReplicas{}, NewLatencyProber(pinger, time.Second), time.Second)

	server, err := r.Resolve(context.Background(), domain.NewDomain("corp", "example.org"))
	require.NoError(t, err)
	assert.Equal(t, "corp.example.org", server.Address)
	assert.True(t, server.Fallback)
	assert.Empty(t, pinger.called(), "no probing without replicas")
}

func TestResolver_LookupErrorFallsBack(t *testing.T) {
	r := NewResolver(&fakeReplicas{err: errors.New("SERVFAIL")}, NewLatencyProber(&fakePinger{}, time.Second), time.Second)

	server, err := r.Resolve(context.Background(), domain.NewDomain("", "example.org"))
	require.NoError(t, err)
	assert.Equal(t, "example.org", server.Address)
	assert.True(t, server.Fallback)
}

func TestResolver_NoReachableServer(t *testing.T) {
	replicas := &fakeReplicas{byRoot: map[string][]string{"example.org": {"dc1", "dc2"}}}
	r := NewResolver(replicas, NewLatencyProber(&fakePinger{}, time.Second), time.Second)

	server, err := r.Resolve(context.Background(), domain.NewDomain("", "example.org"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoReachableServer)
	assert.ErrorIs(t, err, domain.ErrAllUnreachable)
	assert.Empty(t, server.Address, "no fallback to the search root")
}
