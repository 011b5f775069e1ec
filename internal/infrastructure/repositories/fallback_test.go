package repositories

import (
	"context"
	"errors"
	"testing"

	"peerlink/internal/core/domain"
	"peerlink/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackendDown = errors.New("connection refused")

// failingMailbox simulates a durable backend that is always unreachable.
type failingMailbox struct{}

func (f *failingMailbox) Put(ctx context.Context, kind domain.MessageKind, key string, role domain.Role, payload []byte) error {
	return errBackendDown
}

func (f *failingMailbox) TakeOne(ctx context.Context, kind domain.MessageKind, key string) ([]byte, error) {
	return nil, errBackendDown
}

func (f *failingMailbox) TakeMany(ctx context.Context, kind domain.MessageKind, key string, excludeRole domain.Role) ([][]byte, error) {
	return nil, errBackendDown
}

type fallbackCounter struct {
	fallbacks int
}

func (c *fallbackCounter) RecordPublish(domain.MessageKind, domain.BackendMode)      {}
func (c *fallbackCounter) RecordConsume(domain.MessageKind, domain.BackendMode, int) {}
func (c *fallbackCounter) RecordFallback(string)                                     { c.fallbacks++ }
func (c *fallbackCounter) RecordRoomEnsured()                                        {}

func TestFallback_DurableHealthyReportsDurable(t *testing.T) {
	ctx := context.Background()
	mb := NewFallbackMailbox(memory.NewMemoryMailboxRepository(), memory.NewMemoryMailboxRepository(), nil, nil)

	mode, err := mb.Put(ctx, domain.KindOffer, "R1", "", []byte("offer"))
	require.NoError(t, err)
	assert.Equal(t, domain.ModeDurable, mode)

	payload, mode, err := mb.TakeOne(ctx, domain.KindOffer, "R1")
	require.NoError(t, err)
	assert.Equal(t, []byte("offer"), payload)
	assert.Equal(t, domain.ModeDurable, mode)
}

func TestFallback_DurableDownEveryOpSucceedsVolatile(t *testing.T) {
	ctx := context.Background()
	counter := &fallbackCounter{}
	mb := NewFallbackMailbox(&failingMailbox{}, memory.NewMemoryMailboxRepository(), counter, nil)

	mode, err := mb.Put(ctx, domain.KindOffer, "R1", "", []byte("offer"))
	require.NoError(t, err)
	assert.Equal(t, domain.ModeVolatile, mode)

	payload, mode, err := mb.TakeOne(ctx, domain.KindOffer, "R1")
	require.NoError(t, err)
	assert.Equal(t, []byte("offer"), payload)
	assert.Equal(t, domain.ModeVolatile, mode)

	mode, err = mb.Put(ctx, domain.KindCandidate, "R1", domain.RoleHost, []byte("c1"))
	require.NoError(t, err)
	assert.Equal(t, domain.ModeVolatile, mode)

	payloads, mode, err := mb.TakeMany(ctx, domain.KindCandidate, "R1", domain.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("c1")}, payloads)
	assert.Equal(t, domain.ModeVolatile, mode)

	assert.Equal(t, 4, counter.fallbacks)
}

func TestFallback_NilDurableServesVolatile(t *testing.T) {
	ctx := context.Background()
	mb := NewFallbackMailbox(nil, memory.NewMemoryMailboxRepository(), nil, nil)

	mode, err := mb.Put(ctx, domain.KindAnswer, "R1:host-1", "", []byte("answer"))
	require.NoError(t, err)
	assert.Equal(t, domain.ModeVolatile, mode)
}

func TestFallback_BackendsAreNotReconciled(t *testing.T) {
	ctx := context.Background()
	durable := memory.NewMemoryMailboxRepository()
	volatile := memory.NewMemoryMailboxRepository()

	// Message stranded in the volatile backend by an earlier fallback.
	require.NoError(t, volatile.Put(ctx, domain.KindOffer, "R1", "", []byte("stranded")))

	mb := NewFallbackMailbox(durable, volatile, nil, nil)
	payload, mode, err := mb.TakeOne(ctx, domain.KindOffer, "R1")
	require.NoError(t, err)
	assert.Nil(t, payload, "healthy durable read must not surface volatile contents")
	assert.Equal(t, domain.ModeDurable, mode)
}
