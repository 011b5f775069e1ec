package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"peerlink/internal/core/domain"
	"peerlink/internal/core/ports"
	"peerlink/internal/infrastructure/repositories"
	"peerlink/internal/infrastructure/repositories/memory"
	apperrors "peerlink/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRelay(t *testing.T) ports.RelayService {
	t.Helper()
	mailbox := repositories.NewFallbackMailbox(nil, memory.NewMemoryMailboxRepository(), nil, nil)
	return NewRelayService(mailbox, nil, nil, 256*1024)
}

func assertInvalidInput(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, appErr.Code)
}

func TestRelay_OfferRoundTrip(t *testing.T) {
	svc := newTestRelay(t)
	ctx := context.Background()
	desc := domain.SessionDescription{Type: "offer", SDP: "v=0\r\no=- 46117 2 IN IP4 127.0.0.1"}

	_, err := svc.PublishOffer(ctx, "ABC123", "host-1", desc)
	require.NoError(t, err)

	offer, _, err := svc.ConsumeOffer(ctx, "ABC123")
	require.NoError(t, err)
	require.NotNil(t, offer)
	assert.Equal(t, desc, offer.Description)
	assert.Equal(t, domain.AgentID("host-1"), offer.HostID)

	// Destructive read: a second consume sees an empty slot
	offer, _, err = svc.ConsumeOffer(ctx, "ABC123")
	require.NoError(t, err)
	assert.Nil(t, offer)
}

func TestRelay_AnswerExactlyOnce(t *testing.T) {
	svc := newTestRelay(t)
	ctx := context.Background()
	desc := domain.SessionDescription{Type: "answer", SDP: "v=0"}

	_, err := svc.PublishAnswer(ctx, "ABC123", "host-1", desc)
	require.NoError(t, err)

	answer, _, err := svc.ConsumeAnswer(ctx, "ABC123", "host-1")
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.Equal(t, desc, answer.Description)

	answer, _, err = svc.ConsumeAnswer(ctx, "ABC123", "host-1")
	require.NoError(t, err)
	assert.Nil(t, answer)
}

func TestRelay_AnswerSlotsArePerHost(t *testing.T) {
	svc := newTestRelay(t)
	ctx := context.Background()

	_, err := svc.PublishAnswer(ctx, "ABC123", "host-1", domain.SessionDescription{Type: "answer", SDP: "for-1"})
	require.NoError(t, err)
	_, err = svc.PublishAnswer(ctx, "ABC123", "host-2", domain.SessionDescription{Type: "answer", SDP: "for-2"})
	require.NoError(t, err)

	a1, _, err := svc.ConsumeAnswer(ctx, "ABC123", "host-1")
	require.NoError(t, err)
	require.NotNil(t, a1)
	assert.Equal(t, "for-1", a1.Description.SDP)

	a2, _, err := svc.ConsumeAnswer(ctx, "ABC123", "host-2")
	require.NoError(t, err)
	require.NotNil(t, a2)
	assert.Equal(t, "for-2", a2.Description.SDP)
}

func TestRelay_CandidatesExcludePostingRoleAndKeepOrder(t *testing.T) {
	svc := newTestRelay(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := svc.PublishCandidate(ctx, "ABC123", domain.RoleHost, domain.Candidate{
			Candidate:     fmt.Sprintf("candidate:%d 1 UDP 2122252543 10.0.0.1 5000%d typ host", i, i),
			SDPMid:        "0",
			SDPMLineIndex: 0,
		})
		require.NoError(t, err)
	}
	_, err := svc.PublishCandidate(ctx, "ABC123", domain.RoleViewer, domain.Candidate{
		Candidate: "candidate:9 1 UDP 2122252543 10.0.0.2 50009 typ host",
		SDPMid:    "0",
	})
	require.NoError(t, err)

	// Viewer drains the host's three candidates in posting order
	got, _, err := svc.ConsumeCandidates(ctx, "ABC123", domain.RoleViewer)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, c := range got {
		assert.Contains(t, c.Candidate, fmt.Sprintf("candidate:%d ", i+1))
	}

	// Nothing of the host's remains; a second fetch is empty
	got, _, err = svc.ConsumeCandidates(ctx, "ABC123", domain.RoleViewer)
	require.NoError(t, err)
	assert.Empty(t, got)

	// The viewer's own candidate is still waiting for the host
	got, _, err = svc.ConsumeCandidates(ctx, "ABC123", domain.RoleHost)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Candidate, "candidate:9 ")
}

func TestRelay_ValidationFailures(t *testing.T) {
	svc := newTestRelay(t)
	ctx := context.Background()
	sdp := domain.SessionDescription{Type: "offer", SDP: "v=0"}

	_, err := svc.PublishOffer(ctx, "", "host-1", sdp)
	assertInvalidInput(t, err)

	_, err = svc.PublishOffer(ctx, "ABC123", "", sdp)
	assertInvalidInput(t, err)

	_, err = svc.PublishOffer(ctx, "ABC123", "host-1", domain.SessionDescription{Type: "offer", SDP: ""})
	assertInvalidInput(t, err)

	_, _, err = svc.ConsumeOffer(ctx, "")
	assertInvalidInput(t, err)

	_, err = svc.PublishCandidate(ctx, "ABC123", "spectator", domain.Candidate{Candidate: "candidate:1"})
	assertInvalidInput(t, err)

	_, _, err = svc.ConsumeCandidates(ctx, "ABC123", "")
	assertInvalidInput(t, err)
}

type downMailbox struct{}

func (d *downMailbox) Put(ctx context.Context, kind domain.MessageKind, key string, role domain.Role, payload []byte) error {
	return errors.New("connection refused")
}

func (d *downMailbox) TakeOne(ctx context.Context, kind domain.MessageKind, key string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (d *downMailbox) TakeMany(ctx context.Context, kind domain.MessageKind, key string, excludeRole domain.Role) ([][]byte, error) {
	return nil, errors.New("connection refused")
}

func TestRelay_DurableOutageServedVolatile(t *testing.T) {
	mailbox := repositories.NewFallbackMailbox(&downMailbox{}, memory.NewMemoryMailboxRepository(), nil, nil)
	svc := NewRelayService(mailbox, nil, nil, 256*1024)
	ctx := context.Background()

	mode, err := svc.PublishOffer(ctx, "ABC123", "host-1", domain.SessionDescription{Type: "offer", SDP: "v=0"})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeVolatile, mode)

	offer, mode, err := svc.ConsumeOffer(ctx, "ABC123")
	require.NoError(t, err)
	require.NotNil(t, offer)
	assert.Equal(t, domain.ModeVolatile, mode)
}
