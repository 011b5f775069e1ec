package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"peerlink/internal/core/domain"
	"peerlink/internal/core/ports"
	apperrors "peerlink/pkg/errors"
	"peerlink/pkg/tracing"
	"peerlink/pkg/validation"

	"go.uber.org/zap"
)

type relayService struct {
	mailbox         ports.Mailbox
	metrics         ports.MetricsRecorder
	logger          *zap.SugaredLogger
	maxPayloadBytes int
}

// NewRelayService builds the signaling boundary on top of the dual-mode
// mailbox. metrics may be nil.
func NewRelayService(mailbox ports.Mailbox, metrics ports.MetricsRecorder, logger *zap.SugaredLogger, maxPayloadBytes int) ports.RelayService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &relayService{
		mailbox:         mailbox,
		metrics:         metrics,
		logger:          logger,
		maxPayloadBytes: maxPayloadBytes,
	}
}

// answerKey scopes an answer slot to its target host so that, later,
// multiple viewers answering one room each get their own slot.
func answerKey(room domain.RoomID, host domain.AgentID) string {
	return string(room) + ":" + string(host)
}

func (s *relayService) recordPublish(kind domain.MessageKind, mode domain.BackendMode) {
	if s.metrics != nil {
		s.metrics.RecordPublish(kind, mode)
	}
}

func (s *relayService) recordConsume(kind domain.MessageKind, mode domain.BackendMode, delivered int) {
	if s.metrics != nil {
		s.metrics.RecordConsume(kind, mode, delivered)
	}
}

func (s *relayService) PublishOffer(ctx context.Context, room domain.RoomID, host domain.AgentID, desc domain.SessionDescription) (domain.BackendMode, error) {
	ctx, span := tracing.TraceRelayOperation(ctx, "publish_offer", string(room))
	defer span.End()
	tracing.AddSpanAttributes(ctx, tracing.AgentIDKey.String(string(host)))

	if err := validation.ValidateRoomID(string(room)); err != nil {
		return "", apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidateAgentID(string(host)); err != nil {
		return "", apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidateSessionDescription(desc.Type, desc.SDP, s.maxPayloadBytes); err != nil {
		return "", apperrors.NewInvalidInputError(err.Error())
	}

	offer := &domain.Offer{
		RoomID:      room,
		HostID:      host,
		Description: desc,
		CreatedAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(offer)
	if err != nil {
		return "", apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to marshal offer", 500)
	}

	mode, err := s.mailbox.Put(ctx, domain.KindOffer, string(room), "", payload)
	if err != nil {
		return mode, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to store offer", 500)
	}

	s.recordPublish(domain.KindOffer, mode)
	tracing.AddSpanAttributes(ctx, tracing.ModeKey.String(string(mode)))
	s.logger.Debugw("offer published", "room_id", room, "host_id", host, "mode", mode)
	return mode, nil
}

func (s *relayService) ConsumeOffer(ctx context.Context, room domain.RoomID) (*domain.Offer, domain.BackendMode, error) {
	ctx, span := tracing.TraceRelayOperation(ctx, "consume_offer", string(room))
	defer span.End()

	if err := validation.ValidateRoomID(string(room)); err != nil {
		return nil, "", apperrors.NewInvalidInputError(err.Error())
	}

	payload, mode, err := s.mailbox.TakeOne(ctx, domain.KindOffer, string(room))
	if err != nil {
		return nil, mode, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to take offer", 500)
	}
	if payload == nil {
		return nil, mode, nil
	}

	var offer domain.Offer
	if err := json.Unmarshal(payload, &offer); err != nil {
		return nil, mode, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to unmarshal offer", 500)
	}

	s.recordConsume(domain.KindOffer, mode, 1)
	tracing.AddSpanAttributes(ctx, tracing.ModeKey.String(string(mode)))
	return &offer, mode, nil
}

func (s *relayService) PublishAnswer(ctx context.Context, room domain.RoomID, host domain.AgentID, desc domain.SessionDescription) (domain.BackendMode, error) {
	ctx, span := tracing.TraceRelayOperation(ctx, "publish_answer", string(room))
	defer span.End()

	if err := validation.ValidateRoomID(string(room)); err != nil {
		return "", apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidateAgentID(string(host)); err != nil {
		return "", apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidateSessionDescription(desc.Type, desc.SDP, s.maxPayloadBytes); err != nil {
		return "", apperrors.NewInvalidInputError(err.Error())
	}

	answer := &domain.Answer{
		RoomID:      room,
		HostID:      host,
		Description: desc,
		CreatedAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(answer)
	if err != nil {
		return "", apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to marshal answer", 500)
	}

	mode, err := s.mailbox.Put(ctx, domain.KindAnswer, answerKey(room, host), "", payload)
	if err != nil {
		return mode, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to store answer", 500)
	}

	s.recordPublish(domain.KindAnswer, mode)
	tracing.AddSpanAttributes(ctx, tracing.ModeKey.String(string(mode)))
	s.logger.Debugw("answer published", "room_id", room, "host_id", host, "mode", mode)
	return mode, nil
}

func (s *relayService) ConsumeAnswer(ctx context.Context, room domain.RoomID, host domain.AgentID) (*domain.Answer, domain.BackendMode, error) {
	ctx, span := tracing.TraceRelayOperation(ctx, "consume_answer", string(room))
	defer span.End()
	tracing.AddSpanAttributes(ctx, tracing.AgentIDKey.String(string(host)))

	if err := validation.ValidateRoomID(string(room)); err != nil {
		return nil, "", apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidateAgentID(string(host)); err != nil {
		return nil, "", apperrors.NewInvalidInputError(err.Error())
	}

	payload, mode, err := s.mailbox.TakeOne(ctx, domain.KindAnswer, answerKey(room, host))
	if err != nil {
		return nil, mode, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to take answer", 500)
	}
	if payload == nil {
		return nil, mode, nil
	}

	var answer domain.Answer
	if err := json.Unmarshal(payload, &answer); err != nil {
		return nil, mode, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to unmarshal answer", 500)
	}

	s.recordConsume(domain.KindAnswer, mode, 1)
	tracing.AddSpanAttributes(ctx, tracing.ModeKey.String(string(mode)))
	return &answer, mode, nil
}

func (s *relayService) PublishCandidate(ctx context.Context, room domain.RoomID, role domain.Role, cand domain.Candidate) (domain.BackendMode, error) {
	ctx, span := tracing.TraceRelayOperation(ctx, "publish_candidate", string(room))
	defer span.End()

	if err := validation.ValidateRoomID(string(room)); err != nil {
		return "", apperrors.NewInvalidInputError(err.Error())
	}
	if !role.Valid() {
		return "", apperrors.NewInvalidInputError(fmt.Sprintf("invalid role %q (must be host or viewer)", role))
	}
	if err := validation.ValidateCandidate(cand.Candidate); err != nil {
		return "", apperrors.NewInvalidInputError(err.Error())
	}

	entry := &domain.CandidateEntry{
		RoomID:    room,
		Role:      role,
		Candidate: cand,
		PostedAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return "", apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to marshal candidate", 500)
	}

	mode, err := s.mailbox.Put(ctx, domain.KindCandidate, string(room), role, payload)
	if err != nil {
		return mode, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to store candidate", 500)
	}

	s.recordPublish(domain.KindCandidate, mode)
	tracing.AddSpanAttributes(ctx, tracing.ModeKey.String(string(mode)))
	return mode, nil
}

func (s *relayService) ConsumeCandidates(ctx context.Context, room domain.RoomID, role domain.Role) ([]domain.Candidate, domain.BackendMode, error) {
	ctx, span := tracing.TraceRelayOperation(ctx, "consume_candidates", string(room))
	defer span.End()

	if err := validation.ValidateRoomID(string(room)); err != nil {
		return nil, "", apperrors.NewInvalidInputError(err.Error())
	}
	if !role.Valid() {
		return nil, "", apperrors.NewInvalidInputError(fmt.Sprintf("invalid role %q (must be host or viewer)", role))
	}

	payloads, mode, err := s.mailbox.TakeMany(ctx, domain.KindCandidate, string(room), role)
	if err != nil {
		return nil, mode, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to take candidates", 500)
	}

	candidates := make([]domain.Candidate, 0, len(payloads))
	for _, p := range payloads {
		var entry domain.CandidateEntry
		if err := json.Unmarshal(p, &entry); err != nil {
			// Skip a corrupt entry rather than dropping the whole
			// batch; candidates are individually expendable.
			s.logger.Warnw("skipping unreadable candidate entry", "room_id", room, "error", err)
			continue
		}
		candidates = append(candidates, entry.Candidate)
	}

	s.recordConsume(domain.KindCandidate, mode, len(candidates))
	tracing.AddSpanAttributes(ctx, tracing.ModeKey.String(string(mode)))
	return candidates, mode, nil
}
