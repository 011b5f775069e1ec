package services

import (
	"context"
	"errors"

	"peerlink/internal/core/domain"
	"peerlink/internal/core/ports"
	apperrors "peerlink/pkg/errors"
	"peerlink/pkg/utils"
	"peerlink/pkg/validation"

	"go.uber.org/zap"
)

type roomService struct {
	rooms   ports.RoomRepository
	metrics ports.MetricsRecorder
	logger  *zap.SugaredLogger
}

func NewRoomService(rooms ports.RoomRepository, logger *zap.SugaredLogger) ports.RoomService {
	return NewRoomServiceWithMetrics(rooms, nil, logger)
}

func NewRoomServiceWithMetrics(rooms ports.RoomRepository, metrics ports.MetricsRecorder, logger *zap.SugaredLogger) ports.RoomService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &roomService{
		rooms:   rooms,
		metrics: metrics,
		logger:  logger,
	}
}

// Ensure upserts a room, generating a fresh short identifier when none
// is supplied. Collisions between concurrently generated identifiers
// are handled by the repository's upsert, not pre-checked here.
func (s *roomService) Ensure(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	if id == "" {
		id = domain.RoomID(utils.GenerateRoomID())
	} else if err := validation.ValidateRoomID(string(id)); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	room, err := s.rooms.Ensure(ctx, id)
	if err != nil {
		// No volatile fallback for the registry: the caller may retry.
		s.logger.Errorw("room registry upsert failed", "room_id", id, "error", err)
		return nil, apperrors.NewBackendUnavailableError(err)
	}
	if s.metrics != nil {
		s.metrics.RecordRoomEnsured()
	}
	return room, nil
}

func (s *roomService) Get(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	if err := validation.ValidateRoomID(string(id)); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	room, err := s.rooms.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return nil, apperrors.NewNotFoundError("room")
		}
		return nil, apperrors.NewBackendUnavailableError(err)
	}
	return room, nil
}
