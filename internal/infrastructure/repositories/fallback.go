package repositories

import (
	"context"

	"peerlink/internal/core/domain"
	"peerlink/internal/core/ports"
	"peerlink/pkg/tracing"

	"go.uber.org/zap"
)

// FallbackMailbox selects a backend per operation: the durable backend
// is attempted first and any error routes the same logical operation to
// the volatile in-process backend. The caller is told which mode served
// the request and never sees a durable-store failure as its own.
//
// The two backends are deliberately never reconciled. A message written
// during a Redis outage lives in process memory only, so a room's
// traffic can end up split across both backends. Known limitation,
// carried over intentionally.
type FallbackMailbox struct {
	durable  ports.MailboxRepository
	volatile ports.MailboxRepository
	metrics  ports.MetricsRecorder
	logger   *zap.SugaredLogger
}

// NewFallbackMailbox wires the two backends. durable may be nil, in
// which case every operation is served volatile (development mode).
// metrics may be nil.
func NewFallbackMailbox(durable, volatile ports.MailboxRepository, metrics ports.MetricsRecorder, logger *zap.SugaredLogger) ports.Mailbox {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &FallbackMailbox{
		durable:  durable,
		volatile: volatile,
		metrics:  metrics,
		logger:   logger,
	}
}

func (m *FallbackMailbox) fellBack(op string, kind domain.MessageKind, key string, err error) {
	m.logger.Warnw("durable mailbox backend failed, serving from volatile memory",
		"op", op,
		"kind", kind,
		"key", key,
		"error", err,
	)
	if m.metrics != nil {
		m.metrics.RecordFallback(op)
	}
}

func (m *FallbackMailbox) Put(ctx context.Context, kind domain.MessageKind, key string, role domain.Role, payload []byte) (domain.BackendMode, error) {
	ctx, span := tracing.TraceMailboxOperation(ctx, "put", string(kind))
	defer span.End()

	if m.durable != nil {
		if err := m.durable.Put(ctx, kind, key, role, payload); err == nil {
			return domain.ModeDurable, nil
		} else {
			m.fellBack("put", kind, key, err)
		}
	}
	if err := m.volatile.Put(ctx, kind, key, role, payload); err != nil {
		return domain.ModeVolatile, err
	}
	return domain.ModeVolatile, nil
}

func (m *FallbackMailbox) TakeOne(ctx context.Context, kind domain.MessageKind, key string) ([]byte, domain.BackendMode, error) {
	ctx, span := tracing.TraceMailboxOperation(ctx, "take_one", string(kind))
	defer span.End()

	if m.durable != nil {
		payload, err := m.durable.TakeOne(ctx, kind, key)
		if err == nil {
			return payload, domain.ModeDurable, nil
		}
		m.fellBack("take_one", kind, key, err)
	}
	payload, err := m.volatile.TakeOne(ctx, kind, key)
	if err != nil {
		return nil, domain.ModeVolatile, err
	}
	return payload, domain.ModeVolatile, nil
}

func (m *FallbackMailbox) TakeMany(ctx context.Context, kind domain.MessageKind, key string, excludeRole domain.Role) ([][]byte, domain.BackendMode, error) {
	ctx, span := tracing.TraceMailboxOperation(ctx, "take_many", string(kind))
	defer span.End()
	tracing.AddSpanAttributes(ctx, tracing.RoleKey.String(string(excludeRole)))

	if m.durable != nil {
		payloads, err := m.durable.TakeMany(ctx, kind, key, excludeRole)
		if err == nil {
			return payloads, domain.ModeDurable, nil
		}
		m.fellBack("take_many", kind, key, err)
	}
	payloads, err := m.volatile.TakeMany(ctx, kind, key, excludeRole)
	if err != nil {
		return nil, domain.ModeVolatile, err
	}
	return payloads, domain.ModeVolatile, nil
}
