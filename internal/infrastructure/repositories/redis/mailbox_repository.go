package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"peerlink/internal/core/domain"
	"peerlink/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// takeManyScript atomically drains every list entry not posted by the
// excluded role while preserving arrival order for the entries that
// stay behind. Running it server-side closes the read-then-delete race
// that a LRANGE/DEL pair would have.
var takeManyScript = redis.NewScript(`
local items = redis.call('LRANGE', KEYS[1], 0, -1)
redis.call('DEL', KEYS[1])
local deliver = {}
for _, v in ipairs(items) do
  local rec = cjson.decode(v)
  if rec.role == ARGV[1] then
    redis.call('RPUSH', KEYS[1], v)
  else
    table.insert(deliver, v)
  end
end
return deliver
`)

type listRecord struct {
	Role    domain.Role `json:"role"`
	Payload []byte      `json:"payload"`
}

type RedisMailboxRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisMailboxRepository(client *redis.Client) ports.MailboxRepository {
	return &RedisMailboxRepository{
		client: client,
		prefix: "peerlink:mailbox:",
	}
}

func (r *RedisMailboxRepository) mailboxKey(kind domain.MessageKind, key string) string {
	return r.prefix + string(kind) + ":" + key
}

func (r *RedisMailboxRepository) Put(ctx context.Context, kind domain.MessageKind, key string, role domain.Role, payload []byte) error {
	k := r.mailboxKey(kind, key)

	if kind == domain.KindCandidate {
		rec, err := json.Marshal(listRecord{Role: role, Payload: payload})
		if err != nil {
			return fmt.Errorf("failed to marshal candidate record: %w", err)
		}
		if err := r.client.RPush(ctx, k, rec).Err(); err != nil {
			return fmt.Errorf("failed to append candidate in Redis: %w", err)
		}
		return nil
	}

	if err := r.client.Set(ctx, k, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s slot in Redis: %w", kind, err)
	}
	return nil
}

func (r *RedisMailboxRepository) TakeOne(ctx context.Context, kind domain.MessageKind, key string) ([]byte, error) {
	// GETDEL makes the destructive read atomic: of two concurrent
	// takes, exactly one sees the payload.
	data, err := r.client.GetDel(ctx, r.mailboxKey(kind, key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take %s slot from Redis: %w", kind, err)
	}
	return data, nil
}

func (r *RedisMailboxRepository) TakeMany(ctx context.Context, kind domain.MessageKind, key string, excludeRole domain.Role) ([][]byte, error) {
	raw, err := takeManyScript.Run(ctx, r.client, []string{r.mailboxKey(kind, key)}, string(excludeRole)).StringSlice()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to drain %s list from Redis: %w", kind, err)
	}

	var delivered [][]byte
	for _, item := range raw {
		var rec listRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal candidate record: %w", err)
		}
		delivered = append(delivered, rec.Payload)
	}
	return delivered, nil
}
