package journal

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/vk/hotswap/internal/ledger"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultStream is the stream key used when none is configured.
const DefaultStream = "hotswap.ledger"

// StreamClient is the subset of the go-redis client the journal needs.
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XRange(ctx context.Context, stream, start, stop string) *redis.XMessageSliceCmd
}

// Redis appends entries to a Redis stream, one stream message per entry.
type Redis struct {
	client   StreamClient
	stream   string
	instance string
}

var _ ledger.Journal = (*Redis)(nil)

// NewRedis creates a stream journal. instance tags every message with the
// writing App.
func NewRedis(client StreamClient, stream, instance string) *Redis {
	if stream == "" {
		stream = DefaultStream
	}
	return &Redis{client: client, stream: stream, instance: instance}
}

// DialRedis returns a client for a redis:// URL or a plain host:port.
func DialRedis(addr string) *redis.Client {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		opt = &redis.Options{Addr: addr}
	}
	return redis.NewClient(opt)
}

// Append publishes one record.
func (j *Redis) Append(ctx context.Context, e ledger.Entry) error {
	payload, err := msgpack.Marshal(&e)
	if err != nil {
		return fmt.Errorf("failed to encode entry %d: %w", e.Seq, err)
	}
	_, err = j.client.XAdd(ctx, &redis.XAddArgs{
		Stream: j.stream,
		Values: map[string]interface{}{
			"seq":      e.Seq,
			"kind":     string(e.Kind),
			"instance": j.instance,
			"payload":  payload,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to append entry %d to stream %s: %w", e.Seq, j.stream, err)
	}
	return nil
}

// Replay reads the whole stream back.
func (j *Redis) Replay(ctx context.Context) ([]ledger.Entry, error) {
	msgs, err := j.client.XRange(ctx, j.stream, "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %s: %w", j.stream, err)
	}

	out := make([]ledger.Entry, 0, len(msgs))
	for _, msg := range msgs {
		raw, ok := msg.Values["payload"].(string)
		if !ok {
			return out, fmt.Errorf("stream message %s has no payload", msg.ID)
		}
		var e ledger.Entry
		if err := msgpack.Unmarshal([]byte(raw), &e); err != nil {
			return out, fmt.Errorf("failed to decode stream message %s: %w", msg.ID, err)
		}
		if seqStr, ok := msg.Values["seq"].(string); ok {
			if seq, err := strconv.ParseUint(seqStr, 10, 64); err == nil && seq != e.Seq {
				return out, fmt.Errorf("stream message %s: seq field %d does not match payload %d", msg.ID, seq, e.Seq)
			}
		}
		out = append(out, e)
	}
	return out, nil
}
