package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ambulance-dispatch-service/internal/api/dto"
	"ambulance-dispatch-service/internal/domain"

	redis "github.com/redis/go-redis/v9"
)

const (
	AssignmentsChannel = "dispatch:assignments"
	positionsPrefix    = "dispatch:positions:"
)

// PositionsChannel is the pub/sub channel carrying one unit's positions.
func PositionsChannel(unitID string) string { return positionsPrefix + unitID }

// RedisPublisher implements DispatchPublisher over Redis Pub/Sub.
type RedisPublisher struct {
	rdb     *redis.Client
	timeout time.Duration
	now     func() time.Time
}

func NewRedisPublisher(url string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis publisher: parse url: %w", err)
	}
	return NewRedisPublisherFromClient(redis.NewClient(opt)), nil
}

func NewRedisPublisherFromClient(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, timeout: 2 * time.Second, now: time.Now}
}

func (p *RedisPublisher) PublishCycle(ctx context.Context, a *domain.Assignment) error {
	data, err := json.Marshal(dto.NewAssignmentResponse(a))
	if err != nil {
		return fmt.Errorf("publish cycle: marshal: %w", err)
	}
	return p.publish(ctx, AssignmentsChannel, data)
}

func (p *RedisPublisher) PublishPosition(ctx context.Context, unitID, facility string, pos domain.Coordinates) error {
	data, err := json.Marshal(dto.PositionEvent{
		UnitID:   unitID,
		Facility: facility,
		Lat:      pos.Lat,
		Lon:      pos.Lon,
		At:       p.now(),
	})
	if err != nil {
		return fmt.Errorf("publish position: marshal: %w", err)
	}
	return p.publish(ctx, PositionsChannel(unitID), data)
}

func (p *RedisPublisher) publish(ctx context.Context, channel string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// Ping verifies the connection.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func (p *RedisPublisher) Close() error { return p.rdb.Close() }
