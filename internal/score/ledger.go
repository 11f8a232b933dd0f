// Package score maintains the ranked best-score mapping consumed by the
// leaderboard read service. Its write contract: the ranked set game:scores
// holds one entry per user, and game:scores:best:{id} carries a denormalized
// snapshot of the best score plus the time it was set.
package score

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rankedKey = "game:scores"

// Ledger records best-effort-monotonic game scores per user.
type Ledger struct {
	client    *redis.Client
	opTimeout time.Duration
}

func NewLedger(client *redis.Client, opTimeout time.Duration) *Ledger {
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	return &Ledger{client: client, opTimeout: opTimeout}
}

func snapshotKey(userID string) string {
	return "game:scores:best:" + userID
}

// Submit records a score if it beats the user's current best. The ranked
// entry is updated with ZADD GT, so two concurrent submissions can never
// overwrite a higher score with a lower one; whichever is larger wins
// regardless of interleaving. Returns true when the best score changed.
func (l *Ledger) Submit(ctx context.Context, userID string, points int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	changed, err := l.client.ZAddArgs(ctx, rankedKey, redis.ZAddArgs{
		GT:      true,
		Ch:      true,
		Members: []redis.Z{{Score: float64(points), Member: userID}},
	}).Result()
	if err != nil {
		return false, fmt.Errorf("update ranked score: %w", err)
	}
	if changed == 0 {
		return false, nil
	}

	// Snapshot follows the ranked write; it is a denormalized read-side
	// convenience, not part of the ordering guarantee.
	ts := time.Now().UnixMilli()
	if err := l.client.HSet(ctx, snapshotKey(userID), "score", points, "ts", ts).Err(); err != nil {
		return true, fmt.Errorf("write score snapshot: %w", err)
	}
	return true, nil
}

// Best returns the user's current ranked score. The second return is false
// when the user has never submitted.
func (l *Ledger) Best(ctx context.Context, userID string) (int, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	current, err := l.client.ZScore(ctx, rankedKey, userID).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read ranked score: %w", err)
	}
	return int(current), true, nil
}
