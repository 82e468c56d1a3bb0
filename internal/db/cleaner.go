package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/atinyakov/HydroPal/internal/metrics"
	"go.uber.org/zap"
)

// StartRetentionCleaner periodically deletes tracking entries older than
// retention. It returns immediately; the cleaner stops when ctx is done.
// A non-positive retention or interval disables it.
func StartRetentionCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	if retention <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				res, err := db.ExecContext(ctx, `
                    DELETE FROM entries
                     WHERE created_at < $1
                `, cutoff)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Error("failed to clean expired entries", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					metrics.CleanedEntries.Add(float64(rows))
					log.Info("cleaned expired entries", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
