package logging

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
)

// DefaultRetention is how long system_logs rows are kept.
const DefaultRetention = 30 * 24 * time.Hour

// PurgeSystemLogs deletes system_logs rows older than now-retention.
func PurgeSystemLogs(db *gorm.DB, now time.Time, retention time.Duration) (int64, error) {
	cutoff := now.Add(-retention)
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartCleanup runs a daily goroutine that purges system_logs past retention.
func StartCleanup(db *gorm.DB, retention time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := PurgeSystemLogs(db, time.Now().UTC(), retention)
				if err != nil {
					slog.Error("log cleanup failed", "component", "logging", "error", err)
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted)
				}
			case <-done:
				return
			}
		}
	}()
}
