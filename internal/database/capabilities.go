package database

import (
	"log/slog"
	"strings"

	"gorm.io/gorm"
)

const (
	TableUsers            = "users"
	TablePosts            = "posts"
	TableComments         = "comments"
	TableReviews          = "reviews"
	TableFollows          = "follows"
	TableVotes            = "votes"
	TableSaves            = "saves"
	TableReports          = "reports"
	TableReporterProfiles = "reporter_profiles"
	TableContentScores    = "content_scores"
	TableModerationLogs   = "moderation_logs"
)

// ModerationTables are the tables the moderation engine reads and writes.
var ModerationTables = []string{TableReports, TableReporterProfiles, TableContentScores, TableModerationLogs}

// optionalColumns are columns added after their table first shipped; code
// paths that use them check for them explicitly.
var optionalColumns = map[string][]string{
	TableReports:  {"weight", "content_ref", "metadata"},
	TablePosts:    {"hidden", "moderation_status"},
	TableComments: {"hidden", "moderation_status"},
	TableReviews:  {"hidden", "moderation_status"},
}

// Capabilities records which tables and columns exist. It is probed once at
// startup and handed to the repositories, so a partially migrated schema
// degrades to no-ops instead of failing requests.
type Capabilities struct {
	supported map[string]bool
}

// ProbeCapabilities inspects the live schema through the GORM migrator.
func ProbeCapabilities(db *gorm.DB) *Capabilities {
	m := db.Migrator()
	c := &Capabilities{supported: make(map[string]bool)}
	tables := []string{
		TableUsers, TablePosts, TableComments, TableReviews, TableFollows, TableVotes, TableSaves,
		TableReports, TableReporterProfiles, TableContentScores, TableModerationLogs,
	}
	var missing []string
	for _, t := range tables {
		if !m.HasTable(t) {
			missing = append(missing, t)
			continue
		}
		c.supported[t] = true
		for _, col := range optionalColumns[t] {
			if m.HasColumn(t, col) {
				c.supported[t+"."+col] = true
			} else {
				missing = append(missing, t+"."+col)
			}
		}
	}
	if len(missing) > 0 {
		slog.Warn("schema incomplete, dependent features disabled", "missing", strings.Join(missing, ","))
	}
	return c
}

// StaticCapabilities builds a capability set by hand.
func StaticCapabilities(names ...string) *Capabilities {
	c := &Capabilities{supported: make(map[string]bool, len(names))}
	for _, n := range names {
		c.supported[n] = true
	}
	return c
}

// Supports reports whether a table ("reports") or column ("reports.weight") exists.
func (c *Capabilities) Supports(name string) bool {
	if c == nil {
		return false
	}
	return c.supported[name]
}
