// Package repository implements the moderation storage ports on top of GORM.
// Every repository is built with the schema capabilities probed at startup
// and turns operations on missing tables into no-ops.
package repository
