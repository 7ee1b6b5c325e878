// Package moderation turns user reports into auto-hide decisions.
//
// Every report is weighted by the trust of its reporter (role, activity and
// past accuracy). The weights of all reports against a content item are summed
// and compared to a threshold that adapts to platform-wide report volume. When
// reports are resolved, the reporters' trust is recalculated so their next
// report carries the updated weight.
//
// Storage is reached through the small interfaces in ports.go. Missing tables
// are reported through Capabilities and degrade to no-ops.
package moderation
