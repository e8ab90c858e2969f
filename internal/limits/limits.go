// Package limits defines size limits for the engine's in-memory
// bookkeeping and helpers that apply them. No other package in this
// module imports it, so the running service applies none of these limits.
package limits

import (
	"fmt"
	"time"
)

// ResourceLimits caps the size of bounded in-memory collections used
// across the engine: a task's replayable progress history, a scam
// report's accumulated evidence list, and how long a report can go
// without a new submission before it is eligible for archival.
type ResourceLimits struct {
	MaxProgressHistory   int           `json:"max_progress_history"`
	MaxEvidencePerReport int           `json:"max_evidence_per_report"`
	MaxRecentTasks       int           `json:"max_recent_tasks"`
	MaxReportAge         time.Duration `json:"max_report_age"`
	MaxURLPatterns       int           `json:"max_url_patterns"`
	MaxNotesLength       int           `json:"max_notes_length"`
}

// DefaultResourceLimits returns production defaults.
func DefaultResourceLimits() *ResourceLimits {
	return &ResourceLimits{
		MaxProgressHistory:   50,
		MaxEvidencePerReport: 20,
		MaxRecentTasks:       1000,
		MaxReportAge:         365 * 24 * time.Hour,
		MaxURLPatterns:       100,
		MaxNotesLength:       2000,
	}
}

// ResourceLimiter applies ResourceLimits to in-memory collections.
type ResourceLimiter struct {
	limits *ResourceLimits
}

// NewResourceLimiter creates a limiter, falling back to defaults when nil.
func NewResourceLimiter(limits *ResourceLimits) *ResourceLimiter {
	if limits == nil {
		limits = DefaultResourceLimits()
	}
	return &ResourceLimiter{limits: limits}
}

// GetLimits returns the current limits.
func (rl *ResourceLimiter) GetLimits() *ResourceLimits {
	return rl.limits
}

// UpdateLimits replaces the limits after validating them.
func (rl *ResourceLimiter) UpdateLimits(limits *ResourceLimits) error {
	if limits.MaxProgressHistory <= 0 {
		return fmt.Errorf("MaxProgressHistory must be positive")
	}
	if limits.MaxEvidencePerReport <= 0 {
		return fmt.Errorf("MaxEvidencePerReport must be positive")
	}
	if limits.MaxRecentTasks <= 0 {
		return fmt.Errorf("MaxRecentTasks must be positive")
	}
	if limits.MaxReportAge <= 0 {
		return fmt.Errorf("MaxReportAge must be positive")
	}
	if limits.MaxURLPatterns <= 0 {
		return fmt.Errorf("MaxURLPatterns must be positive")
	}
	if limits.MaxNotesLength <= 0 {
		return fmt.Errorf("MaxNotesLength must be positive")
	}

	rl.limits = limits
	return nil
}

// ShouldArchive reports whether a timestamp is old enough to cross the
// archive-sweep age threshold. Callers still apply the verified/risk-score
// exemption from spec §3 on top of this.
func (rl *ResourceLimiter) ShouldArchive(lastReported time.Time) bool {
	return time.Since(lastReported) >= rl.limits.MaxReportAge
}

// CapStrings truncates a slice to the newest `max` entries.
func CapStrings(items []string, max int) []string {
	if len(items) <= max {
		return items
	}
	return items[len(items)-max:]
}

// CapMessages truncates a progress-history buffer to the newest `max`
// entries. Generic over any slice-like history kept for subscriber replay.
func CapMessages[T any](items []T, max int) []T {
	if len(items) <= max {
		return items
	}
	return items[len(items)-max:]
}

// GetMemoryUsage estimates the worst-case bytes these limits could allow a
// single in-memory structure to grow to.
func (rl *ResourceLimiter) GetMemoryUsage() int64 {
	baseSize := int64(1024)
	progressSize := int64(rl.limits.MaxProgressHistory * 250)
	evidenceSize := int64(rl.limits.MaxEvidencePerReport * 200)
	recentTasksSize := int64(rl.limits.MaxRecentTasks * 48)
	urlPatternsSize := int64(rl.limits.MaxURLPatterns * 400)

	return baseSize + progressSize + evidenceSize + recentTasksSize + urlPatternsSize
}

// ValidateLimits rejects unreasonably large limits that would let a
// misconfiguration exhaust memory.
func (rl *ResourceLimiter) ValidateLimits() error {
	if rl.limits.MaxProgressHistory > 1000 {
		return fmt.Errorf("MaxProgressHistory too large (> 1000)")
	}
	if rl.limits.MaxEvidencePerReport > 500 {
		return fmt.Errorf("MaxEvidencePerReport too large (> 500)")
	}
	if rl.limits.MaxRecentTasks > 100000 {
		return fmt.Errorf("MaxRecentTasks too large (> 100000)")
	}
	if rl.limits.MaxURLPatterns > 1000 {
		return fmt.Errorf("MaxURLPatterns too large (> 1000)")
	}
	return nil
}
