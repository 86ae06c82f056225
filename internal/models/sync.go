package models

import "time"

// SyncState is the lifecycle position of the sync orchestrator.
type SyncState int32

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncSucceeded
	SyncFailed
)

func (s SyncState) String() string {
	switch s {
	case SyncIdle:
		return "idle"
	case SyncRunning:
		return "running"
	case SyncSucceeded:
		return "succeeded"
	case SyncFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Rejection describes a raw record the normalizer refused.
type Rejection struct {
	Index   int
	Missing []string
	Invalid []string
}

// SyncOutcome reports one sync run. It is never persisted.
type SyncOutcome struct {
	RunID         string
	Success       bool
	State         SyncState
	Accepted      int
	Rejected      int
	WriteFailures int
	Total         int64
	LastSync      *time.Time
	Error         string
	Rejections    []Rejection
}
