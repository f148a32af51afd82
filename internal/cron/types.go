package cron

import "time"

// Schedule defines when a job should run.
type Schedule struct {
	Expr string // 5-field cron expression
	TZ   string // IANA zone the expression is read in, local when empty
}

// JobState holds runtime state of a job.
type JobState struct {
	NextRunAt  time.Time
	LastRunAt  time.Time
	LastStatus string // "ok" or "error"
	LastError  string
}

// Job is a recurring report posted to a chat channel.
type Job struct {
	ID       string
	Name     string
	Enabled  bool
	Schedule Schedule
	// Channel and To address the outbound message, e.g. "discord" and a
	// channel ID.
	Channel string
	To      string
	State   JobState
}
