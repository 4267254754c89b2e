package utils

import (
	"time"
)

// AlertRecord is a single admitted alert, built once per process identity and
// handed to the exporters. Nothing keeps it after export.
type AlertRecord struct {
	ID        string    `json:"id"`
	RuleID    string    `json:"ruleID"`
	RuleLabel string    `json:"ruleLabel"`
	Priority  int       `json:"priority"`
	PID       int       `json:"pid"`
	Name      string    `json:"name"`
	User      string    `json:"user"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}
