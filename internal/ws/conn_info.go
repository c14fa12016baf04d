package ws

import "time"

// ConnInfo carries per-connection metadata for logging and audit events.
type ConnInfo struct {
	ConnID      string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
