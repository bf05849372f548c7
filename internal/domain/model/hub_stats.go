package model

import "time"

// HubStats is a point-in-time view of the distribution hub.
type HubStats struct {
	Connected   bool          `json:"connected"`
	Subscribers int           `json:"subscribers"`
	Buffered    int           `json:"buffered"`
	Ingested    uint64        `json:"ingested"`
	Delivered   uint64        `json:"delivered"`
	Dropped     uint64        `json:"dropped"`
	Uptime      time.Duration `json:"uptime"`
}
