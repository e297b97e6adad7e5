// Package analytics records what happened to every link the pipeline processed.
package analytics

import "time"

const (
	TopicLinkResolved = "link.resolved"
	TopicLinkFailed   = "link.failed"
)

// Origin names the client that ran the pipeline.
type Origin string

const (
	OriginAPI Origin = "api"
	OriginCLI Origin = "cli"
)

// LinkResolvedEvent is emitted after a share link resolved to a canonical URL.
type LinkResolvedEvent struct {
	EventID      string    `json:"eventId"`
	InputURL     string    `json:"inputUrl"`
	CanonicalURL string    `json:"canonicalUrl"`
	Creator      string    `json:"creator,omitempty"`
	Strategy     string    `json:"strategy"`
	Validated    bool      `json:"validated"`
	Origin       Origin    `json:"origin"`
	ResolvedAt   time.Time `json:"resolvedAt"`
	ClientIP     string    `json:"clientIp,omitempty"`
	UserAgent    string    `json:"userAgent,omitempty"`
}

// LinkFailedEvent is emitted when validation or resolution failed.
type LinkFailedEvent struct {
	EventID   string    `json:"eventId"`
	InputURL  string    `json:"inputUrl"`
	Strategy  string    `json:"strategy"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error"`
	Origin    Origin    `json:"origin"`
	FailedAt  time.Time `json:"failedAt"`
	ClientIP  string    `json:"clientIp,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
}
