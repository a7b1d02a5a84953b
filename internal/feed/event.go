// Package feed implements the social stream fan-out: rendering incoming
// events and delivering them to every channel subscribed to the event's
// source. Delivery is at-least-once and per-destination independent; there
// is no retry, no backpressure, and no ordering across sources.
package feed

// MediaType tags an attachment as an inline-renderable image or a video
// that needs a proxy link.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Media is one attachment on an event.
type Media struct {
	URL  string
	Type MediaType
}

// Event is an already-deserialized record delivered by the external stream
// client. Events arrive at-least-once with no ordering guarantee across
// sources; each one is handled independently and ids are never assumed
// monotonic.
type Event struct {
	// ID is the platform-unique event id.
	ID string
	// SourceID identifies the authoring account; subscriptions key on it.
	SourceID string
	// AuthorName is the display name, AuthorHandle the @-handle without
	// the leading "@".
	AuthorName   string
	AuthorHandle string
	// AvatarURL is the author's profile image, used in the embed footer.
	AvatarURL string
	// Text is the event body.
	Text string
	// Media holds zero or more attachments.
	Media []Media
}
