package defs

// Common labels for logging
const (
	LabelComponent = "component"
	LabelName      = "name"
	LabelPart      = "part"

	LabelURL   = "url"
	LabelTopic = "topic"
)

// SavedRequestsKey is the storage key holding the JSON array of requests saved for later delivery
const SavedRequestsKey = "gc_client_logger_requests"

// TruncatedText replaces truncated details and is appended to clipped messages
const TruncatedText = "[[TRUNCATED]]"

// TruncatedMessageLength is how many characters of a message are kept when the message itself has to be clipped
const TruncatedMessageLength = 150
