package ai

// StreamDelta represents a single chunk from a streaming AI response.
type StreamDelta struct {
	// Token is the text fragment. Empty string is valid and still counts as
	// content unless Null is set.
	Token string
	// Null is true when the chunk carried no content at all (role-only or
	// finish chunks).
	Null bool
	// Done is true when the stream is complete.
	Done bool
	// Err is non-nil if the stream encountered an error.
	Err error
}

// HasText reports whether the delta carries assistant text.
func (d StreamDelta) HasText() bool {
	return !d.Null && !d.Done && d.Err == nil
}
