package chat

import "errors"

// Status messages shown to the user.
const (
	StatusStreaming    = ""
	StatusComplete     = "Streaming complete."
	StatusEmptyPrompt  = "Please enter a valid prompt."
	StatusBusy         = "A response is already being generated."
	interruptedSuffix  = "\n\n[response interrupted]"
	streamErrorPrefix  = "Error generating response: "
	initErrorPrefix    = "Error initializing OpenAI client: "
	missingErrorPrefix = "Error: "
	settingsErrPrefix  = "Invalid settings: "
)

var (
	ErrEmptyPrompt     = errors.New("empty prompt")
	ErrInvalidSettings = errors.New("invalid settings")
	ErrStream          = errors.New("stream failed")
	ErrBusy            = errors.New("generation already in progress")
)

// streamError keeps the transport error reachable while matching ErrStream.
type streamError struct {
	err error
}

func (e *streamError) Error() string        { return e.err.Error() }
func (e *streamError) Unwrap() error        { return e.err }
func (e *streamError) Is(target error) bool { return target == ErrStream }
