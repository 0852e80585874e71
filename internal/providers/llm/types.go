package llm

import "context"

// ImageAttachment is an inline image passed to a multimodal completion.
type ImageAttachment struct {
	MIME string
	Data []byte
}

// CompletionRequest describes one chat completion. When Images are present the
// user message is sent as a multi-part vision payload.
type CompletionRequest struct {
	System      string
	User        string
	Images      []ImageAttachment
	Temperature float64
	// ForceJSON asks the provider for a json_object response format.
	ForceJSON bool
}

// Completer is the contract implemented by chat/completions providers. It
// returns the raw text of the first choice; callers own any JSON parsing.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
