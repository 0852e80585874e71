package imagegen

import "context"

// InlineImage is an image sent to or returned by the model inline.
type InlineImage struct {
	MIME string
	Data []byte
}

// Request describes one image-generation call. Images ride along as
// conditioning inputs (person photo, garment, a previous pass's output).
type Request struct {
	Prompt string
	Images []InlineImage
}

// Result is the first image candidate returned by the model plus any text the
// model produced alongside it.
type Result struct {
	Data  []byte
	MIME  string
	Text  string
	Model string
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}
