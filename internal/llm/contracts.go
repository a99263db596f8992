package llm

import "context"

// ListingFields is the normalized shape we want from the model when
// extracting a property listing from a portal page.
type ListingFields struct {
	Title       string  `json:"title"`
	Type        string  `json:"type"`        // should match the property taxonomy
	Price       float64 `json:"price"`       // numeric, no currency symbol
	Address     string  `json:"address"`
	Area        float64 `json:"area"`        // m²
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   int     `json:"bathrooms"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
}

// Gateway is the inference surface the rest of the system depends on.
type Gateway interface {
	// Suggest returns model-written marketing copy for the prompt. It never
	// fails: unrecoverable errors degrade into a fixed fallback string.
	Suggest(ctx context.Context, prompt string) string

	// ExtractFromURL asks the model to ground on the page at url and emit a
	// listing payload. A response with no parseable payload yields an empty
	// map; transport failures are returned to the caller.
	ExtractFromURL(ctx context.Context, url string) (map[string]any, error)

	// EditImage sends the image in dataURI plus an editing instruction to an
	// image-capable model and returns the edited image as a data URI.
	EditImage(ctx context.Context, dataURI, instruction string) (string, error)
}
