package dto

// Request
type ShortenRequest struct {
	URL string `json:"url"`
}

// Response
type (
	ShortenResponse struct {
		ShortURL string `json:"short_url"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
	}
)
