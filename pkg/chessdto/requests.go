package chessdto

// StartGameRequest creates a game. FEN is optional; blank starts from the
// standard position.
type StartGameRequest struct {
	White string `json:"white"`
	Black string `json:"black"`
	FEN   string `json:"fen,omitempty"`
}

// PlayRequest carries one line of move text.
type PlayRequest struct {
	Input string `json:"input"`
}

// ErrorResponse is the JSON body for a rejected request.
type ErrorResponse struct {
	Error DomainError `json:"error"`
}
