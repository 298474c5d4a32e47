package chessdto

// MoveResult summarises one accepted submission.
type MoveResult struct {
	Snapshot *Snapshot `json:"snapshot"`
	Action   string    `json:"action"`
	Move     string    `json:"move,omitempty"`
	SAN      string    `json:"san,omitempty"`
	Finished bool      `json:"finished"`
}
