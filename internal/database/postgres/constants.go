package postgres

// Error message prefixes
const (
	ErrMsgGetProgression    = "failed to get progression"
	ErrMsgCommitProgression = "failed to commit progression"
)
