package events

// Event subjects
const (
	RateLimited = "allformats.ratelimit.denied"
)
