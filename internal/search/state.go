package search

// State is a step of one search cycle.
type State int

const (
	// Idle waits for the next input change.
	Idle State = iota
	// Debouncing waits for the input to settle.
	Debouncing
	// CacheHit published a cached result list without a network call.
	CacheHit
	// RateLimited was refused by the local limiter; results are unchanged.
	RateLimited
	// Fetching has a catalog request in flight.
	Fetching
	// Success published a freshly fetched result list.
	Success
	// Failed surfaced a fetch error; results are unchanged.
	Failed
)

var stateNames = map[State]string{
	Idle:        "idle",
	Debouncing:  "debouncing",
	CacheHit:    "cache-hit",
	RateLimited: "rate-limited",
	Fetching:    "fetching",
	Success:     "success",
	Failed:      "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the state ends a cycle.
func (s State) Terminal() bool {
	switch s {
	case CacheHit, RateLimited, Success, Failed:
		return true
	default:
		return false
	}
}
