package digest

import (
	"time"

	"writer_digest_bot/internal/domain/chat"
)

// Role is the part a destination plays in the daily digest.
type Role string

const (
	RoleGreeting Role = "greeting"
	RoleWeather  Role = "weather"
	RoleNews     Role = "news"
)

// Roles lists the sub-actions in their fixed output order.
var Roles = []Role{RoleGreeting, RoleWeather, RoleNews}

// Targets is the configured destination set, immutable after startup.
type Targets map[Role]chat.Destination

// Result is the outcome of one sub-action: a payload on success, a reason on failure.
type Result struct {
	Role    Role
	Payload chat.Message
	Reason  error
	// Skipped is set when the destination was not configured or not resolvable.
	Skipped bool
	// Delivered is false when sending to the destination failed.
	Delivered bool
}

func Success(role Role, payload chat.Message) Result {
	return Result{Role: role, Payload: payload}
}

func Failure(role Role, reason error) Result {
	return Result{Role: role, Reason: reason}
}

// Failed reports whether the sub-action has to fall back to the failure notice.
func (r Result) Failed() bool {
	return r.Reason != nil
}

// Run is one digest execution. It is built per tick and discarded afterwards.
type Run struct {
	ID      string
	Date    time.Time
	Results []Result
}

// Result returns the result for role, if the run produced one.
func (r *Run) Result(role Role) (Result, bool) {
	for _, res := range r.Results {
		if res.Role == role {
			return res, true
		}
	}
	return Result{}, false
}

// Forecast is today's forecast for the configured coordinates.
type Forecast struct {
	MaxTemp     float64
	MinTemp     float64
	WeatherCode int
	HasCode     bool
}

// Headline is one news feed entry.
type Headline struct {
	Title string
	Link  string
}
