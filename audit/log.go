package audit

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultRetention is the default in-memory event cap.
const DefaultRetention = 10000

// DefaultFailureWindow is the trailing window the detector scans for
// repeated login failures.
const DefaultFailureWindow = 30 * time.Minute

// DefaultFailureThreshold is the same-IP failure count that triggers
// a suspicious_activity event.
const DefaultFailureThreshold = 5

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Retention        int
	FailureWindow    time.Duration
	FailureThreshold int
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return Config{
		Retention:        DefaultRetention,
		FailureWindow:    DefaultFailureWindow,
		FailureThreshold: DefaultFailureThreshold,
	}
}

// Summary aggregates the event log over a trailing window.
type Summary struct {
	PeriodHours      int               `json:"period_hours"`
	TotalEvents      int               `json:"total_events"`
	LoginSuccesses   int               `json:"login_successes"`
	LoginFailures    int               `json:"login_failures"`
	AccessDenied     int               `json:"access_denied"`
	Violations       int               `json:"violations"`
	SuspiciousEvents int               `json:"suspicious_events"`
	EventsByType     map[EventType]int `json:"events_by_type"`
	TopIPs           []IPEventCount    `json:"top_ips"`
}

// IPEventCount pairs a source address with the number of events it
// generated in the summary window, whatever their type.
type IPEventCount struct {
	IPAddress string `json:"ip_address"`
	Count     int    `json:"count"`
}

// Recorder keeps an ordered in-memory log of audit events, forwards
// each to the sink exactly once, and runs anomaly analysis inline so
// the suspicious_activity event lands adjacent to its trigger.
type Recorder struct {
	config Config
	sink   Sink

	mu     sync.Mutex
	events []Event
}

// NewRecorder describes the newrecorder operation and its observable behavior.
//
// NewRecorder does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRecorder(cfg Config, sink Sink) *Recorder {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	if cfg.FailureWindow <= 0 {
		cfg.FailureWindow = DefaultFailureWindow
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	return &Recorder{
		config: cfg,
		sink:   sink,
		events: make([]Event, 0, 256),
	}
}

// Log assigns the event an ID and timestamp if missing, appends it in
// call order, forwards it to the sink, and analyzes the stream for
// anomalies. The whole operation holds the log lock, so concurrent
// callers observe a single total order.
func (r *Recorder) Log(ctx context.Context, event Event) Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	event = r.append(event)
	r.sink.Emit(ctx, event)

	if event.Type == EventLoginFailed {
		r.analyzeLoginFailures(ctx, event)
	}

	return event
}

// append stamps and stores an event. Caller holds r.mu.
func (r *Recorder) append(event Event) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	r.events = append(r.events, event)
	if len(r.events) > r.config.Retention {
		overflow := len(r.events) - r.config.Retention
		r.events = append(r.events[:0], r.events[overflow:]...)
	}

	return event
}

// analyzeLoginFailures scans backward for login failures from the same
// address within the trailing window. It fires exactly when the count,
// including the triggering event, equals the threshold, so a sustained
// burst produces one alert rather than one per extra failure.
// Caller holds r.mu.
func (r *Recorder) analyzeLoginFailures(ctx context.Context, trigger Event) {
	if trigger.IPAddress == "" {
		return
	}

	cutoff := trigger.Timestamp.Add(-r.config.FailureWindow)
	count := 0
	for i := len(r.events) - 1; i >= 0; i-- {
		e := r.events[i]
		if e.Timestamp.Before(cutoff) {
			break
		}
		if e.Type == EventLoginFailed && e.IPAddress == trigger.IPAddress {
			count++
		}
	}

	if count != r.config.FailureThreshold {
		return
	}

	alert := r.append(Event{
		Type:      EventSuspiciousActivity,
		Severity:  SeverityHigh,
		Username:  trigger.Username,
		IPAddress: trigger.IPAddress,
		UserAgent: trigger.UserAgent,
		Result:    "detected",
		Details: map[string]string{
			"pattern_type":        "repeated_login_failures",
			"failure_count":       strconv.Itoa(count),
			"time_window_minutes": strconv.Itoa(int(r.config.FailureWindow.Minutes())),
		},
	})
	r.sink.Emit(ctx, alert)
}

// SecuritySummary aggregates the trailing hours of the log in a
// single backward scan.
func (r *Recorder) SecuritySummary(hours int) Summary {
	if hours <= 0 {
		hours = 24
	}
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

	summary := Summary{
		PeriodHours:  hours,
		EventsByType: make(map[EventType]int),
	}
	eventsByIP := make(map[string]int)

	r.mu.Lock()
	for i := len(r.events) - 1; i >= 0; i-- {
		e := r.events[i]
		if e.Timestamp.Before(cutoff) {
			break
		}

		summary.TotalEvents++
		summary.EventsByType[e.Type]++
		if e.IPAddress != "" {
			eventsByIP[e.IPAddress]++
		}

		switch e.Type {
		case EventLoginSuccess:
			summary.LoginSuccesses++
		case EventLoginFailed:
			summary.LoginFailures++
		case EventAccessDenied:
			summary.AccessDenied++
		case EventSecurityViolation, EventCSRFAttackDetected:
			summary.Violations++
		case EventSuspiciousActivity:
			summary.SuspiciousEvents++
		}
	}
	r.mu.Unlock()

	summary.TopIPs = topIPs(eventsByIP, 10)
	return summary
}

func topIPs(counts map[string]int, limit int) []IPEventCount {
	ranked := make([]IPEventCount, 0, len(counts))
	for ip, count := range counts {
		ranked = append(ranked, IPEventCount{IPAddress: ip, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].IPAddress < ranked[j].IPAddress
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Recent returns up to limit most recent events, newest last.
func (r *Recorder) Recent(limit int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.events) {
		limit = len(r.events)
	}
	out := make([]Event, limit)
	copy(out, r.events[len(r.events)-limit:])
	return out
}

// EventsOfType returns all retained events of the given type, oldest
// first.
func (r *Recorder) EventsOfType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// SweepOlderThan drops events older than age and returns how many
// were removed.
func (r *Recorder) SweepOlderThan(age time.Duration) int {
	cutoff := time.Now().Add(-age)

	r.mu.Lock()
	defer r.mu.Unlock()

	// Events are appended in time order, so find the first survivor.
	idx := sort.Search(len(r.events), func(i int) bool {
		return !r.events[i].Timestamp.Before(cutoff)
	})
	if idx == 0 {
		return 0
	}

	removed := idx
	r.events = append(r.events[:0], r.events[idx:]...)
	return removed
}

// Size returns the number of retained events.
func (r *Recorder) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
