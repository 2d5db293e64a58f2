// Package reporting defines the output boundary of a smoke-test run. The
// check engine emits (kind, text) pairs and has no dependency on how they
// are rendered; the console sink here is one rendering, and tests install a
// recording sink instead.
package reporting

// Kind classifies a message for the sink.
type Kind string

const (
	// KindStep announces a step the run is about to perform.
	KindStep Kind = "step"
	// KindSuccess reports a passed check.
	KindSuccess Kind = "success"
	// KindFailure reports a failed check.
	KindFailure Kind = "failure"
	// KindHint carries an optional remediation hint after a failure.
	KindHint Kind = "hint"
	// KindInfo carries neutral progress or summary text.
	KindInfo Kind = "info"
)

// Sink consumes run output. Implementations must tolerate being called from
// the single check goroutine only; no locking is required of them.
type Sink interface {
	Report(kind Kind, text string)
}

// NopSink discards everything. Useful for library callers that only want
// the returned results.
type NopSink struct{}

func (NopSink) Report(Kind, string) {}

// Message is one recorded (kind, text) pair.
type Message struct {
	Kind Kind
	Text string
}

// Recorder is a Sink that remembers every message, in order. Test helper.
type Recorder struct {
	Messages []Message
}

func (r *Recorder) Report(kind Kind, text string) {
	r.Messages = append(r.Messages, Message{Kind: kind, Text: text})
}

// Texts returns the recorded texts for the given kind, in order.
func (r *Recorder) Texts(kind Kind) []string {
	var out []string
	for _, m := range r.Messages {
		if m.Kind == kind {
			out = append(out, m.Text)
		}
	}
	return out
}
