package policy

// Response is one scripted answer for a Script prompter.
type Response struct {
	Value  string
	Cancel bool
}

// Accept returns a response carrying value.
func Accept(value string) Response { return Response{Value: value} }

// Cancelled returns a cancelled response.
func Cancelled() Response { return Response{Cancel: true} }

// Script is a Prompter that replays pre-recorded responses in order. Asking
// past the end of the script cancels. Used by tests and by front ends that
// collect answers before invoking the policy.
type Script struct {
	Responses []Response
	next      int
}

// Ask implements Prompter.
func (s *Script) Ask(_, _ string) (string, bool) {
	if s.next >= len(s.Responses) {
		return "", false
	}
	r := s.Responses[s.next]
	s.next++
	if r.Cancel {
		return "", false
	}
	return r.Value, true
}
