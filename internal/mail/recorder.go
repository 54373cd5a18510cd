package mail

import "sync"

// Recorder is a Mailer for tests: it captures messages and can be told to
// fail.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
	Err  error
}

type Message struct {
	To      string
	Subject string
	Body    string
}

func (r *Recorder) Send(to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.msgs = append(r.msgs, Message{To: to, Subject: subject, Body: body})
	return nil
}

func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}
