package command

import (
	"context"
	"pbpbot/internal/core/domain"
	"pbpbot/internal/core/service"
	"sync"
)

type sent struct {
	kind  string
	reply domain.Reply
}

// recordingResponder captures every raw response call made through an interaction.
type recordingResponder struct {
	mu        sync.Mutex
	calls     []sent
	deferErr  error
	editErr   error
	ephemeral bool
}

func (r *recordingResponder) Defer(_ context.Context, ephemeral bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, sent{kind: "defer"})
	r.ephemeral = ephemeral
	return r.deferErr
}

func (r *recordingResponder) Reply(_ context.Context, reply domain.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, sent{kind: "reply", reply: reply})
	return nil
}

func (r *recordingResponder) Edit(_ context.Context, reply domain.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, sent{kind: "edit", reply: reply})
	return r.editErr
}

func (r *recordingResponder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.kind
	}
	return out
}

// last returns the most recent reply or edit.
func (r *recordingResponder) last() domain.Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].kind != "defer" {
			return r.calls[i].reply
		}
	}
	return domain.Reply{}
}

func (r *recordingResponder) edits() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		if c.kind == "edit" {
			out = append(out, c.reply.Content)
		}
	}
	return out
}

func newTestInteraction(inv *domain.Invocation) (*service.Interaction, *recordingResponder) {
	if inv.ID == "" {
		inv.ID = "interaction"
	}
	if inv.Options == nil {
		inv.Options = map[string]domain.OptionValue{}
	}
	r := &recordingResponder{}
	return service.NewInteraction(inv, r), r
}

func stringOpt(v string) domain.OptionValue {
	return domain.OptionValue{Type: domain.OptionString, String: v}
}

func intOpt(v int64) domain.OptionValue {
	return domain.OptionValue{Type: domain.OptionInteger, Int: v}
}

func userOpt(u domain.User) domain.OptionValue {
	return domain.OptionValue{Type: domain.OptionUser, User: &u}
}
