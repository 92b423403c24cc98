package handler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tailored-agentic-units/radadapter/handler"
	"github.com/tailored-agentic-units/radadapter/radius"
	"github.com/tailored-agentic-units/radadapter/rlm"
)

func TestRegistry_RegisterReplace(t *testing.T) {
	r := handler.NewRegistry()
	f := func(spec handler.Spec, deps handler.Deps) (handler.Handler, error) {
		return handler.Static(spec.Name, rlm.OK), nil
	}

	if err := r.Register("", f); !errors.Is(err, handler.ErrEmptyName) {
		t.Errorf("Register(\"\") error = %v, want ErrEmptyName", err)
	}
	if err := r.Register("custom", f); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register("custom", f); !errors.Is(err, handler.ErrAlreadyExists) {
		t.Errorf("second Register() error = %v, want ErrAlreadyExists", err)
	}
	if err := r.Replace("custom", f); err != nil {
		t.Errorf("Replace() error = %v", err)
	}
	if err := r.Replace("missing", f); !errors.Is(err, handler.ErrUnknownKind) {
		t.Errorf("Replace(missing) error = %v, want ErrUnknownKind", err)
	}
	if _, ok := r.Lookup("custom"); !ok {
		t.Error("Lookup(custom) = false, want true")
	}
}

func TestDefaultRegistry_HasBuiltins(t *testing.T) {
	want := map[string]bool{
		handler.KindStatic:  true,
		handler.KindRequire: true,
		handler.KindReply:   true,
		handler.KindLog:     true,
	}
	for _, k := range handler.Kinds() {
		delete(want, k)
	}
	if len(want) != 0 {
		t.Errorf("default registry missing kinds %v", want)
	}
}

func TestRegisterBuiltins_ReplacesExisting(t *testing.T) {
	r := handler.NewRegistry()
	custom := func(spec handler.Spec, deps handler.Deps) (handler.Handler, error) {
		return handler.Static(spec.Name, rlm.FAIL), nil
	}
	if err := r.Register(handler.KindStatic, custom); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := handler.RegisterBuiltins(r); err != nil {
		t.Fatalf("RegisterBuiltins() error = %v", err)
	}
	if err := handler.RegisterBuiltins(r); err != nil {
		t.Fatalf("second RegisterBuiltins() error = %v", err)
	}

	if got := len(r.Kinds()); got != 4 {
		t.Errorf("Kinds() has %d entries, want 4", got)
	}

	p, err := r.Build([]handler.Spec{{Kind: handler.KindStatic, Result: "handled"}}, handler.Deps{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	code, _ := p.Handlers()[0].Process(context.Background(), nil)
	if code != rlm.HANDLED {
		t.Errorf("static handler returned %s, want HANDLED from the builtin", code)
	}
}

func TestBuild_Pipeline(t *testing.T) {
	obs := &captureObserver{}
	p, err := handler.Build([]handler.Spec{
		{Name: "need-user", Kind: handler.KindRequire, Attribute: radius.AttrUserName},
		{Kind: handler.KindLog},
		{Name: "welcome", Kind: handler.KindReply, Reply: []handler.AttributeSpec{
			{Type: radius.AttrReplyMessage, Value: "welcome"},
			{Type: radius.AttrSessionTimeout, Op: ":=", Value: "3600"},
		}},
		{Name: "done", Kind: handler.KindStatic, Result: "handled"},
	}, handler.Deps{Observer: obs})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	names := p.Names()
	if names[1] != "log-1" {
		t.Errorf("unnamed spec got name %q, want %q", names[1], "log-1")
	}

	req := newRequest(t)
	code, err := p.Run(context.Background(), req, obs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != rlm.HANDLED {
		t.Errorf("Run() = %s, want HANDLED", code)
	}

	items := req.ConfigItems().All()
	if len(items) != 2 {
		t.Fatalf("config items = %d, want 2", len(items))
	}
	if items[1].Op != radius.OpSet || string(items[1].Value) != "3600" {
		t.Errorf("second item = %v %s, want := 3600", items[1], items[1].Op)
	}

	var logged bool
	for _, ev := range obs.events {
		if ev.Type == handler.EventLog {
			logged = true
		}
	}
	if !logged {
		t.Error("log handler emitted no event")
	}
}

func TestBuild_RequireMissingAttribute(t *testing.T) {
	p, err := handler.Build([]handler.Spec{
		{Name: "need-state", Kind: handler.KindRequire, Attribute: radius.AttrState, Missing: "invalid"},
		{Name: "never", Kind: handler.KindStatic, Result: "ok"},
	}, handler.Deps{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	code, err := p.Run(context.Background(), newRequest(t), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != rlm.INVALID {
		t.Errorf("Run() = %s, want INVALID", code)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec handler.Spec
		want error
	}{
		{name: "missing kind", spec: handler.Spec{Name: "x"}, want: handler.ErrEmptyName},
		{name: "unknown kind", spec: handler.Spec{Kind: "ldap"}, want: handler.ErrUnknownKind},
		{name: "static without result", spec: handler.Spec{Kind: handler.KindStatic}, want: handler.ErrInvalidOptions},
		{name: "static bad result", spec: handler.Spec{Kind: handler.KindStatic, Result: "great"}, want: rlm.ErrUnknownCode},
		{name: "require without attribute", spec: handler.Spec{Kind: handler.KindRequire}, want: handler.ErrInvalidOptions},
		{name: "reply empty", spec: handler.Spec{Kind: handler.KindReply}, want: handler.ErrInvalidOptions},
		{name: "reply bad op", spec: handler.Spec{Kind: handler.KindReply, Reply: []handler.AttributeSpec{{Type: 18, Op: "=~", Value: "x"}}}, want: radius.ErrUnknownOp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Build([]handler.Spec{tt.spec}, handler.Deps{})
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReply_ValuesNotShared(t *testing.T) {
	p, err := handler.Build([]handler.Spec{
		{Kind: handler.KindReply, Reply: []handler.AttributeSpec{{Type: radius.AttrClass, Value: "gold"}}},
	}, handler.Deps{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	first := newRequest(t)
	if _, err := p.Run(context.Background(), first, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	attr, _ := first.ConfigItems().Get(radius.AttrClass)
	attr.Value[0] = 'X'

	second := newRequest(t)
	if _, err := p.Run(context.Background(), second, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got, _ := second.ConfigItems().Get(radius.AttrClass)
	if string(got.Value) != "gold" {
		t.Errorf("second request value = %q, want %q", got.Value, "gold")
	}
}
