package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/day 2026-02-07", TypeDay},
		{"day -2", TypeDay},
		{"go tomorrow", TypeDay},
		{"today", TypeToday},
		{"/skip", TypeSkip},
		{"save extra-1", TypeSave},
		{"open daily", TypeOpen},
		{"keep extra-3", TypeKeep},
		{"unlock", TypeKeep},
		{"done", TypeDone},
		{"refresh", TypeReload},
		{"retry", TypeRetry},
		{"chat", TypeChat},
		{"explore", TypeExplore},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]ErrorCode{
		"":               ErrCodeEmptyInput,
		"/":              ErrCodeEmptyInput,
		"/unknown do x":  ErrCodeUnknownCommand,
		"day":            ErrCodeInvalidArgument,
		"day someday":    ErrCodeInvalidArgument,
		"day 2026-13-01": ErrCodeInvalidArgument,
		"day -x":         ErrCodeInvalidArgument,
		"skip a b":       ErrCodeInvalidArgument,
		"done now":       ErrCodeInvalidArgument,
	}
	for in, want := range cases {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != want {
			t.Fatalf("parse %q: expected %s, got %v", in, want, err)
		}
	}
}

func TestParseKeepsArguments(t *testing.T) {
	cmd, err := Parse("day Yesterday")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Day == nil || cmd.Day.When != "yesterday" {
		t.Fatalf("unexpected day args: %+v", cmd.Day)
	}

	cmd, err = Parse("skip extra-2")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Tip == nil || cmd.Tip.ID != "extra-2" {
		t.Fatalf("unexpected tip args: %+v", cmd.Tip)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/save extra-1")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Save: func(a TipArgs) (Result, error) {
			called = true
			if a.ID != "extra-1" {
				t.Fatalf("unexpected id: %q", a.ID)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}

	cmd, _ = Parse("done")
	res, err = Execute(cmd, Handlers{Done: func() (Result, error) { return Result{Message: "closed"}, nil }})
	if err != nil || res.Message != "closed" {
		t.Fatalf("unexpected done dispatch: %+v %v", res, err)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	for _, in := range []string{"day today", "skip", "retry"} {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		_, err = Execute(cmd, Handlers{})
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
			t.Fatalf("%q: expected missing handler error, got %v", in, err)
		}
	}
}
