package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Type string

const (
	TypeDay     Type = "day"
	TypeToday   Type = "today"
	TypeSkip    Type = "skip"
	TypeSave    Type = "save"
	TypeOpen    Type = "open"
	TypeKeep    Type = "keep"
	TypeDone    Type = "done"
	TypeReload  Type = "reload"
	TypeRetry   Type = "retry"
	TypeChat    Type = "chat"
	TypeExplore Type = "explore"
)

var aliases = map[string]Type{
	"go":       TypeDay,
	"back":     TypeToday,
	"next":     TypeSkip,
	"bookmark": TypeSave,
	"unlock":   TypeKeep,
	"continue": TypeKeep,
	"stop":     TypeDone,
	"refresh":  TypeReload,
}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type DayArgs struct {
	// When is YYYY-MM-DD, today, yesterday, tomorrow, or a signed offset.
	When string
}

// TipArgs targets a tip by id. An empty ID means the current tip.
type TipArgs struct {
	ID string
}

type Command struct {
	Type Type
	Raw  string
	Day  *DayArgs
	Tip  *TipArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]
	typ := Type(head)
	if alias, ok := aliases[head]; ok {
		typ = alias
	}

	switch typ {
	case TypeDay:
		return parseDay(input, args)
	case TypeSkip, TypeSave, TypeOpen, TypeKeep:
		return parseTip(input, typ, args)
	case TypeToday, TypeDone, TypeReload, TypeRetry, TypeChat, TypeExplore:
		if len(args) > 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", typ)}
		}
		return Command{Type: typ, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseDay(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "day requires exactly one date"}
	}
	when := strings.ToLower(args[0])
	if !validDay(when) {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unrecognised date: %s", args[0])}
	}
	return Command{Type: TypeDay, Raw: raw, Day: &DayArgs{When: when}}, nil
}

func parseTip(raw string, typ Type, args []string) (Command, error) {
	if len(args) > 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes at most one tip id", typ)}
	}
	id := ""
	if len(args) == 1 {
		id = args[0]
	}
	return Command{Type: typ, Raw: raw, Tip: &TipArgs{ID: id}}, nil
}

func validDay(when string) bool {
	switch when {
	case "today", "yesterday", "tomorrow":
		return true
	}
	if strings.HasPrefix(when, "-") || strings.HasPrefix(when, "+") {
		_, err := strconv.Atoi(when)
		return err == nil
	}
	_, err := time.Parse("2006-01-02", when)
	return err == nil
}
