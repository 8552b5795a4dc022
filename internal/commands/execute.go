package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Day     func(DayArgs) (Result, error)
	Today   func() (Result, error)
	Skip    func(TipArgs) (Result, error)
	Save    func(TipArgs) (Result, error)
	Open    func(TipArgs) (Result, error)
	Keep    func(TipArgs) (Result, error)
	Done    func() (Result, error)
	Reload  func() (Result, error)
	Retry   func() (Result, error)
	Chat    func() (Result, error)
	Explore func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeDay:
		if handlers.Day == nil || cmd.Day == nil {
			return missing(cmd.Type)
		}
		return handlers.Day(*cmd.Day)
	case TypeSkip, TypeSave, TypeOpen, TypeKeep:
		fn := map[Type]func(TipArgs) (Result, error){
			TypeSkip: handlers.Skip,
			TypeSave: handlers.Save,
			TypeOpen: handlers.Open,
			TypeKeep: handlers.Keep,
		}[cmd.Type]
		if fn == nil {
			return missing(cmd.Type)
		}
		args := TipArgs{}
		if cmd.Tip != nil {
			args = *cmd.Tip
		}
		return fn(args)
	case TypeToday, TypeDone, TypeReload, TypeRetry, TypeChat, TypeExplore:
		fn := map[Type]func() (Result, error){
			TypeToday:   handlers.Today,
			TypeDone:    handlers.Done,
			TypeReload:  handlers.Reload,
			TypeRetry:   handlers.Retry,
			TypeChat:    handlers.Chat,
			TypeExplore: handlers.Explore,
		}[cmd.Type]
		if fn == nil {
			return missing(cmd.Type)
		}
		return fn()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) (Result, error) {
	return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
