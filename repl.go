package main

import (
	"strings"

	"github.com/c-bata/go-prompt"
)

// LivePrompt is the repl prefix, e.g. "studio(1b9d6bcd)> ".
type LivePrompt struct {
	Prefix    string
	Delimiter string
	Session   func() string
}

func (lp *LivePrompt) Render() (string, bool) {
	prefix := lp.Prefix
	if lp.Session != nil {
		if id := shortSessionID(lp.Session()); id != "" {
			prefix += "(" + id + ")"
		}
	}
	return prefix + lp.Delimiter + " ", true
}

// shortSessionID keeps the first block of the uuid, enough to tell
// sessions apart in the prompt.
func shortSessionID(sid string) string {
	if !strings.HasPrefix(sid, sessionPrefix) {
		return ""
	}
	fields := strings.SplitN(strings.TrimPrefix(sid, sessionPrefix), "-", 3)
	if len(fields) != 3 {
		return ""
	}
	return fields[1]
}

type Repl struct {
	lp *LivePrompt
}

func NewRepl(lp *LivePrompt) *Repl {
	return &Repl{lp: lp}
}

// Loop reads lines until :exit or ctrl+d on an empty line.
func (r *Repl) Loop(e *Evaluator) error {
	p := prompt.New(e.eval, complete,
		prompt.OptionTitle("studio"),
		prompt.OptionLivePrefix(r.lp.Render),
		prompt.OptionPrefixTextColor(prompt.Green),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && builtins.Exiting()
		}),
	)
	p.Run()
	return nil
}

func complete(d prompt.Document) []prompt.Suggest {
	return builtinCompleter(d)
}
