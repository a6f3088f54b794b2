package main

import (
	"context"
	"strings"
)

// Evaluator routes a line typed in the repl: lines starting with ':' run
// a builtin command, everything else is sent to the conversation.
type Evaluator struct {
	ctx      context.Context
	sess     *Session
	chatEval func(text string)
}

func NewEvaluator(ctx context.Context, sess *Session, chatEval func(text string)) *Evaluator {
	return &Evaluator{ctx: ctx, sess: sess, chatEval: chatEval}
}

func (e *Evaluator) eval(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if text[0] == ':' {
		// a builtin may hand back text to send, e.g. :read
		if cont := builtinCommandEval(e.ctx, e.sess, text); !cont {
			return
		}
		text = ""
	}
	e.chatEval(text)
}

// builtinCommandEval runs the builtin in text and appends the text it
// returns as a user message. It reports whether there is something new
// to send.
func builtinCommandEval(ctx context.Context, sess *Session, text string) (cont bool) {
	args := splitQuoted(text)
	if len(args) == 0 {
		return false
	}

	text = strings.TrimSpace(builtins.Launch(ctx, args))
	if text != "" {
		sess.Append(&Message{Role: User, Content: text})
		return true
	}
	return false
}
