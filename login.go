package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shafreeck/cortana"
	"github.com/shafreeck/studio/auth"
	"github.com/shafreeck/studio/tui"
	"golang.org/x/term"
)

// LoginCommand saves the access token used by every api call
func (s *Studio) LoginCommand() {
	opts := struct {
		CommonOptions
		Token   string `cortana:"--token, -t, , the access token, read from a prompt when absent"`
		Refresh string `cortana:"--refresh-token, -, , the refresh token"`
	}{}
	cortana.Parse(&opts)
	s.setup(&opts.CommonOptions)

	token := strings.TrimSpace(opts.Token)
	if token == "" && !term.IsTerminal(int(os.Stdin.Fd())) {
		text, err := s.readStdin()
		if err != nil {
			s.Fatalln(err)
		}
		token = strings.TrimSpace(text)
	}
	if token == "" {
		vals, err := tui.Display[tui.Model[[]string], []string](context.Background(),
			tui.NewConfigInputModel(tui.Field{Placeholder: "access token", Secret: true}))
		if err != nil {
			s.Fatalln(err)
		}
		// aborted
		if len(vals) == 0 || vals[0] == "" {
			return
		}
		token = vals[0]
	}

	store := s.tokenStore(&opts.CommonOptions)
	if !store.Valid(token) {
		s.Fatalln(auth.ErrTokenExpired)
	}
	if err := store.Save(token, opts.Refresh); err != nil {
		s.Fatalln("save token failed:", err)
	}
	s.logger.Debug("token saved", "path", store.Path())
	s.Println("logged in")
	s.whoami(store)
}

// LogoutCommand removes the saved token
func (s *Studio) LogoutCommand() {
	opts := struct {
		CommonOptions
		Yes bool `cortana:"--yes, -y, false, do not ask for confirmation"`
	}{}
	cortana.Parse(&opts)
	s.setup(&opts.CommonOptions)

	store := s.tokenStore(&opts.CommonOptions)
	if _, err := store.Load(); errors.Is(err, auth.ErrNotLoggedIn) {
		s.Println("not logged in")
		return
	}

	if !opts.Yes && tui.IsRenderable() {
		ok, err := tui.Display[tui.Model[bool], bool](context.Background(), tui.NewConfirmModel("Log out of studio?"))
		if err != nil {
			s.Fatalln(err)
		}
		if !ok {
			return
		}
	}
	if err := store.Clear(); err != nil {
		s.Fatalln(err)
	}
	s.Println("logged out")
}

// WhoamiCommand prints who the saved token belongs to
func (s *Studio) WhoamiCommand() {
	opts := struct {
		CommonOptions
	}{}
	cortana.Parse(&opts)
	s.setup(&opts.CommonOptions)

	s.whoami(s.tokenStore(&opts.CommonOptions))
}

func (s *Studio) whoami(store *auth.TokenStore) {
	tok, err := store.Load()
	if err != nil {
		s.Fatalln(describeError(err))
	}
	for _, line := range describeToken(tok, store.Valid(tok.AccessToken)) {
		fmt.Fprintln(s.stdout, line)
	}
}

// describeToken lists what is known about a token, claims are only
// available for JWTs.
func describeToken(tok *auth.Token, valid bool) []string {
	lines := []string{fmt.Sprintf("%-10s %s", "saved", tok.SavedAt.Local().Format(time.DateTime))}
	claims, err := auth.ParseClaims(tok.AccessToken)
	if err != nil {
		return append(lines, fmt.Sprintf("%-10s %s", "token", "opaque"))
	}
	if claims.Subject != "" {
		lines = append(lines, fmt.Sprintf("%-10s %s", "subject", claims.Subject))
	}
	if claims.Email != "" {
		lines = append(lines, fmt.Sprintf("%-10s %s", "email", claims.Email))
	}
	if !claims.ExpiresAt.IsZero() {
		state := "valid"
		if !valid {
			state = "expired"
		}
		lines = append(lines, fmt.Sprintf("%-10s %s (%s)", "expires", claims.ExpiresAt.Local().Format(time.DateTime), state))
	}
	return lines
}
