package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/shafreeck/cortana"
	"github.com/shafreeck/studio/auth"
	"github.com/shafreeck/studio/chat"
	"github.com/shafreeck/studio/tui"
	"golang.org/x/net/proxy"
	"gopkg.in/yaml.v3"
)

// Studio is the entry of the command line
type Studio struct {
	textStyle      lipgloss.Style
	errStyle       lipgloss.Style
	promptStyle    lipgloss.Style
	highlightStyle lipgloss.Style

	logger *slog.Logger

	// the input/output
	stdin  io.ReadCloser
	stdout io.Writer
	stderr io.Writer
}

type StudioOption func(s *Studio)

func WithStdin(stdin io.ReadCloser) StudioOption {
	return func(s *Studio) {
		s.stdin = stdin
	}
}
func WithStdout(stdout io.Writer) StudioOption {
	return func(s *Studio) {
		s.stdout = stdout
	}
}
func WithStderr(stderr io.Writer) StudioOption {
	return func(s *Studio) {
		s.stderr = stderr
	}
}

func New(opts ...StudioOption) *Studio {
	s := &Studio{
		errStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("#e61919")), //red
		textStyle:      lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Dark: "#79b3ec", Light: "#1d73c9"}),
		highlightStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#0aacf8")),
		promptStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("#13f911")), //green
		stdin:          os.Stdin,
		stdout:         os.Stdout,
		stderr:         os.Stderr,
	}

	for _, opt := range opts {
		opt(s)
	}
	s.logger = newLogger(s.stderr, false)
	return s
}

// CommonOptions are shared by every command that talks to the API.
type CommonOptions struct {
	API     string        `cortana:"--api, -, http://localhost:8080/v1, the studio api endpoint" yaml:"api,omitempty"`
	Socks5  string        `cortana:"--socks5, -, , set the socks5 proxy" yaml:"socks5,omitempty"`
	Timeout time.Duration `cortana:"--timeout, -, 180s, the timeout duration for a request" yaml:"timeout,omitempty"`
	Dir     string        `cortana:"--dir, -, ~/.studio, the studio directory" yaml:"dir,omitempty"`
	Theme   string        `cortana:"--theme, -, auto, the color theme: auto, dark or light" yaml:"theme,omitempty"`
	Verbose bool          `cortana:"--verbose, -v, false, print verbose messages" yaml:"verbose,omitempty"`
}

// setup applies the common options: it creates the studio directories
// and switches the logger to debug when verbose.
func (s *Studio) setup(opts *CommonOptions) {
	opts.Dir = expandPath(opts.Dir)
	if err := initStudioDirs(opts.Dir); err != nil {
		s.Fatalln("initialize studio directories failed:", err)
	}
	s.logger = newLogger(s.stderr, opts.Verbose)
	slog.SetDefault(s.logger)
}

func (s *Studio) theme(opts *CommonOptions) tui.Theme {
	theme, err := tui.ParseTheme(opts.Theme)
	if err != nil {
		s.logger.Warn("falling back to the detected theme", "error", err)
		return tui.DetectTheme()
	}
	return theme
}

func (s *Studio) tokenStore(opts *CommonOptions) *auth.TokenStore {
	return auth.NewTokenStore(path.Join(opts.Dir, "token"))
}

func (s *Studio) restClient(opts *CommonOptions) *chat.REST {
	return chat.NewREST(s.getHTTPClient(opts), opts.API, s.tokenStore(opts), chat.WithRESTLogger(s.logger))
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ConfigCommand shows, gets or sets the yaml configuration
func (s *Studio) ConfigCommand() {
	opts := struct {
		File  string `cortana:"--file, -f, ~/.studio/config.yaml, the configuration file"`
		Init  bool   `cortana:"--init, -, false, initialize the configuration file"`
		Key   string `cortana:"key, -"`
		Value string `cortana:"val, -"`
	}{}
	cortana.Parse(&opts)

	opts.File = expandPath(opts.File)

	data, err := os.ReadFile(opts.File)
	if err != nil && !os.IsNotExist(err) {
		s.Fatalln(err)
	}

	// interactive to create the config
	if (opts.Init || os.IsNotExist(err)) &&
		opts.Key == "" && opts.Value == "" {
		vals, err := tui.Display[tui.Model[[]string], []string](context.Background(),
			tui.NewConfigInputModel(
				tui.Field{Placeholder: "api endpoint (http://localhost:8080/v1)"},
				tui.Field{Placeholder: "socks5 (if have)"},
				tui.Field{Placeholder: "theme (auto, dark or light)"}))
		if err != nil {
			s.Fatalln(err)
		}
		if vals == nil || (vals[0] == "" && vals[1] == "" && vals[2] == "") {
			return
		}
		data, err := yaml.Marshal(CommonOptions{API: vals[0], Socks5: vals[1], Theme: vals[2]})
		if err != nil {
			s.Fatalln(err)
		}
		if err := writeConfig(opts.File, data); err != nil {
			s.Fatalln(err)
		}
		return
	}

	// show the configrations
	if opts.Key == "" {
		if err := quick.Highlight(s.stdout, string(data), "yaml", "terminal256", "monokai"); err != nil {
			s.Fatalln(err)
		}
		return
	}

	m := make(map[string]any)
	if err := yaml.Unmarshal(data, &m); err != nil {
		s.Fatalln(err)
	}

	// get the key and return
	if opts.Value == "" {
		fmt.Fprintln(s.stdout, getConfigValue(m, opts.Key))
		return
	}

	setConfigValue(m, opts.Key, opts.Value)
	data, err = yaml.Marshal(m)
	if err != nil {
		s.Fatalln(err)
	}
	if err := writeConfig(opts.File, data); err != nil {
		s.Fatalln(err)
	}
}

func writeConfig(file string, data []byte) error {
	if err := os.MkdirAll(path.Dir(file), 0755); err != nil {
		return err
	}
	return os.WriteFile(file, data, 0644)
}

// getConfigValue looks up a dotted key, e.g. "model.stream".
func getConfigValue(m map[string]any, key string) any {
	fields := strings.Split(key, ".")
	for _, f := range fields[:len(fields)-1] {
		sub, ok := m[f].(map[string]any)
		if !ok {
			return nil
		}
		m = sub
	}
	return m[fields[len(fields)-1]]
}

func setConfigValue(m map[string]any, key, value string) {
	fields := strings.Split(key, ".")
	for _, f := range fields[:len(fields)-1] {
		sub, ok := m[f].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			m[f] = sub
		}
		m = sub
	}

	var val any = value
	switch value {
	case "true":
		val = true
	case "false":
		val = false
	}
	m[fields[len(fields)-1]] = val
}

func (s *Studio) readStdin() (string, error) {
	data, err := io.ReadAll(s.stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Studio) readFile(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// initStudioDirs creates directories studio needed
// it returns nil if the directories are exist
func initStudioDirs(dir string) error {
	for _, d := range []string{dir, path.Join(dir, "session")} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}

// expandPath expands ~ or env vars in p
func expandPath(p string) string {
	if p == "" {
		return p
	}
	if p[0] == '~' {
		home, _ := os.UserHomeDir()
		p = path.Join(home, p[1:])
	}
	return os.ExpandEnv(p)
}

func (s *Studio) getHTTPClient(opts *CommonOptions) *http.Client {
	cli := &http.Client{Timeout: opts.Timeout}
	if opts.Socks5 != "" {
		s.logger.Debug("using socks5 proxy", "address", opts.Socks5)
		dialer, err := proxy.SOCKS5("tcp", opts.Socks5, nil, proxy.Direct)
		if err != nil {
			s.Fatalln(err)
		}

		cli.Transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				if d, ok := dialer.(proxy.ContextDialer); ok {
					return d.DialContext(ctx, network, addr)
				}
				return dialer.Dial(network, addr)
			},
		}
	}
	return cli
}
