package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) record(name string, arg ...string) error {
	if len(arg) > 0 {
		name += "(" + arg[0] + ")"
	}
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error {
	f.loggedIn = true
	return f.record("register")
}
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Google(context.Context) error { return f.record("google") }
func (f *fakeExec) Token(_ context.Context, t string) error { return f.record("token", t) }
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) NewChat(context.Context) error { return f.record("new") }
func (f *fakeExec) Open(_ context.Context, ref string) error { return f.record("open", ref) }
func (f *fakeExec) List(context.Context) error { return f.record("list") }
func (f *fakeExec) Say(_ context.Context, text string) error { return f.record("say", text) }
func (f *fakeExec) Rename(_ context.Context, title string) error { return f.record("rename", title) }
func (f *fakeExec) Pin(context.Context) error { return f.record("pin") }
func (f *fakeExec) Archive(context.Context) error { return f.record("archive") }
func (f *fakeExec) Delete(_ context.Context, ref string) error { return f.record("delete", ref) }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommandsWithArguments(t *testing.T) {
	out := captureOutput(t)

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"say   what is   Go?  ",
		"list",
		"open #2",
		"rename Go questions",
		"pin",
		"archive",
		"delete",
		"delete #1",
		"new",
		"google",
		"token abc.def.ghi",
		"logout",
		"exit",
		"say never reached",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(guest)" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{
		"login",
		"say(what is   Go?)",
		"list",
		"open(#2)",
		"rename(Go questions)",
		"pin",
		"archive",
		"delete()",
		"delete(#1)",
		"new",
		"google",
		"token(abc.def.ghi)",
		"logout",
	}, exec.calls)

	assert.Contains(t, *out, helpSignedOut)
	assert.Contains(t, *out, helpSignedIn)
	assert.Contains(t, *out, "chat (guest)>")
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestRunREPL_UsageAndUnknown(t *testing.T) {
	out := captureOutput(t)

	input := "say\nopen\nrename\ntoken\nfoobar\n"
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader(input)))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Usage: say <text>")
	assert.Contains(t, *out, "Usage: open <id|#n>")
	assert.Contains(t, *out, "Usage: rename <title>")
	assert.Contains(t, *out, "Usage: token <jwt>")
	assert.Contains(t, *out, "Unknown command: foobar")
}

func TestRunREPL_StopsAtEOFWithoutNewline(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("list")))
	assert.Equal(t, []string{"list"}, exec.calls)
}
