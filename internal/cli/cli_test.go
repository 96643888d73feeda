package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/userconfig"
)

type testEnv struct {
	dir      string
	userCfg  string
	pinsPath string
	inboxDir string
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("LCL_ADMIN", "")
	t.Setenv("LCL_ADMIN_TOKEN", "")
	t.Setenv("LCL_COMMANDS_PATH", "")
	t.Setenv("NO_COLOR", "1")

	root := t.TempDir()
	env := &testEnv{
		dir:      filepath.Join(root, "commands"),
		userCfg:  filepath.Join(root, "config.toml"),
		pinsPath: filepath.Join(root, "pins.json"),
		inboxDir: filepath.Join(root, "inbox"),
	}
	writeFile(t, filepath.Join(env.dir, "Network_Security", "ping.yml"), `
name: ping
description: Check connectivity
usage: ping [-c count] host
options:
  - flag: -c
    description: stop after count replies
examples:
  - cmd: ping -c 3 example.com
    description: three probes
`)
	writeFile(t, filepath.Join(env.dir, "Network_Security", "ip.yml"), "name: ip\ndescription: show/modify IP\n")
	writeFile(t, filepath.Join(env.dir, "Text_Processing", "grep.yml"), "name: grep\ndescription: print lines that match patterns\n")
	if err := userconfig.Save(env.userCfg, &userconfig.Config{
		PinsPath: env.pinsPath,
		InboxDir: env.inboxDir,
	}); err != nil {
		t.Fatal(err)
	}
	return env
}

func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(append([]string{"--user-config", e.userCfg, "--commands", e.dir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "search", "ip")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "1. ip  [Network_Security] — show/modify IP") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "ping") {
		t.Errorf("ping should not match ip: %q", out)
	}

	out, err = env.run(t, "", "search", "--json", "net")
	if err != nil {
		t.Fatal(err)
	}
	var res executor.SearchResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if got := strings.Join(res.Names(), ","); got != "ip,ping" {
		t.Errorf("names = %s, want ip,ping", got)
	}

	out, err = env.run(t, "", "search", "zzz")
	if err != nil || !strings.Contains(out, "no matches") {
		t.Errorf("out=%q err=%v", out, err)
	}
}

func TestShowCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "show", "ping")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Name\nping", "Usage\nping [-c count] host", "-c", "$ ping -c 3 example.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q:\n%s", want, out)
		}
	}

	out, err = env.run(t, "", "show", "--markdown", "ping")
	if err != nil || !strings.HasPrefix(out, "# ping\n") {
		t.Errorf("markdown out=%q err=%v", out, err)
	}

	_, err = env.run(t, "", "show", "pin")
	if err == nil || !strings.Contains(err.Error(), "did you mean: ping") {
		t.Errorf("err = %v, want suggestion", err)
	}
}

func TestShowMultiWordName(t *testing.T) {
	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.dir, "Development_Tools", "git-log.yml"), "name: git log\ndescription: show commit logs\n")
	writeFile(t, filepath.Join(env.dir, "Development_Tools", "git-commit.yml"), "name: git commit\ndescription: record changes\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"quoted", []string{"show", "git log"}, "Name\ngit log"},
		{"split words", []string{"show", "git", "commit"}, "Name\ngit commit"},
		{"export split words", []string{"export", "git", "log"}, "# git log\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := env.run(t, "", tc.args...)
			if err != nil {
				t.Fatalf("%v: %v", tc.args, err)
			}
			if !strings.Contains(out, tc.want) {
				t.Errorf("%v output missing %q:\n%s", tc.args, tc.want, out)
			}
		})
	}
}

func TestListAndCategories(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "list", "--category", "Text_Processing")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "grep  [Text_Processing] — print lines that match patterns" {
		t.Errorf("list = %q", out)
	}

	out, err = env.run(t, "", "--json", "categories")
	if err != nil {
		t.Fatal(err)
	}
	var cats []catalog.CategoryCount
	if err := json.Unmarshal([]byte(out), &cats); err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 || cats[0].Count != 2 {
		t.Errorf("categories = %+v", cats)
	}
}

func TestBrowseSession(t *testing.T) {
	env := newTestEnv(t)

	input := strings.Join([]string{
		"net",
		"2",
		":pin",
		":back",
		":open 9",
		":clear",
		":back",
		":q",
	}, "\n")
	out, err := env.run(t, input, "browse")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"1. ip  [Network_Security]",
		"2. ping  [Network_Security]",
		"Name\nping",
		"pinned ping",
		"no result 9",
		"cannot go back from state idle",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("browse output missing %q:\n%s", want, out)
		}
	}
	data, err := os.ReadFile(env.pinsPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"ping"`) {
		t.Errorf("pins file = %s", data)
	}
}

func TestBrowseNumberFromDetail(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "net\n2\n1\n:q\n", "browse")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Name\nping", "Name\nip"} {
		if !strings.Contains(out, want) {
			t.Errorf("browse output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "no matches") {
		t.Errorf("number was searched as a query:\n%s", out)
	}
}

func TestBrowseReload(t *testing.T) {
	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.dir, "Text_Processing", "sed.yml"), "name: sed\ndescription: stream editor\n")
	out, err := env.run(t, "sed\n:reload\nsed\n", "browse")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "reloaded 4 commands (generation 2)") {
		t.Errorf("output = %q", out)
	}
}

func TestPins(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "", "pin", "grep", "ip"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.run(t, "", "pin", "nope"); err == nil {
		t.Error("pinning an unknown command should fail")
	}
	out, err := env.run(t, "", "--json", "pins")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	if err := json.Unmarshal([]byte(out), &names); err != nil {
		t.Fatal(err)
	}
	if strings.Join(names, ",") != "grep,ip" {
		t.Errorf("pins = %v", names)
	}

	out, err = env.run(t, "", "unpin", "ip", "ip")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "unpinned ip") || !strings.Contains(out, "ip was not pinned") {
		t.Errorf("unpin output = %q", out)
	}
	out, err = env.run(t, "", "pins")
	if err != nil || !strings.HasPrefix(out, "grep  [Text_Processing]") {
		t.Errorf("pins out=%q err=%v", out, err)
	}
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	target := filepath.Join(t.TempDir(), "out", "ping.md")
	if _, err := env.run(t, "", "export", "ping", "-o", target); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	recs, err := catalog.ParseMarkdown(data, target, "Network_Security")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Name != "ping" || len(recs[0].Options) != 1 {
		t.Errorf("exported records = %+v", recs)
	}
}

func TestSuggest(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "", "suggest", "--name", "rsync", "--description", "fast file copy", "--note", "please add")
	if err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(env.inboxDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), "-rsync.yml") {
		t.Fatalf("inbox = %v", entries)
	}
	if !strings.Contains(out, entries[0].Name()) {
		t.Errorf("output = %q", out)
	}

	if _, err := env.run(t, "", "suggest"); err == nil {
		t.Error("suggest without a name should fail")
	}
}

func TestAdminCommands(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "", "template"); err == nil {
		t.Fatal("template should require admin mode")
	}

	t.Setenv("LCL_ADMIN", "yes")
	out, err := env.run(t, "", "template")
	if err != nil || !strings.Contains(out, "Text_Processing") {
		t.Fatalf("template out=%q err=%v", out, err)
	}

	draft := "name: tar\ncategory: Archive_Compression_Management\ndescription: archive files\nusage: tar [options] files\n"
	out, err = env.run(t, draft, "new", "-")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(env.dir, "Archive_Compression_Management", "tar.yml")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected %s: %v (out %q)", want, err, out)
	}
	if _, err := env.run(t, draft, "new", "-"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second new err = %v", err)
	}
	if _, err := env.run(t, "name: bad\ncategory: Nope\ndescription: x\n", "new", "-"); err == nil {
		t.Error("draft with issues should not be saved")
	}
}

func TestValidate(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "validate")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ok: 3 commands in 2 categories") {
		t.Errorf("validate = %q", out)
	}

	out, err = env.run(t, "", "validate", "--strict")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "warning: ip") {
		t.Errorf("strict validate = %q", out)
	}

	writeFile(t, filepath.Join(env.dir, "Text_Processing", "a.yml"), "name: awk\n")
	writeFile(t, filepath.Join(env.dir, "Text_Processing", "b.yml"), "description: nameless\n")
	out, err = env.run(t, "", "validate")
	if err == nil || !strings.HasPrefix(err.Error(), "2 problem(s)") {
		t.Fatalf("err = %v", err)
	}
	var problems int
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "error: ") {
			problems++
		}
	}
	if problems != 2 {
		t.Errorf("validate printed %d error lines: %q", problems, out)
	}
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCmd(strings.NewReader(""), &out, &out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "lcl dev\n" {
		t.Errorf("version = %q", out.String())
	}
}
