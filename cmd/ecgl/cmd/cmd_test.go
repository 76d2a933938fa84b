package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/ecglearn/pkg/lesson"
)

const examplesDir = "../../../examples"

// execute runs the root command with a config that keeps all data in a
// temp dir.
func execute(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(append(args, "--config", cfgPath))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	src := "data_dir: " + filepath.Join(dir, "data") + "\nuser: ada\nlog_level: error\n" + extra
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestPlay(t *testing.T) {
	lessons, err := lesson.LoadFile(filepath.Join(examplesDir, "lessons", "ecg-101.lesson"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	seq := lesson.NewSequencer(lessons[0])
	var out bytes.Buffer
	// slide, correct answer, flip + continue, wrong answer
	play(seq, strings.NewReader("\n1\n\n\n2\n"), &out)

	if !seq.Done() || seq.Score() != 10 {
		t.Fatalf("done=%v score=%d\n%s", seq.Done(), seq.Score(), out.String())
	}
	for _, want := range []string{"Correct! +10 points", "Ventricular depolarisation", "Wrong! +0 points"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestPlayBackAndQuit(t *testing.T) {
	lessons, err := lesson.LoadFile(filepath.Join(examplesDir, "lessons", "ecg-101.lesson"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	seq := lesson.NewSequencer(lessons[0])
	var out bytes.Buffer
	// next, bad input, back, next, answer, quit on the flashcard
	play(seq, strings.NewReader("\nx\nb\n\n1\nq\n"), &out)

	if seq.Done() || seq.Index() != 2 || seq.Score() != 10 {
		t.Fatalf("index=%d score=%d\n%s", seq.Index(), seq.Score(), out.String())
	}
	if !strings.Contains(out.String(), "enter a choice between 1 and 3") {
		t.Errorf("missing input hint:\n%s", out.String())
	}
}

func TestReplayExamples(t *testing.T) {
	cfg := writeConfig(t, "")
	scripts, err := filepath.Glob(filepath.Join(examplesDir, "gestures", "*.gest"))
	if err != nil || len(scripts) == 0 {
		t.Fatalf("no example scripts: %v", err)
	}
	out, err := execute(t, cfg, "", append([]string{"replay"}, scripts...)...)
	if err != nil {
		t.Fatalf("replay failed: %v\n%s", err, out)
	}
	if got := strings.Count(out, "ok   "); got != len(scripts) {
		t.Fatalf("%d scripts ok, want %d\n%s", got, len(scripts), out)
	}
}

func TestReplayReportsFailure(t *testing.T) {
	cfg := writeConfig(t, "")
	script := filepath.Join(t.TempDir(), "bad.gest")
	if err := os.WriteFile(script, []byte("zoom to 2\nexpect scale 3\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	out, err := execute(t, cfg, "", "replay", script)
	if err == nil || !strings.Contains(err.Error(), "1 of 1 scripts failed") {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "FAIL") {
		t.Fatalf("output = %s", out)
	}
}

func TestLessonRunCreditsAndShopSpends(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "catalog.yaml")
	src := "items:\n  - id: sticker\n    title: Sticker\n    kind: physical\n    price: 5\n"
	if err := os.WriteFile(catalog, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg := writeConfig(t, "catalog: "+catalog+"\n")
	deck := filepath.Join(examplesDir, "lessons", "ecg-101.lesson")

	out, err := execute(t, cfg, "\n1\n\n\n1\n", "lesson", "run", deck)
	if err != nil {
		t.Fatalf("lesson run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Balance for ada: 25 points") {
		t.Fatalf("output = %s", out)
	}

	out, err = execute(t, cfg, "", "shop", "buy", "sticker", "--name", "Ada", "--email", "ada@example.com")
	if err == nil {
		t.Fatalf("expected invalid form without shipping\n%s", out)
	}
	if !strings.Contains(out, "--address") {
		t.Fatalf("missing field report: %s", out)
	}

	out, err = execute(t, cfg, "", "shop", "buy", "sticker", "--name", "Ada", "--email", "ada@example.com",
		"--address", "1 Main St", "--country", "ke", "-n", "3")
	if err != nil {
		t.Fatalf("buy failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "15 points spent") {
		t.Fatalf("output = %s", out)
	}

	out, err = execute(t, cfg, "", "shop", "balance")
	if err != nil || !strings.Contains(out, "ada: 10 points") {
		t.Fatalf("balance = %q, %v", out, err)
	}
}

func TestLessonList(t *testing.T) {
	cfg := writeConfig(t, "")
	out, err := execute(t, cfg, "", "lesson", "list", filepath.Join(examplesDir, "lessons"))
	if err != nil {
		t.Fatalf("lesson list failed: %v", err)
	}
	for _, id := range []string{"ecg-101", "rhythms"} {
		if !strings.Contains(out, id) {
			t.Errorf("list missing %s:\n%s", id, out)
		}
	}
}

func TestMediaUploadListRemove(t *testing.T) {
	cfg := writeConfig(t, "")
	img := filepath.Join(t.TempDir(), "strip.png")
	if err := os.WriteFile(img, []byte("png"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if out, err := execute(t, cfg, "", "media", "upload", img); err != nil || !strings.Contains(out, "file://") {
		t.Fatalf("upload = %q, %v", out, err)
	}
	out, err := execute(t, cfg, "", "media", "list")
	if err != nil || !strings.Contains(out, "ada/strip.png") {
		t.Fatalf("list = %q, %v", out, err)
	}
	if _, err := execute(t, cfg, "", "media", "rm", "strip.png"); err != nil {
		t.Fatalf("rm failed: %v", err)
	}
	if _, err := execute(t, cfg, "", "media", "rm", "strip.png"); err == nil {
		t.Fatalf("expected error removing twice")
	}
}
