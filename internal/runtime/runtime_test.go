package runtime

import (
	"bufio"
	"errors"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("process tests rely on a POSIX sh")
	}
}

func TestSplitHonorsQuoting(t *testing.T) {
	cases := map[string][]string{
		`ffmpeg -i "my clip.mov" out.mp4`:                             {"ffmpeg", "-i", "my clip.mov", "out.mp4"},
		`ffmpeg -i in.mp4 -vf 'scale=1280:-2,fps=30' out.mp4`:         {"ffmpeg", "-i", "in.mp4", "-vf", "scale=1280:-2,fps=30", "out.mp4"},
		`ffmpeg -i a\ b.mp4 -an $OUT`:                                 {"ffmpeg", "-i", "a b.mp4", "-an", "$OUT"},
		`ffmpeg -filter_complex "[0:v][1:v]overlay;[0:a]anull" o.mkv`: {"ffmpeg", "-filter_complex", "[0:v][1:v]overlay;[0:a]anull", "o.mkv"},
	}
	for input, want := range cases {
		got, err := Split(input)
		if err != nil {
			t.Fatalf("Split(%q) failed: %v", input, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Split(%q): expected %#v, got %#v", input, want, got)
		}
	}
}

func TestSplitPlaceholders(t *testing.T) {
	args, err := Split(`ffmpeg -i "<input_file>" output.mp4`)
	if err != nil {
		t.Fatalf("quoted placeholder should split, got %v", err)
	}
	if want := []string{"ffmpeg", "-i", "<input_file>", "output.mp4"}; !reflect.DeepEqual(args, want) {
		t.Fatalf("expected %#v, got %#v", want, args)
	}
	if _, err := Split("ffmpeg -i <input_file> output.mp4"); !errors.Is(err, ErrShellSyntax) {
		t.Fatalf("expected ErrShellSyntax for a bare placeholder, got %v", err)
	}
}

func TestSplitRejectsShellOperators(t *testing.T) {
	for _, input := range []string{
		"ffmpeg -i a.mp4 b.mp4 && rm a.mp4",
		"ffmpeg -i a.mp4 -f null - | tee log",
		"ffmpeg -i a.mp4 b.mp4; echo done",
	} {
		_, err := Split(input)
		if !errors.Is(err, ErrShellSyntax) {
			t.Fatalf("Split(%q): expected ErrShellSyntax, got %v", input, err)
		}
	}
}

func TestSplitRejectsUnterminatedQuote(t *testing.T) {
	if _, err := Split(`ffmpeg -i "broken.mp4`); err == nil {
		t.Fatalf("expected unterminated quote to fail")
	}
}

func TestNormalizeCommandStripsFenceAndPromptPrefix(t *testing.T) {
	input := "```bash\n$ ffmpeg -version\n```"
	got, err := NormalizeCommand(input)
	if err != nil {
		t.Fatalf("NormalizeCommand returned error: %v", err)
	}
	if got != "ffmpeg -version" {
		t.Fatalf("expected ffmpeg -version, got %q", got)
	}
}

func TestNormalizeCommandRejectsEmpty(t *testing.T) {
	if _, err := NormalizeCommand("   "); err == nil {
		t.Fatalf("expected error for empty command")
	}
}

func TestNormalizeCommandRejectsNullByte(t *testing.T) {
	if _, err := NormalizeCommand("ffmpeg\x00"); err == nil {
		t.Fatalf("expected error for null byte command")
	}
}

func TestRunStreamsMergedOutput(t *testing.T) {
	skipOnWindows(t)

	var lines []string
	r := Runner{OnLine: func(line string) { lines = append(lines, line) }}
	report, err := r.Run(`sh -c 'echo out; echo err 1>&2; printf "frame=1\rframe=2\r\n"'`)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.Success || report.ExitCode != 0 {
		t.Fatalf("expected success, got %+v", report)
	}
	want := []string{"out", "err", "frame=1", "frame=2"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("expected %#v, got %#v", want, lines)
	}
	if report.Lines != len(want) {
		t.Fatalf("expected %d lines counted, got %d", len(want), report.Lines)
	}
}

func TestRunReportsNonZeroExit(t *testing.T) {
	skipOnWindows(t)

	var lines []string
	r := Runner{OnLine: func(line string) { lines = append(lines, line) }}
	report, err := r.Run(`sh -c 'echo boom 1>&2; exit 3'`)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 3 || report.ExitCode != 3 || report.Success {
		t.Fatalf("expected exit code 3, got err=%d report=%+v", exitErr.Code, report)
	}
	if strings.Join(lines, "|") != "boom" {
		t.Fatalf("expected stderr to be streamed, got %#v", lines)
	}
}

func TestRunFinishesAfterOverlongLine(t *testing.T) {
	skipOnWindows(t)

	type result struct {
		report Report
		err    error
	}
	done := make(chan result, 1)
	go func() {
		r := Runner{}
		report, err := r.Run(`sh -c 'head -c 2000000 /dev/zero | tr "\000" a; echo; echo done'`)
		done <- result{report, err}
	}()

	select {
	case got := <-done:
		if !errors.Is(got.err, bufio.ErrTooLong) {
			t.Fatalf("expected a too-long read error, got %v", got.err)
		}
		if !got.report.Success || got.report.ExitCode != 0 {
			t.Fatalf("expected the process to exit cleanly, got %+v", got.report)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("Run did not return after an overlong output line")
	}
}

func TestRunReportsMissingBinaryDistinctly(t *testing.T) {
	r := Runner{}
	_, err := r.Run("smartff-definitely-missing-binary -i in.mp4 out.mp4")
	if !errors.Is(err, ErrBinaryNotFound) {
		t.Fatalf("expected ErrBinaryNotFound, got %v", err)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Fatalf("missing binary must not look like a non-zero exit")
	}
	if !strings.Contains(err.Error(), "smartff-definitely-missing-binary") {
		t.Fatalf("expected binary name in error, got %v", err)
	}
}

func TestScanOutputLinesKeepsTrailingPartialLine(t *testing.T) {
	advance, token, err := scanOutputLines([]byte("tail"), true)
	if err != nil || advance != 4 || string(token) != "tail" {
		t.Fatalf("unexpected split result: %d %q %v", advance, token, err)
	}
	advance, token, _ = scanOutputLines([]byte("partial"), false)
	if advance != 0 || token != nil {
		t.Fatalf("expected to wait for more data, got %d %q", advance, token)
	}
}
