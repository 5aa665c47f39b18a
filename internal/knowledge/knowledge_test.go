package knowledge

import (
	"regexp"
	"strings"
	"testing"
)

func TestDefaultInstructionNotEmpty(t *testing.T) {
	if strings.TrimSpace(DefaultInstruction()) == "" {
		t.Fatalf("DefaultInstruction returned empty content")
	}
}

func TestDefaultInstructionContract(t *testing.T) {
	text := DefaultInstruction()
	for _, required := range []string{`"command"`, `"explanation"`, "JSON", "ffmpeg"} {
		if !strings.Contains(text, required) {
			t.Fatalf("default instruction missing %q", required)
		}
	}
	if text != strings.TrimSpace(text) {
		t.Fatalf("default instruction should be trimmed")
	}
}

func TestDefaultInstructionAsksForRunnableFilenames(t *testing.T) {
	text := DefaultInstruction()
	// an unquoted <input_file> reads as a redirect and cannot be run
	if m := regexp.MustCompile(`<[A-Za-z_]+>`).FindString(text); m != "" {
		t.Fatalf("default instruction suggests placeholder %s", m)
	}
	if !strings.Contains(text, "input.mp4") {
		t.Fatalf("default instruction should suggest plain filenames")
	}
}
