package conversation

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

const perMessageOverhead = 4

// Tokenizer estimates prompt size. It uses tiktoken when the encoding's BPE
// file is already in tiktoken's cache and a character heuristic otherwise.
// It never triggers a download.
type Tokenizer struct {
	encoder  *tiktoken.Tiktoken
	fallback bool
	mu       sync.Mutex
}

var (
	defaultTokenizer     *Tokenizer
	defaultTokenizerOnce sync.Once
)

func DefaultTokenizer() *Tokenizer {
	defaultTokenizerOnce.Do(func() {
		defaultTokenizer = NewTokenizer("cl100k_base")
	})
	return defaultTokenizer
}

// bpeFiles are the download locations tiktoken-go uses as cache keys.
var bpeFiles = map[string]string{
	"cl100k_base": "https://openaipublic.blob.core.windows.net/encodings/cl100k_base.tiktoken",
	"o200k_base":  "https://openaipublic.blob.core.windows.net/encodings/o200k_base.tiktoken",
	"p50k_base":   "https://openaipublic.blob.core.windows.net/encodings/p50k_base.tiktoken",
	"r50k_base":   "https://openaipublic.blob.core.windows.net/encodings/r50k_base.tiktoken",
}

// bpeCachePath mirrors tiktoken-go's cache lookup: TIKTOKEN_CACHE_DIR, then
// DATA_GYM_CACHE_DIR, then <tmp>/data-gym-cache, keyed by the SHA-1 of the URL.
func bpeCachePath(encoding string) (string, bool) {
	url, ok := bpeFiles[encoding]
	if !ok {
		return "", false
	}
	dir := os.Getenv("TIKTOKEN_CACHE_DIR")
	if dir == "" {
		dir = os.Getenv("DATA_GYM_CACHE_DIR")
	}
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "data-gym-cache")
	}
	return filepath.Join(dir, fmt.Sprintf("%x", sha1.Sum([]byte(url)))), true
}

func NewTokenizer(encoding string) *Tokenizer {
	path, ok := bpeCachePath(encoding)
	if !ok {
		return &Tokenizer{fallback: true}
	}
	if _, err := os.Stat(path); err != nil {
		return &Tokenizer{fallback: true}
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return &Tokenizer{fallback: true}
	}
	return &Tokenizer{encoder: enc}
}

func (t *Tokenizer) Precise() bool {
	return !t.fallback
}

func (t *Tokenizer) CountText(text string) int {
	if text == "" {
		return 0
	}
	if t.fallback {
		return heuristicTokenCount(text)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.encoder.Encode(text, nil, nil))
}

func (t *Tokenizer) Count(c *Conversation) int {
	total := 0
	for _, turn := range c.Messages() {
		total += perMessageOverhead + t.CountText(string(turn.Role)) + t.CountText(turn.Content)
	}
	return total
}

// roughly four ASCII characters per token
func heuristicTokenCount(text string) int {
	n := 0
	for _, r := range text {
		if r > 0x2E7F {
			n += 6
		} else {
			n++
		}
	}
	estimate := n / 4
	if estimate < 1 {
		estimate = 1
	}
	return estimate
}
