package safety

import "testing"

func TestUsesBinary(t *testing.T) {
	cases := []struct {
		args   []string
		binary string
		want   bool
	}{
		{[]string{"ffmpeg", "-i", "a.mp4"}, "ffmpeg", true},
		{[]string{"/usr/local/bin/ffmpeg", "-version"}, "ffmpeg", true},
		{[]string{"FFMPEG.exe", "-version"}, "ffmpeg", true},
		{[]string{"ffprobe", "a.mp4"}, "ffmpeg", false},
		{[]string{"rm", "-rf", "/"}, "ffmpeg", false},
		{nil, "ffmpeg", false},
		{[]string{"ffmpeg"}, "", false},
	}
	for _, tc := range cases {
		if got := UsesBinary(tc.args, tc.binary); got != tc.want {
			t.Fatalf("UsesBinary(%v, %q) = %v, want %v", tc.args, tc.binary, got, tc.want)
		}
	}
}
