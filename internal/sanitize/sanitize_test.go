package sanitize

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain document untouched",
			in:   "<!DOCTYPE html><html><body>hi</body></html>",
			want: "<!DOCTYPE html><html><body>hi</body></html>",
		},
		{
			name: "lowercase html fence",
			in:   "```html\n<!DOCTYPE html><html></html>\n```",
			want: "<!DOCTYPE html><html></html>",
		},
		{
			name: "uppercase language tag",
			in:   "```HTML\n<html></html>\n```",
			want: "<html></html>",
		},
		{
			name: "bare fences",
			in:   "```\n<html></html>\n```",
			want: "<html></html>",
		},
		{
			name: "fence in the middle of the text",
			in:   "<html>```</html>",
			want: "<html></html>",
		},
		{
			name: "leading and trailing whitespace trimmed",
			in:   "\n\n  <html></html>  \n",
			want: "<html></html>",
		},
		{
			name: "malformed html passes through",
			in:   "<html><body><div></html>",
			want: "<html><body><div></html>",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"```html\n<html>A</html>\n```",
		"<html>already clean</html>",
		"```\n```\n",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
