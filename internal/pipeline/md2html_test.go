package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{
			name:     "document wrapper",
			input:    "text",
			contains: []string{"<!DOCTYPE html>", "<title>Document</title>", "<p>text</p>"},
		},
		{
			name:     "table",
			input:    "| a | b |\n| --- | --- |\n| 1 | 2 |\n",
			contains: []string{"<table>", "<th>a</th>", "<td>2</td>"},
		},
		{
			name:     "raw html kept",
			input:    "<details>\n<summary>More</summary>\n\nbody\n\n</details>\n",
			contains: []string{"<details>", "<summary>More</summary>"},
		},
		{
			name:     "code highlighted with classes",
			input:    "```go\nfunc main() {}\n```\n",
			contains: []string{`class="chroma"`},
		},
		{
			name:     "footnote",
			input:    "text[^1]\n\n[^1]: note\n",
			contains: []string{`class="footnotes"`},
		},
	}

	conv := NewGoldmarkConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() unexpected error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML() missing %q in:\n%s", want, got)
				}
			}
		})
	}
}

func TestToHTML_HeadingIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "slugged",
			input: "# Hello World\n",
			want:  []string{"hello-world"},
		},
		{
			name:  "repeats numbered",
			input: "## Setup\n\n## Setup\n\n## Setup\n",
			want:  []string{"setup", "setup-1", "setup-2"},
		},
		{
			name:  "punctuation dropped",
			input: "## What's new?\n",
			want:  []string{"what-s-new"},
		},
		{
			name:  "empty text",
			input: "## !!!\n",
			want:  []string{"heading"},
		},
	}

	conv := NewGoldmarkConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() unexpected error: %v", err)
			}
			if ids := HeadingIDs(got); !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("HeadingIDs() = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestToHTML_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkConverter().ToHTML(ctx, "# Title")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want %v", err, context.Canceled)
	}
}
