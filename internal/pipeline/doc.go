// Package pipeline holds the stages around the conversion engine:
//   - source preprocessing (line endings, byte order mark)
//   - Markdown to HTML preview rendering via Goldmark
//   - stylesheet and title injection into the preview document
//
// The engine itself lives in internal/engine and works on plain strings.
// These stages only prepare its input and present its output.
package pipeline
