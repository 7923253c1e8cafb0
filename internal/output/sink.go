// Package output implements the report sinks §4.10 names: JSON, YAML,
// JSONL, a caller-supplied template renderer, and a mute (discard) sink.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Sink renders a stream of report values to an io.Writer.
type Sink interface {
	// Write renders one value. For Jsonl, each call emits one line; for
	// Template, each call renders the value immediately; for Json/Yaml,
	// Write accumulates values and Close renders the final document (a
	// single array/sequence), since those formats aren't naturally
	// streamable the way JSONL is.
	Write(v any) error
	// Close flushes any buffered output. Callers must call Close exactly
	// once, after the last Write.
	Close() error
}

// Json returns a Sink that buffers every written value and renders them as
// a single JSON array on Close.
func Json(w io.Writer, indent string) Sink {
	return &bufferedSink{w: w, render: func(w io.Writer, values []any) error {
		enc := json.NewEncoder(w)
		if indent != "" {
			enc.SetIndent("", indent)
		}
		return enc.Encode(values)
	}}
}

// Yaml returns a Sink that buffers every written value and renders them as
// a single YAML sequence on Close.
func Yaml(w io.Writer) Sink {
	return &bufferedSink{w: w, render: func(w io.Writer, values []any) error {
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(values)
	}}
}

// Jsonl returns a Sink that writes one compact JSON object per line,
// streamed immediately on every Write (no buffering).
func Jsonl(w io.Writer) Sink {
	return &jsonlSink{w: w}
}

// TemplateRenderer is the seam output.Template delegates to. The template
// engine itself is out of scope (§1 Non-goals): this interface lets a
// caller plug in whatever renderer it wants.
type TemplateRenderer interface {
	Render(w io.Writer, v any) error
}

// Template returns a Sink that calls renderer.Render for each value as it
// arrives.
func Template(w io.Writer, renderer TemplateRenderer) Sink {
	return &templateSink{w: w, renderer: renderer}
}

// Mute returns a Sink that discards every value.
func Mute() Sink { return muteSink{} }

type bufferedSink struct {
	w      io.Writer
	render func(io.Writer, []any) error
	values []any
}

func (s *bufferedSink) Write(v any) error {
	s.values = append(s.values, v)
	return nil
}

func (s *bufferedSink) Close() error {
	if len(s.values) == 0 {
		return nil
	}
	return s.render(s.w, s.values)
}

type jsonlSink struct{ w io.Writer }

func (s *jsonlSink) Write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("jsonl: marshaling value: %w", err)
	}
	_, err = s.w.Write(append(data, '\n'))
	return err
}

func (s *jsonlSink) Close() error { return nil }

type templateSink struct {
	w        io.Writer
	renderer TemplateRenderer
}

func (s *templateSink) Write(v any) error { return s.renderer.Render(s.w, v) }
func (s *templateSink) Close() error      { return nil }

type muteSink struct{}

func (muteSink) Write(any) error { return nil }
func (muteSink) Close() error    { return nil }
