package policy

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage"
	"github.com/open-policy-agent/opa/storage/inmem"
)

//go:embed defaults/policies
var defaultBundle embed.FS

// Engine loads Rego modules and evaluates them per Stage. It holds no
// mutable evaluation state between calls: Evaluate builds a fresh
// rego.New(...) query against the loaded modules for every invocation, so
// concurrent calls and repeated calls with different input never interfere
// with one another.
type Engine struct {
	modules map[string]string // path -> rego source
}

// NewEngine returns an Engine with the built-in advice bundle loaded.
func NewEngine() (*Engine, error) {
	e := &Engine{modules: map[string]string{}}
	if err := e.loadEmbeddedBundle(defaultBundle, "defaults/policies"); err != nil {
		return nil, fmt.Errorf("loading built-in policy bundle: %w", err)
	}
	return e, nil
}

func (e *Engine) loadEmbeddedBundle(fsys embed.FS, root string) error {
	return fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".rego") {
			return nil
		}
		data, err := fsys.ReadFile(path)
		if err != nil {
			return err
		}
		e.modules[path] = string(data)
		return nil
	})
}

// LoadBundle compiles every .rego module found under each of paths (a file
// or a directory, walked recursively) into the engine.
func (e *Engine) LoadBundle(paths ...string) error {
	for _, p := range paths {
		info, err := fileInfo(p)
		if err != nil {
			return fmt.Errorf("invalid policy path %q: %w", p, err)
		}
		if !info.IsDir() {
			if err := e.loadFile(p); err != nil {
				return err
			}
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".rego") {
				return nil
			}
			return e.loadFile(path)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) loadFile(path string) error {
	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("invalid policy file %q: %w", path, err)
	}
	e.modules[path] = string(data)
	return nil
}

// Evaluate runs every loaded module's data.otel.<stage>.deny rule against
// input and data, returning the accumulated PolicyFindings. data is the
// policy engine's static world-knowledge document (e.g. the prior registry
// version, for schema-evolution checks); input is the per-call document
// being checked (e.g. the registry under resolution, or a live-check
// sample). Either may be nil.
func (e *Engine) Evaluate(ctx context.Context, stage Stage, input any, data any) ([]Finding, error) {
	opts := []func(*rego.Rego){
		rego.Query(fmt.Sprintf("data.%s.deny", stage.Package())),
	}
	for path, src := range e.modules {
		opts = append(opts, rego.Module(path, src))
	}
	if input != nil {
		opts = append(opts, rego.Input(input))
	}
	if data != nil {
		store, err := jsonStore(data)
		if err != nil {
			return nil, fmt.Errorf("invalid policy data: %w", err)
		}
		opts = append(opts, rego.Store(store))
	}

	r := rego.New(opts...)
	rs, err := r.Eval(ctx)
	if err != nil {
		return nil, fmt.Errorf("evaluating stage %s: %w", stage, err)
	}

	var findings []Finding
	for _, result := range rs {
		for _, expr := range result.Expressions {
			raw, err := json.Marshal(expr.Value)
			if err != nil {
				return nil, fmt.Errorf("stage %s: marshaling deny result: %w", stage, err)
			}
			var batch []Finding
			if err := json.Unmarshal(raw, &batch); err != nil {
				return nil, fmt.Errorf("stage %s: deny rule did not produce a list of findings: %w", stage, err)
			}
			findings = append(findings, batch...)
		}
	}
	return findings, nil
}

func jsonStore(data any) (storage.Store, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Non-object top-level data (e.g. a bare slice) is wrapped under a
		// single key so rego.Store still receives a document.
		var anyDoc any
		if uerr := json.Unmarshal(raw, &anyDoc); uerr != nil {
			return nil, uerr
		}
		doc = map[string]any{"data": anyDoc}
	}
	return inmem.NewFromObject(doc), nil
}
