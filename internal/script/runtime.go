// Package script embeds a Risor VM and exposes an open chip database to
// scripts through host functions. Scripts address cells, pins, nets and
// instances by name; geometry crosses the boundary as maps with
// primitive values.
package script

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	libredadb "github.com/pbonh/libreda-db"
	"github.com/pbonh/libreda-db/internal/store"
)

// Runtime embeds a Risor VM wired to one chip database.
type Runtime struct {
	chip       *libredadb.Chip
	store      *store.Store
	scriptsDir string
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithStore attaches a persistence store, enabling the save() host
// function.
func WithStore(s *store.Store) RuntimeOption {
	return func(r *Runtime) {
		r.store = s
	}
}

// WithScriptsDir sets the base directory for relative script paths and
// import resolution.
func WithScriptsDir(dir string) RuntimeOption {
	return func(r *Runtime) {
		r.scriptsDir = dir
	}
}

// NewRuntime creates a Runtime operating on the given chip.
func NewRuntime(c *libredadb.Chip, opts ...RuntimeOption) *Runtime {
	r := &Runtime{chip: c}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScript loads and executes a Risor script file.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, extraGlobals map[string]any) error {
	fullPath := scriptPath
	if !filepath.IsAbs(scriptPath) && r.scriptsDir != "" {
		fullPath = filepath.Join(r.scriptsDir, scriptPath)
	}
	src, err := os.ReadFile(fullPath)
	if err != nil {
		return fmt.Errorf("script: loading %s: %w", fullPath, err)
	}
	return r.eval(ctx, string(src), scriptPath, extraGlobals)
}

// RunSource executes Risor source code directly. Useful for testing and
// one-liners.
func (r *Runtime) RunSource(ctx context.Context, source string, extraGlobals map[string]any) error {
	return r.eval(ctx, source, "<inline>", extraGlobals)
}

func (r *Runtime) eval(ctx context.Context, source, label string, extraGlobals map[string]any) error {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if r.scriptsDir != "" {
		globalNames := make([]string, 0, len(globals))
		for name := range globals {
			globalNames = append(globalNames, name)
		}
		opts = append(opts, risor.WithImporter(importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})))
	}

	if _, err := risor.Eval(ctx, source, opts...); err != nil {
		return fmt.Errorf("script %s: %w", label, err)
	}
	return nil
}

// buildGlobals constructs the full set of globals exposed to scripts.
func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		// Queries
		"cells":         makeCellsFn(r.chip),
		"pins":          makePinsFn(r.chip),
		"nets":          makeNetsFn(r.chip),
		"net_terminals": makeNetTerminalsFn(r.chip),
		"instances":     makeInstancesFn(r.chip),
		"bbox":          makeBBoxFn(r.chip),
		"shape_count":   makeShapeCountFn(r.chip),

		// Mutations
		"create_cell":      makeCreateCellFn(r.chip),
		"create_pin":       makeCreatePinFn(r.chip),
		"create_net":       makeCreateNetFn(r.chip),
		"create_instance":  makeCreateInstanceFn(r.chip),
		"connect_pin":      makeConnectPinFn(r.chip),
		"connect_pin_inst": makeConnectPinInstFn(r.chip),
		"insert_rect":      makeInsertRectFn(r.chip),
		"flatten":          makeFlattenFn(r.chip),

		"log": mustProxy(&logObject{prefix: "chipdb"}),
	}

	if r.store != nil {
		globals["save"] = makeSaveFn(r.store, r.chip)
	}

	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("script: proxy error: %v", err))
	}
	return p
}

// logObject provides log.info/warn/error methods for scripts.
type logObject struct {
	prefix string
}

func (l *logObject) Info(msg string) {
	fmt.Printf("[%s] INFO: %s\n", l.prefix, msg)
}

func (l *logObject) Warn(msg string) {
	fmt.Printf("[%s] WARN: %s\n", l.prefix, msg)
}

func (l *logObject) Error(msg string) {
	fmt.Printf("[%s] ERROR: %s\n", l.prefix, msg)
}
