// Command molmesh evaluates a molecular scene and writes its finalized mesh
// buffers through the first viewer backend that can be created.
//
// Usage:
//
//	molmesh [-config file.toml] [-out model.json] [-viewer gpu,json] scene.mol
//	molmesh [-config file.toml] [-out model.json] -fetch pdb:1ABC
//
// Scene scripts use the molmesh DSL. Files ending in .pdb, .ent or .sdf are
// read as structure files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/chazu/molmesh/pkg/config"
	"github.com/chazu/molmesh/pkg/fetch"
	"github.com/chazu/molmesh/pkg/logging"
	"github.com/chazu/molmesh/pkg/molfile"
	"github.com/chazu/molmesh/pkg/viewer"
)

// fetchTimeout bounds a -fetch download.
const fetchTimeout = 30 * time.Second

var errUsage = errors.New("usage: molmesh [-config file.toml] [-out model.json] [-viewer order] [-fetch query | scene]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, &fetch.Fetcher{}); err != nil {
		fmt.Fprintln(os.Stderr, "molmesh:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, fetcher *fetch.Fetcher) error {
	fs := flag.NewFlagSet("molmesh", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "TOML configuration file")
	outPath := fs.String("out", "", "output file (default stdout)")
	query := fs.String("fetch", "", "download a structure: pdb:XXXX or cid:N")
	order := fs.String("viewer", "", "comma-separated viewer backend order (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*query == "" && fs.NArg() != 1) || (*query != "" && fs.NArg() != 0) {
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	if *order != "" {
		cfg.Viewer.Order = strings.Split(*order, ",")
	}

	app := NewAppWithConfig(cfg)
	var result EvalResult
	if *query != "" {
		result, err = evaluateQuery(ctx, app, fetcher, *query)
	} else {
		result, err = evaluateFile(app, fs.Arg(0))
	}
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(stderr, "warning:", formatFinding(w))
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintln(stderr, "error:", formatFinding(e))
		}
		return fmt.Errorf("%d error(s)", len(result.Errors))
	}

	if *outPath == "" {
		return show(cfg.Viewer.Order, stdout, result)
	}
	f, err := createOutput(*outPath)
	if err != nil {
		return err
	}
	if err := show(cfg.Viewer.Order, f, result); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", *outPath, err)
	}
	return nil
}

// createOutput opens the -out file.
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func show(order []string, out io.Writer, result EvalResult) error {
	v, err := viewer.DefaultRegistry().Create(order, viewer.Options{Out: out, Indent: true})
	if err != nil {
		return err
	}
	return v.Show(result.Model.Meshes())
}

func evaluateQuery(ctx context.Context, app *App, fetcher *fetch.Fetcher, raw string) (EvalResult, error) {
	q, err := fetch.ParseQuery(raw)
	if err != nil {
		return EvalResult{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	data, err := fetcher.Fetch(ctx, q)
	if err != nil {
		return EvalResult{}, err
	}
	s, err := molfile.Parse(q.ID, q.Source.Format(), data)
	if err != nil {
		return EvalResult{}, err
	}
	return app.EvaluateScene(s), nil
}

func evaluateFile(app *App, path string) (EvalResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EvalResult{}, err
	}
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "pdb", "ent", "sdf":
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		s, err := molfile.Parse(name, ext, data)
		if err != nil {
			return EvalResult{}, err
		}
		return app.EvaluateScene(s), nil
	}
	return app.Evaluate(string(data)), nil
}

func formatFinding(e EvalErrorData) string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}
