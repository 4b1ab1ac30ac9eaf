// Command flowdag is the CLI/demo wrapper around the workflow engine
// (spec §1: "CLI/demo wrappers ... out of scope" — a thin shell over the
// core, kept deliberately dumb). Styled after the teacher's
// cmd/kilroy/main.go: manual os.Args dispatch, no CLI framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danshapiro/flowdag/internal/dsl"
	"github.com/danshapiro/flowdag/internal/engine"
	"github.com/danshapiro/flowdag/internal/httpapi"
	"github.com/danshapiro/flowdag/internal/llmprovider"
	"github.com/danshapiro/flowdag/internal/modelprovider"
	"github.com/danshapiro/flowdag/internal/workflow"
)

func usage() {
	fmt.Fprintln(os.Stderr, `flowdag — workflow DAG execution engine

Usage:
  flowdag run <dsl-file> [--json]
  flowdag list-functions
  flowdag simple "<prompt>"
  flowdag serve [addr]`)
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, func() { signal.Stop(sigCh); cancel() }
}

func newEngine() *engine.Engine {
	table := modelprovider.Default()
	rt := &workflow.Runtime{
		ModelProviders: table,
		Provider:       llmprovider.NewHTTPProvider(table, "FLOWDAG_API_KEY"),
		DefaultModel:   "gemma3:4b",
	}
	return engine.New(rt)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cleanup := signalContext()
	defer cleanup()

	switch os.Args[1] {
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	case "run":
		os.Exit(runCmd(ctx, os.Args[2:]))
	case "list-functions":
		os.Exit(listFunctionsCmd())
	case "simple":
		os.Exit(simpleCmd(ctx, os.Args[2:]))
	case "serve":
		os.Exit(serveCmd(ctx, os.Args[2:]))
	default:
		usage()
		os.Exit(1)
	}
}

func runCmd(ctx context.Context, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "run: missing <dsl-file>")
		return 1
	}
	path := args[0]
	body, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		return 1
	}

	hint := dsl.SurfaceAuto
	if strings.HasSuffix(path, ".json") {
		hint = dsl.SurfaceJSON
	} else if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		hint = dsl.SurfaceYAML
	}

	eng := newEngine()
	env, err := eng.Execute(ctx, body, nil, hint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		return 1
	}

	for _, a := range args[1:] {
		if a == "--json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(env); err != nil {
				fmt.Fprintf(os.Stderr, "run: %v\n", err)
				return 1
			}
			if !env.Success {
				return 1
			}
			return 0
		}
	}

	fmt.Printf("run_id: %s\n", env.RunID)
	fmt.Printf("success: %v\n", env.Success)
	for name, rec := range env.Results {
		fmt.Printf("  %s: status=%s output=%v err=%s exec_time=%s\n", name, rec.Status, rec.Output, rec.Err, rec.ExecTime)
	}
	if env.Output != nil {
		fmt.Printf("output: %v\n", env.Output)
	}
	if !env.Success {
		fmt.Fprintf(os.Stderr, "error: %s\n", env.Error)
		return 1
	}
	return 0
}

func listFunctionsCmd() int {
	eng := newEngine()
	for _, name := range eng.ListFunctions() {
		fmt.Println(name)
	}
	return 0
}

func simpleCmd(ctx context.Context, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "simple: missing <prompt>")
		return 1
	}
	eng := newEngine()
	env, err := eng.ExecuteSimple(ctx, strings.Join(args, " "))
	if err != nil {
		fmt.Fprintf(os.Stderr, "simple: %v\n", err)
		return 1
	}
	if !env.Success {
		fmt.Fprintf(os.Stderr, "error: %s\n", env.Error)
		return 1
	}
	fmt.Printf("%v\n", env.Results["simple"].Output)
	return 0
}

func serveCmd(ctx context.Context, args []string) int {
	addr := ":8088"
	if len(args) > 0 {
		addr = args[0]
	}
	eng := newEngine()
	srv := httpapi.New(httpapi.Config{Addr: addr}, eng)
	fmt.Fprintf(os.Stderr, "serving on %s\n", addr)
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		return 1
	}
	return 0
}
