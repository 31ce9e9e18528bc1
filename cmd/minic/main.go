// Command minic is the CLI entry point for the minic compiler.
//
// Usage:
//
//	minic tokens  <file> [--json]                  Print tokens
//	minic parse   <file>                           Print AST as JSON
//	minic ir      <file> [--regs N]                Print register-allocated IR
//	minic compile <file> [--regs N] [-o out.s]     Emit x86-64 assembly
//	minic run     <file> [--regs N]                Execute and print the return value
//	minic repl    [--regs N]                       Start interactive REPL
package main

import (
	"fmt"
	"log/slog"
	"minic/internal/ast"
	"minic/internal/codegen"
	"minic/internal/compiler"
	"minic/internal/lexer"
	"minic/internal/parser"
	"os"
	"strconv"
)

// options holds the flags shared by the commands.
type options struct {
	json      bool
	verbose   bool
	registers int
	output    string
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "tokens", "parse", "ir", "compile", "run":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			os.Exit(1)
		}
		opts := mustParseOptions(os.Args[3:])
		source := readFile(os.Args[2])
		switch command {
		case "tokens":
			cmdTokens(source, os.Args[2], opts.json)
		case "parse":
			cmdParse(source, os.Args[2])
		case "ir":
			cmdIR(source, os.Args[2], opts)
		case "compile":
			cmdCompile(source, os.Args[2], opts)
		case "run":
			cmdRun(source, os.Args[2], opts)
		}
	case "repl":
		cmdRepl(mustParseOptions(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command '%s'\n", command)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  minic tokens  <file> [--json]               Tokenize and print tokens")
	fmt.Fprintln(os.Stderr, "  minic parse   <file>                        Parse and print AST (JSON)")
	fmt.Fprintln(os.Stderr, "  minic ir      <file> [--regs N]             Print register-allocated IR")
	fmt.Fprintln(os.Stderr, "  minic compile <file> [--regs N] [-o out.s]  Emit x86-64 assembly (--verbose logs stages)")
	fmt.Fprintln(os.Stderr, "  minic run     <file> [--regs N]             Execute and print the return value")
	fmt.Fprintln(os.Stderr, "  minic repl    [--regs N]                    Start interactive REPL")
}

func readFile(filename string) string {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read file %s: %v\n", filename, err)
		os.Exit(1)
	}
	return string(source)
}

func mustParseOptions(args []string) options {
	opts, err := parseOptions(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		usage()
		os.Exit(1)
	}
	return opts
}

func parseOptions(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--json":
			opts.json = true
		case "--verbose":
			opts.verbose = true
		case "--regs", "-o":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("flag %s needs a value", arg)
			}
			i++
			if arg == "-o" {
				opts.output = args[i]
				continue
			}
			n, err := strconv.Atoi(args[i])
			if err != nil || n < 1 || n > codegen.MaxRegisters {
				return opts, fmt.Errorf("--regs wants a number in 1..%d, got %q", codegen.MaxRegisters, args[i])
			}
			opts.registers = n
		default:
			return opts, fmt.Errorf("unknown flag '%s'", arg)
		}
	}
	return opts, nil
}

func newCompiler(opts options) *compiler.Compiler {
	var log *slog.Logger
	if opts.verbose {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	c, err := compiler.New(compiler.Options{Registers: opts.registers, Logger: log})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return c
}

// ---- tokens command ----

func cmdTokens(source, filename string, jsonMode bool) {
	l := lexer.New(source, filename)
	tokens, diags := l.Tokenize()

	if jsonMode {
		printTokensJSON(tokens, diags)
	} else {
		printTokensText(tokens, diags)
	}

	if len(diags) > 0 {
		os.Exit(1)
	}
}

// ---- parse command ----

func cmdParse(source, filename string) {
	l := lexer.New(source, filename)
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		printJSON(map[string]interface{}{
			"ast":         nil,
			"diagnostics": diagsToSlice(lexDiags),
		})
		os.Exit(1)
	}

	prog, err := parser.Parse(tokens)
	output := map[string]interface{}{
		"ast":         nil,
		"diagnostics": diagsToSlice(compiler.Diagnostics(err)),
	}
	if prog != nil {
		output["ast"] = ast.NodeToMap(prog)
	}
	printJSON(output)

	if err != nil {
		os.Exit(1)
	}
}

// ---- ir command ----

func cmdIR(source, filename string, opts options) {
	res, err := newCompiler(opts).Lower(source, filename)
	if err != nil {
		printDiagsText(compiler.Diagnostics(err))
		os.Exit(1)
	}
	fmt.Print(res.Func.Dump())
}

// ---- compile command ----

func cmdCompile(source, filename string, opts options) {
	res, err := newCompiler(opts).Compile(source, filename)
	if err != nil {
		printDiagsText(compiler.Diagnostics(err))
		os.Exit(1)
	}

	if opts.output == "" || opts.output == "-" {
		fmt.Print(res.Asm)
		return
	}
	if err := os.WriteFile(opts.output, []byte(res.Asm), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot write %s: %v\n", opts.output, err)
		os.Exit(1)
	}
}

// ---- run command ----

func cmdRun(source, filename string, opts options) {
	v, err := newCompiler(opts).Run(source, filename)
	if err != nil {
		printDiagsText(compiler.Diagnostics(err))
		os.Exit(1)
	}
	fmt.Println(v)
}
