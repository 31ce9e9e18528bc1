// Package compiler runs the whole pipeline: lex, parse, generate IR, allocate
// registers and emit assembly. Each stage finishes before the next starts, and
// the first failing stage ends the compilation.
package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"minic/internal/ast"
	"minic/internal/codegen"
	"minic/internal/diag"
	"minic/internal/ir"
	"minic/internal/irgen"
	"minic/internal/lexer"
	"minic/internal/parser"
	"minic/internal/regalloc"
	"minic/internal/runtime"
	"minic/internal/token"
)

// Options configures a Compiler.
type Options struct {
	// Registers is the size of the physical register file; 0 means ir.RegisterCount.
	Registers int
	// Logger receives one debug record per stage; nil discards them.
	Logger *slog.Logger
}

// Result holds the output of every stage of a successful compilation.
type Result struct {
	Tokens  []token.Token
	Program *ast.Program
	Func    *ir.Func // register-allocated
	Asm     string
}

// Compiler compiles minic sources with fixed options.
type Compiler struct {
	registers int
	log       *slog.Logger
}

// New validates opts and returns a Compiler.
func New(opts Options) (*Compiler, error) {
	n := opts.Registers
	if n == 0 {
		n = ir.RegisterCount
	}
	if n < 1 || n > codegen.MaxRegisters {
		return nil, fmt.Errorf("%w: %d (want 1..%d)", codegen.ErrRegisterCount, n, codegen.MaxRegisters)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Compiler{registers: n, log: log}, nil
}

// Registers returns the configured register file size.
func (c *Compiler) Registers() int { return c.registers }

// Compile runs every stage over source.
func (c *Compiler) Compile(source, filename string) (*Result, error) {
	res, err := c.Lower(source, filename)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := codegen.Emit(&buf, res.Func, c.registers); err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}
	res.Asm = buf.String()
	c.log.Debug("emitted assembly", "file", filename, "bytes", buf.Len())
	return res, nil
}

// Lower runs every stage except emission, leaving Result.Asm empty.
func (c *Compiler) Lower(source, filename string) (*Result, error) {
	res, err := c.Parse(source, filename)
	if err != nil {
		return nil, err
	}

	f, err := irgen.Generate(res.Program)
	if err != nil {
		return nil, err
	}
	c.log.Debug("generated ir", "file", filename, "instrs", len(f.Instrs), "frame", f.FrameSize)

	alloc := regalloc.New(c.registers)
	if err := alloc.Run(f.Instrs); err != nil {
		var ex *regalloc.ExhaustedError
		if errors.As(err, &ex) {
			c.log.Debug("register mapping at exhaustion", "file", filename, "mapping", ex.Dump())
		}
		return nil, fmt.Errorf("register allocation: %w", err)
	}
	c.log.Debug("allocated registers", "file", filename, "registers", c.registers, "bindings", len(alloc.Mapping()))

	res.Func = f
	return res, nil
}

// Run lowers source and executes it on the runtime interpreter with the same
// register file size, returning the program's return value.
func (c *Compiler) Run(source, filename string) (int64, error) {
	res, err := c.Lower(source, filename)
	if err != nil {
		return 0, err
	}
	v, err := runtime.NewInterpreter(c.registers).Run(res.Func)
	if err != nil {
		return 0, err
	}
	c.log.Debug("executed", "file", filename, "result", v)
	return v, nil
}

// Parse runs the lexer and the parser only.
func (c *Compiler) Parse(source, filename string) (*Result, error) {
	tokens, diags := lexer.New(source, filename).Tokenize()
	if len(diags) > 0 {
		return nil, diag.List(diags)
	}
	c.log.Debug("tokenized", "file", filename, "tokens", len(tokens))

	prog, err := parser.Parse(tokens)
	if err != nil {
		return nil, err
	}
	c.log.Debug("parsed", "file", filename, "stmts", len(prog.Stmts))
	return &Result{Tokens: tokens, Program: prog}, nil
}

// Diagnostics flattens a compilation error into user-facing diagnostics.
// Errors without a source location become a single diagnostic: E9002 for
// runtime failures, E9001 for everything else.
func Diagnostics(err error) []diag.Diagnostic {
	if err == nil {
		return nil
	}
	var list diag.List
	if errors.As(err, &list) {
		return list
	}
	var perr *parser.Error
	if errors.As(err, &perr) {
		return []diag.Diagnostic{perr.Diagnostic()}
	}
	var gerr *irgen.Error
	if errors.As(err, &gerr) {
		return []diag.Diagnostic{gerr.Diagnostic()}
	}
	var rerr *runtime.RuntimeError
	if errors.As(err, &rerr) {
		return []diag.Diagnostic{{Code: "E9002", Severity: diag.Error, Message: rerr.Error()}}
	}
	d := diag.Diagnostic{Code: "E9001", Severity: diag.Error, Message: err.Error()}
	if errors.Is(err, regalloc.ErrOutOfRegisters) {
		d.Hint = "split the expression into smaller statements or raise --regs"
	}
	return []diag.Diagnostic{d}
}
