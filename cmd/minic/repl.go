package main

import (
	"fmt"
	"io"
	"minic/internal/ast"
	"minic/internal/compiler"
	"minic/internal/diag"
	"minic/internal/lexer"
	"minic/internal/parser"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

// ---- ANSI colors ----

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// ---- session ----

// session keeps the statements entered so far. Declarations and assignments
// accumulate; inputs that return, and bare expressions, are evaluated against
// the accumulated program without being kept.
type session struct {
	c       *compiler.Compiler
	history strings.Builder
}

// evalResult describes what one REPL input produced.
type evalResult struct {
	value   int64
	hasVal  bool
	kept    bool
	program string
}

func newSession(c *compiler.Compiler) *session {
	return &session{c: c}
}

// source returns the accumulated program.
func (s *session) source() string { return s.history.String() }

func (s *session) reset() { s.history.Reset() }

func (s *session) eval(input string) (evalResult, error) {
	tokens, diags := lexer.New(input, "<repl>").Tokenize()
	if len(diags) > 0 {
		return evalResult{}, diag.List(diags)
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		return evalResult{}, err
	}

	if bareExpr(prog) {
		// tokens are the expression, the closing ';' and EOF
		semi := tokens[len(tokens)-2]
		text := input[tokens[0].Span.Start.Offset:semi.Span.Start.Offset]
		program := s.source() + "return " + text + ";\n"
		v, err := s.c.Run(program, "<repl>")
		if err != nil {
			return evalResult{}, err
		}
		return evalResult{value: v, hasVal: true, program: program}, nil
	}

	program := s.source() + input
	v, err := s.c.Run(program, "<repl>")
	if err != nil {
		return evalResult{}, err
	}
	if containsReturn(prog) {
		return evalResult{value: v, hasVal: true, program: program}, nil
	}
	s.history.WriteString(input)
	if !strings.HasSuffix(input, "\n") {
		s.history.WriteString("\n")
	}
	return evalResult{kept: true, program: program}, nil
}

// bareExpr reports whether prog is a single expression statement other than
// an assignment.
func bareExpr(prog *ast.Program) bool {
	if len(prog.Stmts) != 1 {
		return false
	}
	expr, ok := prog.Stmts[0].(ast.Expr)
	if !ok {
		return false
	}
	_, isAssign := expr.(*ast.AssignExpr)
	return !isAssign
}

func containsReturn(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.Program:
		for _, s := range n.Stmts {
			if containsReturn(s) {
				return true
			}
		}
	case *ast.CompoundStmt:
		for _, s := range n.Stmts {
			if containsReturn(s) {
				return true
			}
		}
	case *ast.IfStmt:
		return containsReturn(n.Then) || (n.Else != nil && containsReturn(n.Else))
	case *ast.ReturnStmt:
		return true
	}
	return false
}

// ---- repl command ----

func cmdRepl(opts options) {
	// Determine history file path (~/.minic_history)
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".minic_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            colorGreen + "minic> " + colorReset,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	c := newCompiler(opts)

	// Welcome banner
	fmt.Fprintf(rl.Stdout(), "%s%sminic REPL%s %s(%d registers; :asm :ir :source :reset; 'exit' or Ctrl+D to quit)%s\n\n",
		colorBold, colorCyan, colorReset, colorGray, c.Registers(), colorReset)

	sess := newSession(c)
	var accumulated strings.Builder
	braceDepth := 0

	for {
		// Update prompt based on multi-line state
		if braceDepth > 0 {
			rl.SetPrompt(colorGray + "...    " + colorReset)
		} else {
			rl.SetPrompt(colorGreen + "minic> " + colorReset)
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if braceDepth > 0 {
					// Cancel multi-line input
					accumulated.Reset()
					braceDepth = 0
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s(use 'exit' or Ctrl+D to quit)%s\n", colorGray, colorReset)
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if braceDepth == 0 {
			switch strings.TrimSpace(line) {
			case "exit":
				return
			case ":reset":
				sess.reset()
				continue
			case ":source":
				fmt.Fprint(rl.Stdout(), sess.source())
				continue
			case ":asm", ":ir":
				replShow(rl.Stdout(), rl.Stderr(), c, sess, strings.TrimSpace(line))
				continue
			}
		}

		// Count braces for multi-line input
		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		accumulated.WriteString(line)
		accumulated.WriteString("\n")

		if braceDepth > 0 {
			continue
		}
		braceDepth = 0

		input := accumulated.String()
		accumulated.Reset()

		if strings.TrimSpace(input) == "" {
			continue
		}

		res, err := sess.eval(input)
		if err != nil {
			printDiagsColored(rl.Stderr(), compiler.Diagnostics(err))
			continue
		}
		if res.hasVal {
			fmt.Fprintf(rl.Stdout(), "%s%d%s\n", colorYellow, res.value, colorReset)
		}
	}
}

// replShow prints the assembly or IR of the accumulated program.
func replShow(out, errw io.Writer, c *compiler.Compiler, sess *session, what string) {
	if what == ":ir" {
		res, err := c.Lower(sess.source(), "<repl>")
		if err != nil {
			printDiagsColored(errw, compiler.Diagnostics(err))
			return
		}
		fmt.Fprint(out, colorGray+res.Func.Dump()+colorReset)
		return
	}
	res, err := c.Compile(sess.source(), "<repl>")
	if err != nil {
		printDiagsColored(errw, compiler.Diagnostics(err))
		return
	}
	fmt.Fprint(out, colorGray+res.Asm+colorReset)
}

// printDiagsColored prints diagnostics with red color for REPL display.
func printDiagsColored(w io.Writer, diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s%s%s\n", colorRed, d.String(), colorReset)
	}
}
