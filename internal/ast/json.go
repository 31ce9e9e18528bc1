package ast

import "minic/internal/span"

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// This produces a tagged-union structure: every node has a "kind" field.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		return m("Program", n.Span, "stmts", nodeSlice(n.Stmts))

	// ---- Expressions ----
	case *NumLit:
		return m("NumLit", n.Span, "value", n.Value)
	case *Variable:
		return m("Variable", n.Span, "name", n.Name)
	case *UnaryExpr:
		return m("UnaryExpr", n.Span, "op", n.Op.String(), "operand", NodeToMap(n.Operand))
	case *BinaryExpr:
		return m("BinaryExpr", n.Span,
			"op", n.Op.String(),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *AssignExpr:
		return m("AssignExpr", n.Span,
			"target", NodeToMap(n.Target),
			"value", NodeToMap(n.Value))

	// ---- Statements ----
	case *DeclStmt:
		return m("DeclStmt", n.Span, "name", NodeToMap(n.Name), "init", NodeToMap(n.Init))
	case *IfStmt:
		result := m("IfStmt", n.Span,
			"cond", NodeToMap(n.Cond),
			"then", NodeToMap(n.Then))
		if n.Else != nil {
			result["else"] = NodeToMap(n.Else)
		}
		return result
	case *CompoundStmt:
		return m("CompoundStmt", n.Span, "stmts", nodeSlice(n.Stmts))
	case *ReturnStmt:
		return m("ReturnStmt", n.Span, "value", NodeToMap(n.Value))

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func nodeSlice(nodes []Node) []interface{} {
	result := make([]interface{}, len(nodes))
	for i, n := range nodes {
		result[i] = NodeToMap(n)
	}
	return result
}
