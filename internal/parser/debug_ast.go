package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"monkey/internal/ast"

	"gopkg.in/yaml.v3"
)

// WalkAST recursively traverses an AST and serializes it into a map structure.
// Keys carry a numeric prefix so encoders that sort keys keep a readable order.
func WalkAST(node ast.Node) interface{} {
	switch n := node.(type) {
	case *ast.Program:
		statements := make([]interface{}, len(n.Statements))
		for i, s := range n.Statements {
			statements[i] = WalkAST(s)
		}
		return map[string]interface{}{
			"0.type":       "Program",
			"1.statements": statements,
		}

	case *ast.LetStatement:
		return map[string]interface{}{
			"0.type":     "LetStatement",
			"1.position": n.Token.Position,
			"2.token":    n.TokenLiteral(),
			"3.name":     WalkAST(n.Name),
			"4.value":    WalkAST(n.Value),
		}

	case *ast.ReturnStatement:
		var value interface{}
		if n.ReturnValue != nil {
			value = WalkAST(n.ReturnValue)
		}
		return map[string]interface{}{
			"0.type":        "ReturnStatement",
			"1.position":    n.Token.Position,
			"2.token":       n.TokenLiteral(),
			"3.returnValue": value,
		}

	case *ast.ExpressionStatement:
		return map[string]interface{}{
			"0.type":       "ExpressionStatement",
			"1.position":   n.Token.Position,
			"2.token":      n.TokenLiteral(),
			"3.expression": WalkAST(n.Expression),
		}

	case *ast.BlockStatement:
		statements := make([]interface{}, len(n.Statements))
		for i, s := range n.Statements {
			statements[i] = WalkAST(s)
		}
		return map[string]interface{}{
			"0.type":       "BlockStatement",
			"1.position":   n.Token.Position,
			"2.statements": statements,
		}

	case *ast.Identifier:
		return map[string]interface{}{
			"0.type":     "Identifier",
			"1.position": n.Token.Position,
			"2.value":    n.Value,
		}

	case *ast.Boolean:
		return map[string]interface{}{
			"0.type":     "Boolean",
			"1.position": n.Token.Position,
			"2.value":    n.Value,
		}

	case *ast.IntegerLiteral:
		return map[string]interface{}{
			"0.type":     "IntegerLiteral",
			"1.position": n.Token.Position,
			"2.value":    n.Value,
		}

	case *ast.StringLiteral:
		return map[string]interface{}{
			"0.type":     "StringLiteral",
			"1.position": n.Token.Position,
			"2.value":    n.Value,
		}

	case *ast.ArrayLiteral:
		elements := make([]interface{}, len(n.Elements))
		for i, e := range n.Elements {
			elements[i] = WalkAST(e)
		}
		return map[string]interface{}{
			"0.type":     "ArrayLiteral",
			"1.position": n.Token.Position,
			"2.elements": elements,
		}

	case *ast.PrefixExpression:
		return map[string]interface{}{
			"0.type":     "PrefixExpression",
			"1.position": n.Token.Position,
			"2.operator": n.Operator,
			"3.right":    WalkAST(n.Right),
		}

	case *ast.InfixExpression:
		return map[string]interface{}{
			"0.type":     "InfixExpression",
			"1.position": n.Token.Position,
			"2.left":     WalkAST(n.Left),
			"3.operator": n.Operator,
			"4.right":    WalkAST(n.Right),
		}

	case *ast.IfExpression:
		var alternative interface{}
		if n.Alternative != nil {
			alternative = WalkAST(n.Alternative)
		}
		return map[string]interface{}{
			"0.type":        "IfExpression",
			"1.position":    n.Token.Position,
			"2.condition":   WalkAST(n.Condition),
			"3.consequence": WalkAST(n.Consequence),
			"4.alternative": alternative,
		}

	case *ast.FunctionLiteral:
		params := make([]interface{}, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = WalkAST(p)
		}
		return map[string]interface{}{
			"0.type":       "FunctionLiteral",
			"1.position":   n.Token.Position,
			"2.parameters": params,
			"3.body":       WalkAST(n.Body),
		}

	case *ast.CallExpression:
		args := make([]interface{}, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = WalkAST(a)
		}
		return map[string]interface{}{
			"0.type":      "CallExpression",
			"1.position":  n.Token.Position,
			"2.function":  WalkAST(n.Function),
			"3.arguments": args,
		}

	case *ast.IndexExpression:
		return map[string]interface{}{
			"0.type":     "IndexExpression",
			"1.position": n.Token.Position,
			"2.left":     WalkAST(n.Left),
			"3.index":    WalkAST(n.Index),
		}

	default:
		return map[string]interface{}{
			"0.type": fmt.Sprintf("Unknown: %T", n),
		}
	}
}

// WriteAST renders the AST of node to w in the given format ("json" or "yaml").
func WriteAST(w io.Writer, node ast.Node, format string) error {
	astMap := WalkAST(node)

	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")  // Pretty-print the JSON
		encoder.SetEscapeHTML(false) // Disable escaping of characters like <, >, &
		if err := encoder.Encode(astMap); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(astMap); err != nil {
			return fmt.Errorf("failed to write YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to write YAML: %w", err)
		}
	default:
		return fmt.Errorf("unknown AST format %q", format)
	}
	return nil
}
