package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/MaxXSoft/Ionia/ast"
)

const (
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// toJSON converts a single AST node into a JSON-friendly representation
// of maps and slices. Ionia's node set is closed, so a plain type switch
// is simpler here than the visitor pattern node.Eval/Emit use to keep
// the interpreter and compiler decoupled from each other.
func toJSON(n ast.Node) any {
	switch node := n.(type) {
	case *ast.Id:
		return map[string]any{
			"type": "Id",
			"name": node.Name,
		}
	case *ast.Num:
		return map[string]any{
			"type":  "Num",
			"value": node.Value,
		}
	case *ast.Define:
		return map[string]any{
			"type": "Define",
			"name": node.Name,
			"expr": toJSON(node.Expr),
		}
	case *ast.Func:
		return map[string]any{
			"type":   "Func",
			"params": node.Params,
			"body":   toJSON(node.Body),
		}
	case *ast.FunCall:
		args := make([]any, 0, len(node.Args))
		for _, a := range node.Args {
			args = append(args, toJSON(a))
		}
		return map[string]any{
			"type":   "FunCall",
			"callee": toJSON(node.Callee),
			"args":   args,
		}
	default:
		return map[string]any{
			"type": fmt.Sprintf("unknown(%T)", n),
		}
	}
}

// PrintASTJSON converts a slice of top-level nodes into a prettified
// JSON string, printing it to stdout wrapped in a colored banner.
func PrintASTJSON(nodes []ast.Node) (string, error) {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, toJSON(n))
	}
	bytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}

	jsonStr := string(bytes)
	fmt.Println(colorYellow + "----- AST JSON -----")
	fmt.Println(colorYellow + jsonStr)
	fmt.Println(colorYellow + "-----" + colorReset)
	fmt.Println("")
	return jsonStr, nil
}

// WriteASTJSONToFile writes the prettified AST JSON to the given file path.
func WriteASTJSONToFile(nodes []ast.Node, path string) error {
	s, err := PrintASTJSON(nodes)
	if err != nil {
		return err
	}
	fDescriptor, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating AST file: %s", err.Error())
	}
	defer fDescriptor.Close()

	if _, err := fDescriptor.Write([]byte(s)); err != nil {
		return fmt.Errorf("error writing AST to file: %s", err.Error())
	}
	return nil
}
