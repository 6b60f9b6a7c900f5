package assess

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// maxSyntaxDepth bounds the error-node search on heavily malformed input.
const maxSyntaxDepth = 1000

// CheckSyntax parses content as a full Python document and reports
// validity. On failure the message carries the first error's line and
// column, one-based line first.
func CheckSyntax(ctx context.Context, content string) (ok bool, message string) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, []byte(content))
	if err != nil {
		return false, fmt.Sprintf("parse failed: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return true, ""
	}

	node := firstErrorNode(root, 0)
	if node == nil {
		return false, "invalid syntax"
	}

	point := node.StartPoint()
	line, col := int(point.Row)+1, int(point.Column)
	if node.IsMissing() {
		return false, fmt.Sprintf("missing %s at line %d:%d", node.Type(), line, col)
	}

	start, end := node.StartByte(), node.EndByte()
	if end > uint32(len(content)) {
		end = uint32(len(content))
	}
	snippet := ""
	if end > start {
		snippet = content[start:end]
		if len(snippet) > 40 {
			snippet = snippet[:40]
		}
	}
	if snippet != "" {
		return false, fmt.Sprintf("invalid syntax near %q at line %d:%d", snippet, line, col)
	}
	return false, fmt.Sprintf("invalid syntax at line %d:%d", line, col)
}

func firstErrorNode(node *sitter.Node, depth int) *sitter.Node {
	if depth > maxSyntaxDepth {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if !child.HasError() && !child.IsMissing() {
			continue
		}
		if found := firstErrorNode(child, depth+1); found != nil {
			return found
		}
	}
	return nil
}
