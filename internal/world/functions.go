// Package world extracts structural facts from Rust sources with tree-sitter.
package world

import (
	"context"
	"fmt"
	"os"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"zest/internal/logging"
)

const functionQuery = `
(function_item
  name: (identifier) @name)
`

// functionInProgramQuery matches functions declared directly in the body of
// a module annotated with #[program].
const functionInProgramQuery = `
(
  (
    (attribute_item
      (attribute
        (identifier) @_program))
    (mod_item
      body:
      (declaration_list
        (function_item
          name: (identifier) @name)))
  )
  (#match? @_program "^program$")
)
`

// Position is a zero-based row/column location in a source file.
type Position struct {
	Row    uint32 `json:"row"`
	Column uint32 `json:"column"`
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Row+1, p.Column+1) }

// Function is one function declaration and its full extent.
type Function struct {
	Name  string   `json:"name"`
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Scope selects which functions ExtractFunctions returns.
type Scope int

const (
	// AllFunctions returns every function item in the file.
	AllFunctions Scope = iota
	// ProgramFunctions returns only the instruction handlers of an Anchor
	// #[program] module.
	ProgramFunctions
)

// ExtractFunctionsFile reads path and extracts its functions.
func ExtractFunctionsFile(ctx context.Context, path string, scope Scope) ([]Function, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fns, err := ExtractFunctions(ctx, content, scope)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.WorldDebug("extracted %d functions from %s", len(fns), path)
	return fns, nil
}

// ExtractFunctions parses Rust source and returns its functions sorted by
// name. A name declared more than once keeps its last declaration.
func ExtractFunctions(ctx context.Context, content []byte, scope Scope) ([]Function, error) {
	lang := rust.GetLanguage()

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	defer tree.Close()

	pattern := functionQuery
	if scope == ProgramFunctions {
		pattern = functionInProgramQuery
	}
	q, err := sitter.NewQuery([]byte(pattern), lang)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	byName := make(map[string]Function)
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, content)
		for _, c := range m.Captures {
			if q.CaptureNameForId(c.Index) != "name" {
				continue
			}
			span := c.Node
			if parent := c.Node.Parent(); parent != nil && parent.Type() == "function_item" {
				span = parent
			}
			name := c.Node.Content(content)
			byName[name] = Function{
				Name:  name,
				Start: Position{Row: span.StartPoint().Row, Column: span.StartPoint().Column},
				End:   Position{Row: span.EndPoint().Row, Column: span.EndPoint().Column},
			}
		}
	}

	out := make([]Function, 0, len(byName))
	for _, fn := range byName {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
