package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// template is a string with zero or more {{ ... }} expression segments,
// compiled once at handler load time.
type template struct {
	segments []segment
}

type segment struct {
	literal string
	program *vm.Program // nil for literal segments
}

// parseTemplate splits src on {{ }} delimiters and compiles each expression.
func parseTemplate(src, token string) (*template, error) {
	tmpl := &template{}
	rest := src
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			if rest != "" {
				tmpl.segments = append(tmpl.segments, segment{literal: rest})
			}
			return tmpl, nil
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			return nil, fmt.Errorf("unterminated expression in %q", src)
		}
		if start > 0 {
			tmpl.segments = append(tmpl.segments, segment{literal: rest[:start]})
		}

		exprSrc := strings.TrimSpace(rest[start+2 : start+end])
		program, err := expr.Compile(exprSrc, expr.Env(scriptEnv(nil, token)))
		if err != nil {
			return nil, fmt.Errorf("compile expression %q: %w", exprSrc, err)
		}
		tmpl.segments = append(tmpl.segments, segment{program: program})
		rest = rest[start+end+2:]
	}
}

// render evaluates the template. A template that is exactly one expression
// returns the evaluated value unchanged; mixed templates return a string.
func (t *template) render(env map[string]any) (any, error) {
	if len(t.segments) == 1 && t.segments[0].program != nil {
		return expr.Run(t.segments[0].program, env)
	}
	s, err := t.renderString(env)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// renderString evaluates the template and stringifies every segment.
// Non-string expression results are JSON-encoded into the output.
func (t *template) renderString(env map[string]any) (string, error) {
	var b strings.Builder
	for _, seg := range t.segments {
		if seg.program == nil {
			b.WriteString(seg.literal)
			continue
		}
		out, err := expr.Run(seg.program, env)
		if err != nil {
			return "", err
		}
		switch v := out.(type) {
		case string:
			b.WriteString(v)
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			b.Write(encoded)
		}
	}
	return b.String(), nil
}
