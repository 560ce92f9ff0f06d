package registry

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/worldmonitor/gatewayd/pkg/endpoint"
)

// scriptHandler wraps a compiled expression program. The program is
// evaluated once per invocation against the request environment and must
// produce a response map.
type scriptHandler struct {
	module  *Module
	token   string
	program *vm.Program
}

// compileScript compiles a .expr handler module. A script that does not
// compile is a load error; a script that compiles but evaluates to something
// other than a map fails at invocation time.
func compileScript(m *Module, token string, src []byte) (Handler, error) {
	program, err := expr.Compile(string(src), expr.Env(scriptEnv(nil, token)))
	if err != nil {
		return nil, fmt.Errorf("compile script: %w", err)
	}
	return &scriptHandler{module: m, token: token, program: program}, nil
}

// Invoke implements Handler.
func (h *scriptHandler) Invoke(ctx context.Context, req *endpoint.Request) (*endpoint.Response, error) {
	out, err := expr.Run(h.program, scriptEnv(req, h.token))
	if err != nil {
		return nil, fmt.Errorf("handler %q: %w", h.module.Endpoint, err)
	}

	result, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("handler %q: script returned %T, want a response map", h.module.Endpoint, out)
	}
	return responseFromMap(result)
}

// scriptEnv builds the expression environment. Compilation passes a nil
// request, which yields the same key set with zero values.
func scriptEnv(req *endpoint.Request, token string) map[string]any {
	return map[string]any{
		"request":   requestEnv(req),
		"loadToken": token,
	}
}
