package policy

import (
	"context"
	"errors"

	"custodia/internal/domain"

	"github.com/open-policy-agent/opa/rego"
)

// Role policy for custody operations. Redaction and export need an analyst
// or an admin; deletion is admin-only; everything else needs any
// authenticated role.
const authzModule = `package custodia.authz

default allow = false

base_actions = {"ingest", "access", "transcribe", "summarize", "history", "verify"}

privileged = {"admin", "forensic_analyst"}

allow {
	base_actions[input.action]
	input.role != ""
}

allow {
	input.action == "redact"
	privileged[input.role]
}

allow {
	input.action == "export"
	privileged[input.role]
}

allow {
	input.action == "delete"
	input.role == "admin"
}
`

type Engine struct {
	query rego.PreparedEvalQuery
}

func NewEngine(ctx context.Context) (*Engine, error) {
	prepared, err := rego.New(
		rego.Query("data.custodia.authz.allow"),
		rego.Module("authz.rego", authzModule),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Allow(ctx context.Context, actor domain.Actor, action string) (bool, error) {
	if e == nil {
		return false, errors.New("policy engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]any{
		"role":   actor.Role,
		"action": action,
	}))
	if err != nil {
		return false, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := results[0].Expressions[0].Value.(bool)
	return ok && allowed, nil
}
