package relational

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Renderer renders conditions as SQL for one dialect. It runs GORM in dry
// run mode and never opens a connection.
type Renderer struct {
	db *gorm.DB
}

// NewRenderer creates a Renderer for dialector.
func NewRenderer(dialector gorm.Dialector) (*Renderer, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQL renderer: %w", err)
	}
	return &Renderer{db: db}, nil
}

// NewPostgresRenderer creates a Renderer for the PostgreSQL dialect.
func NewPostgresRenderer() (*Renderer, error) {
	return NewRenderer(postgres.New(postgres.Config{DSN: "host=localhost"}))
}

// Render returns the SQL text of expr and its bind variables.
func (r *Renderer) Render(expr clause.Expression) (string, []interface{}) {
	if expr == nil {
		return "", nil
	}
	stmt := &gorm.Statement{
		DB:      r.db,
		Context: context.Background(),
		Clauses: map[string]clause.Clause{},
	}
	expr.Build(stmt)
	return stmt.SQL.String(), stmt.Vars
}

// Explain returns the SQL text of expr with bind variables inlined, for
// logging and inspection only.
func (r *Renderer) Explain(expr clause.Expression) string {
	sql, vars := r.Render(expr)
	return r.db.Dialector.Explain(sql, vars...)
}
