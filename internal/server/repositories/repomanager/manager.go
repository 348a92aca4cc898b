// Package repomanager vends the repositories of the selected store and runs
// multi-statement use-cases inside one transaction.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gotodo/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/todos"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Sessions() sessions.Repository
	Todos() todos.Repository
	// InTx runs fn with a manager whose repositories share one transaction.
	// A nested InTx joins the outer transaction.
	InTx(ctx context.Context, fn func(ctx context.Context, tx RepositoryManager) error) error
	Close() error
}
