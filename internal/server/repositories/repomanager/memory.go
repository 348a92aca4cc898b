package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gotodo/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/todos"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in process memory. Data is lost
// on restart. InTx serializes transactional use-cases but cannot roll back
// the writes of a failed one.
type InMemoryRepositoryManager struct {
	db   *memory.DB
	txMu *sync.Mutex
	inTx bool
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{db: memory.NewDB(), txMu: &sync.Mutex{}}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Users() users.Repository       { return m.db.Users() }
func (m *InMemoryRepositoryManager) Sessions() sessions.Repository { return m.db.Sessions() }
func (m *InMemoryRepositoryManager) Todos() todos.Repository       { return m.db.Todos() }

func (m *InMemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, tx RepositoryManager) error) error {
	if m.inTx {
		return fn(ctx, m)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, &InMemoryRepositoryManager{db: m.db, txMu: m.txMu, inTx: true})
}

func (m *InMemoryRepositoryManager) Close() error { return nil }
