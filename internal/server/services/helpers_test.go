package services

import (
	"testing"

	"github.com/dmitrijs2005/gotodo/internal/logging"
	"github.com/dmitrijs2005/gotodo/internal/server/config"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/repomanager"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults(config.ModeTest)
	return cfg
}

func newServices(t *testing.T, cfg *config.Config) (*UserService, *TodoService, repomanager.RepositoryManager) {
	t.Helper()
	m := repomanager.NewInMemoryRepositoryManager()
	return NewUserService(m, cfg, logging.Nop()), NewTodoService(m, cfg, logging.Nop()), m
}
