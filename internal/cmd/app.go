package cmd

import (
	"fmt"
	"os"

	"github.com/pddkit/pddserve/internal/audit"
	"github.com/pddkit/pddserve/internal/clog"
	"github.com/pddkit/pddserve/internal/config"
	"github.com/pddkit/pddserve/internal/dispatch"
	"github.com/pddkit/pddserve/internal/executor"
	"github.com/pddkit/pddserve/internal/workspace"
)

// app holds the components shared by serve and run.
type app struct {
	cfg       *config.Config
	runner    *executor.Runner
	service   *dispatch.Service
	files     *workspace.Store
	auditFile *os.File
}

// newApp wires the dispatch service and workspace store for cfg.
func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	var auditLog *audit.Logger
	if cfg.Log.AuditFile != "" {
		f, err := clog.OpenLogFile(cfg.Log.AuditFile)
		if err != nil {
			return nil, fmt.Errorf("audit log: %w", err)
		}
		a.auditFile = f
		auditLog = audit.NewLogger(f)
	}

	a.runner = executor.NewRunner(cfg, executor.NewRealExecutor())
	assembler := dispatch.NewAssembler(cfg.Server.Root, cfg.Prompt)
	a.service = dispatch.NewService(a.runner, assembler, auditLog)
	a.files = workspace.New(cfg.Server.Root, auditLog)
	return a, nil
}

// Close releases the audit log file, if one was opened.
func (a *app) Close() error {
	if a.auditFile == nil {
		return nil
	}
	err := a.auditFile.Close()
	a.auditFile = nil
	return err
}
