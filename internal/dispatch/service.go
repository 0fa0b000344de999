package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pddkit/pddserve/internal/audit"
	"github.com/pddkit/pddserve/internal/clog"
	"github.com/pddkit/pddserve/internal/executor"
	"github.com/pddkit/pddserve/internal/metrics"
	"github.com/pddkit/pddserve/internal/registry"
)

// Runner runs assembled command lines. *executor.Runner implements it.
type Runner interface {
	Executable() string
	TimeoutSeconds() int
	Run(ctx context.Context, argv []string, workdir string) executor.ExecuteResponse
}

// Service validates, assembles, runs and maps pdd commands.
type Service struct {
	runner    Runner
	assembler *Assembler
	audit     *audit.Logger
}

// NewService creates a Service. auditLog may be nil.
func NewService(runner Runner, assembler *Assembler, auditLog *audit.Logger) *Service {
	return &Service{runner: runner, assembler: assembler, audit: auditLog}
}

// Commands returns the command registry.
func (s *Service) Commands() []registry.CommandSpec {
	return registry.List()
}

// Execute runs req and returns the uniform response. It never fails:
// every error is reported through Response.Error.
//
// The subprocess is detached from ctx cancellation; only the configured
// timeout stops it.
func (s *Service) Execute(ctx context.Context, req Request) Response {
	id := uuid.NewString()

	if !registry.Has(req.Command) {
		err := newError(KindUnknownCommand, nil, "Unknown command: %s. Available commands: %s", req.Command, registry.NamesList())
		return s.reject(id, req.Command, err)
	}

	inv, err := s.assembler.Assemble(s.runner.Executable(), req)
	if err != nil {
		return s.reject(id, req.Command, err)
	}
	defer inv.Cleanup()

	cmdline := strings.Join(inv.Argv, " ")
	clog.Info("[%s] executing: %s", shortID(id), cmdline)
	s.logAudit(s.audit.LogRequest(id, req.Command, cmdline))

	metrics.ActiveExecutions.Inc()
	start := time.Now()
	res := s.runner.Run(context.WithoutCancel(ctx), inv.Argv, "")
	elapsed := res.Duration
	if elapsed == 0 {
		elapsed = time.Since(start)
	}
	metrics.ActiveExecutions.Dec()

	rerr := ResultError(req.Command, res, s.runner.TimeoutSeconds())
	s.record(id, req.Command, res, rerr, elapsed)
	if rerr != nil {
		return Failure(rerr.Message)
	}
	return Success(strings.TrimSpace(res.Stdout))
}

// reject reports a failure that happened before any subprocess was started.
func (s *Service) reject(id, command string, err error) Response {
	clog.Warn("[%s] %s rejected: %v", shortID(id), command, err)
	s.logAudit(s.audit.LogFail(id, command, string(KindOf(err)), err.Error()))
	label := command
	if !registry.Has(command) {
		label = metrics.UnknownCommand
	}
	metrics.RecordExecution(label, metrics.OutcomeRejected, 0)
	return FailureFrom(err)
}

func (s *Service) record(id, command string, res executor.ExecuteResponse, rerr *Error, elapsed time.Duration) {
	switch res.Status {
	case executor.StatusCompleted:
		s.logAudit(s.audit.LogComplete(id, command, res.ExitCode, elapsed))
	case executor.StatusTimeout:
		s.logAudit(s.audit.LogTimeout(id, command, elapsed))
	default:
		s.logAudit(s.audit.LogFail(id, command, string(rerr.Kind), res.Error))
	}

	if rerr == nil {
		clog.Info("[%s] PDD %s completed successfully in %s", shortID(id), command, elapsed.Round(time.Millisecond))
		metrics.RecordExecution(command, metrics.OutcomeSuccess, elapsed)
		return
	}

	clog.Error("[%s] PDD %s failed: %s", shortID(id), command, rerr.Message)
	outcome := metrics.OutcomeFailure
	switch rerr.Kind {
	case KindExecutionTimeout:
		outcome = metrics.OutcomeTimeout
	case KindExecutableNotFound:
		outcome = metrics.OutcomeNotFound
	case KindInternalError:
		outcome = metrics.OutcomeError
	}
	metrics.RecordExecution(command, outcome, elapsed)
}

func (s *Service) logAudit(err error) {
	if err != nil {
		clog.Warn("audit: %v", err)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
