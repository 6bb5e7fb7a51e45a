package executor

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"opscurator/internal/domain"
	"opscurator/internal/service"
)

var defaultFailureOutput = map[domain.Category]string{
	domain.CategoryBash:    "❌ Task not completed correctly. Check your code and try again.",
	domain.CategoryPython:  "❌ Function not implemented correctly. Check your code and try again.",
	domain.CategoryAnsible: "❌ Ansible task not configured correctly. Check your playbook syntax.",
	domain.CategoryLinux:   "❌ Command not correct. Check your code and try again.",
}

// patternExecutor "runs" submissions by matching them against the lab's
// checks after a fixed delay. Nothing is executed.
type patternExecutor struct {
	delay  time.Duration
	logger *zap.Logger
}

func NewPatternExecutor(delay time.Duration, logger *zap.Logger) service.Executor {
	return &patternExecutor{
		delay:  delay,
		logger: logger.Named("executor"),
	}
}

// Evaluate reports whether code satisfies any of the lab's checks and the
// output a learner sees.
func Evaluate(lab *domain.Lab, code string) (bool, string) {
	cleanCode := strings.ReplaceAll(code, "\r\n", "\n")

	for _, check := range lab.Checks {
		if matchesAll(cleanCode, check.AllOf) {
			return true, lab.SuccessOutput
		}
	}

	if lab.FailureOutput != "" {
		return false, lab.FailureOutput
	}
	if out, ok := defaultFailureOutput[lab.Category]; ok {
		return false, out
	}
	return false, "❌ Task not completed correctly. Check your code and try again."
}

func matchesAll(code string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	for _, p := range patterns {
		if !strings.Contains(code, p) {
			return false
		}
	}
	return true
}

func (e *patternExecutor) Execute(ctx context.Context, config domain.RunConfig) (<-chan service.ExecutionResult, <-chan service.ExecutionFinalState, error) {
	if config.Lab == nil {
		return nil, nil, fmt.Errorf("%w: no lab to run", domain.ErrInvalidInput)
	}

	logStream := make(chan service.ExecutionResult)
	finalState := make(chan service.ExecutionFinalState, 1)

	go func() {
		defer close(logStream)
		defer close(finalState)

		e.logger.Debug("simulating run",
			zap.String("lab_id", config.Lab.ID),
			zap.String("workspace_id", config.WorkspaceID),
			zap.Duration("delay", e.delay))

		if e.delay > 0 {
			timer := time.NewTimer(e.delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				e.reportError(config.WorkspaceID, ctx.Err(), finalState)
				return
			}
		}

		success, output := Evaluate(config.Lab, config.Code)

		if err := e.streamLogs(ctx, output, logStream); err != nil {
			e.reportError(config.WorkspaceID, err, finalState)
			return
		}

		finalState <- service.ExecutionFinalState{
			WorkspaceID: config.WorkspaceID,
			Success:     success,
			Output:      output,
		}
	}()

	return logStream, finalState, nil
}

func (e *patternExecutor) streamLogs(ctx context.Context, output string, logStream chan<- service.ExecutionResult) error {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		select {
		case logStream <- service.ExecutionResult{Line: scanner.Text()}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}

func (e *patternExecutor) reportError(wsID string, err error, ch chan<- service.ExecutionFinalState) {
	e.logger.Warn("run aborted", zap.String("workspace_id", wsID), zap.Error(err))
	ch <- service.ExecutionFinalState{WorkspaceID: wsID, Error: err}
}
