package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/hestia/pkg/consts"
	herrors "github.com/turtacn/hestia/pkg/errors"
	"github.com/turtacn/hestia/pkg/logger"
)

// FatalError is returned by a lifecycle call whose failure was escalated. In
// production the process has exited before anyone sees it.
type FatalError struct {
	Phase consts.Phase
	Errs  []error
}

func (e *FatalError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("fatal error during %s: %s", e.Phase, strings.Join(msgs, "; "))
}

func (e *FatalError) Unwrap() []error { return e.Errs }

// FatalError logs every error with its full diagnostic, makes a best-effort stop,
// waits for the log sink to flush and terminates the process with status 1.
// Escalations raised by that best-effort stop are logged and otherwise ignored.
func (c *Controller) FatalError(ctx context.Context, phase consts.Phase, errs ...error) error {
	list := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			list = append(list, err)
		}
	}
	if len(list) == 0 {
		return nil
	}
	fe := &FatalError{Phase: phase, Errs: list}

	c.mu.Lock()
	secondary := c.escalating
	c.escalating = true
	c.mu.Unlock()
	if secondary {
		c.log.Error("Error during fatal cleanup", "phase", phase, "err", fe.Error())
		return fe
	}

	c.metrics.Fatal(phase)
	c.log.Emerg("Fatal error during "+string(phase), "phase", phase, "errors", len(list))
	for _, err := range list {
		c.log.Log(err.Error(), logger.SeverityEmerg, herrors.Detail(err))
	}

	c.bestEffortStop(ctx)
	pause(context.Background(), c.opts.FlushDelay)

	c.mu.Lock()
	c.escalating = false
	c.mu.Unlock()

	c.terminate(1)

	// Only reached when terminate does not exit. A stop aborted before its
	// teardown step would otherwise leave shuttingDown set for good.
	c.mu.Lock()
	c.st.shuttingDown = false
	c.mu.Unlock()
	return fe
}

func (c *Controller) bestEffortStop(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Safe(func() { c.log.Error("Panic during fatal cleanup", "panic", r) })
		}
	}()
	_ = c.Stop(ctx)
}

// Personal.AI order the ending
