// Package scheduler periodically invokes the external notifier so it can
// check its schedule and post back through the webhook listener.
package scheduler

import (
	"bytes"
	"errors"
	"log"
	"math"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/daylit-io/daylit-tray/internal/models"
)

// IntervalEnvVar overrides the polling cadence in milliseconds.
const IntervalEnvVar = "DAYLIT_SCHEDULER_INTERVAL_MS"

// DefaultIntervalMs is the cadence used when the env var is unset or
// unparsable.
const DefaultIntervalMs = 60_000

// DefaultProgram is the external notifier binary resolved via PATH when
// no explicit path is configured.
const DefaultProgram = "daylit"

// Output captures what the poller needs from a finished child process.
type Output struct {
	Success  bool
	ExitCode int
	Stderr   []byte
}

// Runner abstracts subprocess execution so the poller is testable
// without a real binary.
type Runner interface {
	Run(program string, args ...string) (*Output, error)
}

// ExecRunner runs children through os/exec. Stdout is discarded; stderr
// is captured for error logging. No stdin is provided.
type ExecRunner struct{}

// Run executes the program and waits for it to exit.
func (ExecRunner) Run(program string, args ...string) (*Output, error) {
	cmd := exec.Command(program, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Output{
				Success:  false,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.Bytes(),
			}, nil
		}
		return nil, err
	}
	return &Output{Success: true, ExitCode: 0, Stderr: stderr.Bytes()}, nil
}

// Scheduler is the periodic poller thread. It sleeps first, then reads
// settings and spawns the notifier; it never terminates on its own.
type Scheduler struct {
	runner   Runner
	settings func() *models.Settings
	done     chan struct{}
}

// New creates a scheduler. settings is consulted once per tick so path
// changes take effect without a restart.
func New(runner Runner, settings func() *models.Settings) *Scheduler {
	return &Scheduler{
		runner:   runner,
		settings: settings,
		done:     make(chan struct{}),
	}
}

// Start launches the polling loop in its own goroutine.
func (s *Scheduler) Start() {
	go s.loop()
}

// Stop ends the loop at the next wakeup.
func (s *Scheduler) Stop() {
	close(s.done)
}

func (s *Scheduler) loop() {
	for {
		// Sleep first: the first check happens one full period after
		// startup, not immediately.
		select {
		case <-time.After(Interval()):
		case <-s.done:
			return
		}

		s.tick()
	}
}

// tick runs one notify check. All failures are logged and the loop
// returns to sleeping.
func (s *Scheduler) tick() {
	program := DefaultProgram
	if settings := s.settings(); settings != nil && settings.DaylitPath != nil && *settings.DaylitPath != "" {
		program = *settings.DaylitPath
	}

	output, err := s.runner.Run(program, "notify")
	if err != nil {
		log.Printf("Failed to execute %s notify at '%s': %v", DefaultProgram, program, err)
		return
	}
	if !output.Success {
		log.Printf("%s notify failed with exit code %d: %s",
			DefaultProgram, output.ExitCode, bytes.ToValidUTF8(output.Stderr, []byte("�")))
	}
}

// Interval returns the polling cadence, re-reading the environment so a
// change takes effect on the next tick.
func Interval() time.Duration {
	v := os.Getenv(IntervalEnvVar)
	if v == "" {
		return DefaultIntervalMs * time.Millisecond
	}
	ms, err := strconv.ParseUint(v, 10, 64)
	if err != nil || ms == 0 || ms > math.MaxInt64/uint64(time.Millisecond) {
		// Values that would overflow the duration get the same treatment
		// as unparsable ones; a negative interval would make time.After
		// fire immediately and turn the poller into a spawn loop.
		return DefaultIntervalMs * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}
