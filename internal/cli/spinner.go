package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// showElapsedAfter is when the spinner starts appending the elapsed time.
const showElapsedAfter = 2 * time.Second

// Spinner animates a status line on a terminal while a slow call such as an
// analysis request runs. On anything else it prints the message once.
// The animation also ends when ctx is cancelled.
type Spinner struct {
	out         io.Writer
	interactive bool
	ctx         context.Context
	cancel      context.CancelFunc
	start       time.Time

	mu      sync.Mutex
	message string
	width   int // widest line drawn, for clearing

	stopOnce sync.Once
	done     chan struct{} // closed when the animation goroutine exits
}

// newSpinner writes to stderr, animating only when stderr is a terminal.
func newSpinner(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, isatty.IsTerminal(os.Stderr.Fd()), message)
}

func newSpinnerTo(ctx context.Context, out io.Writer, interactive bool, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		out:         out,
		interactive: interactive,
		ctx:         sctx,
		cancel:      cancel,
		message:     message,
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.start = time.Now()
	if !s.interactive {
		fmt.Fprintln(s.out, s.message+"...")
		return
	}
	s.done = make(chan struct{})
	go s.run()
}

func (s *Spinner) run() {
	defer close(s.done)
	tick := time.NewTicker(80 * time.Millisecond)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-tick.C:
			s.draw(frame)
		}
	}
}

func (s *Spinner) draw(frame int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.message
	if took := time.Since(s.start); took >= showElapsedAfter {
		text += fmt.Sprintf(" (%ds)", int(took.Seconds()))
	}
	s.width = max(s.width, len(text)+2)
	icon := styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)])
	fmt.Fprintf(s.out, "\r%s %s", icon, StyleDim.Render(text))
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// Update replaces the message.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop ends the animation, clears the line and returns the time since
// Start. Later calls only return the elapsed time.
func (s *Spinner) Stop() time.Duration {
	s.stopOnce.Do(func() {
		s.cancel()
		if s.done != nil {
			<-s.done
		}
	})
	if s.start.IsZero() {
		return 0
	}
	return time.Since(s.start)
}

// Fail stops the spinner and prints msg as an error line.
func (s *Spinner) Fail(msg string) {
	s.Stop()
	printError("%s", msg)
}
