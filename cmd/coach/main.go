// Command coach is an interactive terminal client for the live
// voice-coaching service. It captures the microphone, streams PCM16 frames
// over the session event channel, prints live transcript lines and coaching
// suggestions as they arrive, and plays back spoken feedback.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vango-go/coach/internal/config"
	"github.com/vango-go/coach/pkg/coach"
	"github.com/vango-go/coach/pkg/coach/audio"
	"github.com/vango-go/coach/pkg/coach/session"
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	// Missing .env is fine; real env always wins over file values.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}

	var opt struct {
		baseURL      string
		apiKey       string
		userName     string
		eventDetails string
		goals        string
		participants string
		tone         string
		noPlayback   bool
		debug        bool
	}
	flag.StringVar(&opt.baseURL, "base-url", cfg.BaseURL, "Coaching service base URL (also COACH_BASE_URL)")
	flag.StringVar(&opt.apiKey, "api-key", cfg.APIKey, "API key (also COACH_API_KEY)")
	flag.StringVar(&opt.userName, "user", cfg.UserName, "Your name; required (also COACH_USER_NAME)")
	flag.StringVar(&opt.eventDetails, "event", cfg.EventDetails, "What kind of conversation this is (optional)")
	flag.StringVar(&opt.goals, "goals", cfg.Goals, "What you want out of it (optional)")
	flag.StringVar(&opt.participants, "participants", cfg.Participants, "Who you are talking to (optional)")
	flag.StringVar(&opt.tone, "tone", cfg.Tone, "Tone you are aiming for (optional)")
	flag.BoolVar(&opt.noPlayback, "no-playback", false, "Do not play spoken feedback through the speaker")
	flag.BoolVar(&opt.debug, "debug", cfg.Debug, "Enable debug logging and the mic level meter")
	flag.Parse()

	level := slog.LevelInfo
	if opt.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if strings.TrimSpace(opt.userName) == "" {
		fmt.Fprintln(os.Stderr, "--user is required (or set COACH_USER_NAME)")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := coach.NewClient(opt.baseURL,
		coach.WithAPIKey(opt.apiKey),
		coach.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		coach.WithLogger(logger),
	)
	client.ProbeHealth(ctx)

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithHooks(sessionHooks(logger, opt.debug)),
	}
	if !opt.noPlayback {
		player, err := audio.NewPlayback(logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "speaker init failed:", err)
			fmt.Fprintln(os.Stderr, "continuing without playback (try --no-playback to silence this)")
		} else {
			defer player.Close()
			opts = append(opts, session.WithPlayer(player))
		}
	}
	sess := session.New(client, opts...)

	sc := coach.SessionContext{
		UserName:     strings.TrimSpace(opt.userName),
		EventDetails: strings.TrimSpace(opt.eventDetails),
		Goals:        strings.TrimSpace(opt.goals),
		Participants: strings.TrimSpace(opt.participants),
		Tone:         strings.TrimSpace(opt.tone),
	}

	fmt.Println("commands: start | pause | resume | end | status | quit")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("> ")
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Println()
			return endIfActive(sess, logger)
		case line, ok = <-lines:
			if !ok {
				return endIfActive(sess, logger)
			}
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
		case "start":
			if err := sess.Start(ctx, sc); err != nil {
				printCommandError(err)
				continue
			}
			fmt.Printf("session %s recording; speak normally\n", sess.ID())
		case "pause":
			if err := sess.Pause(); err != nil {
				printCommandError(err)
				continue
			}
			fmt.Println("paused; mic is muted")
		case "resume":
			if err := sess.Resume(); err != nil {
				printCommandError(err)
				continue
			}
			fmt.Println("recording")
		case "end":
			summary, err := sess.End(ctx)
			if err != nil {
				printCommandError(err)
				continue
			}
			printSummary(summary)
		case "status":
			printStatus(sess)
		case "quit", "exit":
			return endIfActive(sess, logger)
		case "help":
			fmt.Println("commands: start | pause | resume | end | status | quit")
		default:
			fmt.Printf("unknown command %q (try help)\n", strings.TrimSpace(line))
		}
	}
}

func sessionHooks(logger *slog.Logger, debug bool) session.Hooks {
	h := session.Hooks{
		Transcript: func(e coach.TranscriptEntry) {
			fmt.Printf("[%s] %s\n", e.Speaker, e.Text)
		},
		Suggestion: func(view []coach.Suggestion) {
			if len(view) == 0 {
				return
			}
			fmt.Printf("[coach tip] %s\n", view[0].Text)
		},
		Warning: func(err error) {
			fmt.Fprintln(os.Stderr, "[warning] connection trouble:", err)
		},
	}
	if debug {
		h.Level = func(rms float64) {
			logger.Debug("mic level", "rms", fmt.Sprintf("%.4f", rms))
		}
	}
	return h
}

func printCommandError(err error) {
	var ce *coach.Error
	if errors.As(err, &ce) {
		switch ce.Type {
		case coach.ErrPermission:
			fmt.Fprintln(os.Stderr, "microphone permission denied; grant access to your terminal and retry")
		case coach.ErrDevice:
			fmt.Fprintln(os.Stderr, "microphone unavailable:", ce.Message)
		case coach.ErrState:
			fmt.Fprintln(os.Stderr, ce.Message)
		default:
			fmt.Fprintln(os.Stderr, "error:", ce.Message)
		}
		return
	}
	fmt.Fprintln(os.Stderr, "error:", err)
}

func printStatus(sess *session.Session) {
	fmt.Printf("state=%s", sess.State())
	if id := sess.ID(); id != "" {
		fmt.Printf(" session=%s", id)
	}
	fmt.Println()

	transcript := sess.Transcript()
	fmt.Printf("transcript: %d entries\n", len(transcript))
	for _, sg := range sess.Suggestions() {
		fmt.Printf("  tip: %s\n", sg.Text)
	}
}

func printSummary(summary *coach.SessionSummary) {
	if summary == nil {
		fmt.Println("session ended (no summary available)")
		return
	}
	fmt.Println("session ended")
	for _, s := range summary.Stars {
		fmt.Println("  ⭐", s)
	}
	if strings.TrimSpace(summary.Wish) != "" {
		fmt.Println("  wish:", summary.Wish)
	}
	if summary.FillerPercentage > 0 {
		fmt.Printf("  filler words: %.1f%%\n", summary.FillerPercentage)
	}
	for _, t := range summary.Takeaways {
		fmt.Println("  takeaway:", t)
	}
	for _, b := range summary.SummaryBullets {
		fmt.Println("  -", b)
	}
}

// endIfActive tears down a live session before the process exits so the
// service still produces a summary for it.
func endIfActive(sess *session.Session, logger *slog.Logger) int {
	st := sess.State()
	if st != session.StateRecording && st != session.StatePaused {
		return 0
	}
	// Fresh context: the signal context is usually already canceled here.
	summary, err := sess.End(context.Background())
	if err != nil {
		logger.Warn("teardown on exit", "error", err)
		return 1
	}
	printSummary(summary)
	return 0
}
