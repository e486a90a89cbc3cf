package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"numdrop/internal/config"
	"numdrop/internal/conn"
	"numdrop/internal/flow"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dialCtx, dialCancel := context.WithTimeout(ctx, cfg.DialTimeout)
	mgr, err := conn.Dial(dialCtx, cfg.ServerURL, logger)
	dialCancel()
	if err != nil {
		logger.Fatal("connect failed", zap.String("url", cfg.ServerURL), zap.Error(err))
	}
	defer mgr.Close()

	ctrl := flow.NewDefault(mgr, logger)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mgr.Run(gctx) })
	g.Go(func() error { return runLoop(gctx, cancel, ctrl, mgr, lines) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("session ended", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("bye")
}

// runLoop is the single goroutine that drives the controller: one inbound
// event or one typed command at a time, never both.
func runLoop(ctx context.Context, quit context.CancelFunc, ctrl *flow.Controller, mgr *conn.Manager, lines <-chan string) error {
	fmt.Println("numdrop — commands: create <name> <size> | join <code> <name> | pick <n> | start | drop <n> | again | leave | quit")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-mgr.Events():
			if !ok {
				fmt.Println("connection closed, session over")
				quit()
				return nil
			}
			if err := ctrl.HandleEvent(ctx, ev); err != nil {
				return err
			}
			render(ctrl)

		case line, ok := <-lines:
			if !ok {
				quit()
				return nil
			}
			if done := dispatch(ctx, ctrl, line); done {
				quit()
				return nil
			}
			render(ctrl)
		}
	}
}

// dispatch parses one typed command. Returns true when the user quits.
func dispatch(ctx context.Context, ctrl *flow.Controller, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	var err error
	switch fields[0] {
	case "create":
		if len(fields) != 3 {
			fmt.Println("usage: create <name> <size>")
			return false
		}
		size, convErr := strconv.Atoi(fields[2])
		if convErr != nil {
			fmt.Println("board size must be a number")
			return false
		}
		if err = ctrl.BeginCreate(); err == nil {
			err = ctrl.CreateLobby(ctx, fields[1], size)
		}
	case "join":
		if len(fields) != 3 {
			fmt.Println("usage: join <code> <name>")
			return false
		}
		if err = ctrl.BeginJoin(); err == nil {
			err = ctrl.JoinLobby(ctx, fields[1], fields[2])
		}
	case "pick":
		err = numberCommand(ctx, fields, ctrl.SelectNumber)
	case "drop":
		err = numberCommand(ctx, fields, ctrl.EliminateNumber)
	case "start":
		err = ctrl.StartGame(ctx)
	case "again":
		err = ctrl.RequestReplay(ctx)
	case "leave":
		ctrl.LeaveLobby(ctx)
	case "quit":
		ctrl.LeaveLobby(ctx)
		return true
	default:
		fmt.Println("unknown command:", fields[0])
	}

	if err != nil {
		fmt.Println("!", err)
	}
	return false
}

func numberCommand(ctx context.Context, fields []string, fn func(context.Context, int) error) error {
	if len(fields) != 2 {
		return fmt.Errorf("usage: %s <n>", fields[0])
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("%s: not a number", fields[1])
	}
	return fn(ctx, n)
}

func render(ctrl *flow.Controller) {
	snap := ctrl.Snapshot()
	fmt.Printf("[%s]", ctrl.Phase())
	if ctrl.LobbyCode() != "" {
		fmt.Printf(" lobby=%s", ctrl.LobbyCode())
	}
	if len(snap.Players) > 0 {
		names := make([]string, 0, len(snap.Players))
		for _, p := range snap.Players {
			tag := p.Name
			if p.SelectedNumber != nil {
				tag += "*"
			}
			if p.IsEliminated {
				tag += " (out)"
			}
			names = append(names, tag)
		}
		fmt.Printf(" players=%s", strings.Join(names, ", "))
	}
	if snap.Started {
		fmt.Printf(" turn=%s pool=%v", snap.CurrentTurnName, snap.Numbers)
	}
	fmt.Println()

	for _, n := range ctrl.Notes().Active() {
		fmt.Println(" *", n.Text)
	}

	if out := ctrl.Outcome(); out != nil {
		fmt.Println(" final standings:")
		for _, row := range out {
			fmt.Printf("   %d. %s (number %d)\n", row.Placement, row.Name, row.Number)
		}
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
