package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	tinygoproprig "github.com/ralvarezdev/tinygo-proprig"
	"github.com/ralvarezdev/tinygo-proprig/gate"
	"github.com/ralvarezdev/tinygo-proprig/sim"
)

type (
	// runOptions are the flags of the run command.
	runOptions struct {
		pressAfter time.Duration
		buttons    string
		readyDelay time.Duration
		timeout    time.Duration
		summary    bool
	}
)

// newRunCmd creates the command running the rig until the quit command.
func newRunCmd(root *rootOptions) *cobra.Command {
	options := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the rig against the simulated board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRig(cmd, root, options)
		},
	}

	cmd.Flags().DurationVar(&options.pressAfter, "press-after", 2*time.Second, "delay before the simulated operator presses the start buttons")
	cmd.Flags().StringVar(&options.buttons, "buttons", "", "buttons the simulated operator presses: left, right or both (defaults to the gate button)")
	cmd.Flags().DurationVar(&options.readyDelay, "ready-delay", time.Millisecond, "delay before an enabled peripheral reports ready")
	cmd.Flags().DurationVar(&options.timeout, "timeout", 0, "stop the rig after this duration, 0 to run until quit")
	cmd.Flags().BoolVar(&options.summary, "summary", true, "print the run summary to stderr on exit")
	return cmd
}

// runRig runs the rig and the simulated board until the rig stops.
func runRig(cmd *cobra.Command, root *rootOptions, options *runOptions) error {
	logger, err := newLogger(root.verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	runID := uuid.New().String()
	logger = logger.With(zap.String("run_id", runID))

	cfg, err := loadConfig(root.configFile)
	if err != nil {
		return err
	}

	buttons := cfg.GateButton()
	if options.buttons != "" {
		buttons = gate.ParseButtonState(options.buttons)
		if !buttons.IsValid() {
			return fmt.Errorf("unknown buttons %q", options.buttons)
		}
	}

	board := sim.NewBoard(
		cmd.OutOrStdout(),
		sim.Options{
			Buttons:         buttons,
			PressAfter:      options.pressAfter,
			ReadyDelay:      options.readyDelay,
			PWMClockHz:      cfg.PWMClockHz(),
			DebounceSamples: cfg.Gate.DebounceSamples,
		},
		logger.Named("board"),
	)
	rig, code := tinygoproprig.NewRig(cfg, board)
	if code != tinygoerrors.ErrorCodeNil {
		return fmt.Errorf("failed to create rig: error code %d", code)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if options.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.timeout)
		defer cancel()
	}

	logger.Info("rig starting",
		zap.Stringer("variant", cfg.Motors.Variant),
		zap.Uint8s("active", cfg.Motors.Active),
		zap.Stringer("buttons", buttons),
	)

	g, gctx := errgroup.WithContext(ctx)
	boardCtx, stopBoard := context.WithCancel(gctx)
	g.Go(func() error {
		return board.Run(boardCtx, cmd.InOrStdin())
	})
	g.Go(func() error {
		defer stopBoard()
		code = rig.Execute(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("simulated board failed: %w", err)
	}

	logger.Info("rig stopped",
		zap.Stringer("state", rig.State()),
		zap.Uint16("error_code", uint16(code)),
		zap.Uint32("dropped", rig.Dropped()),
	)
	if options.summary {
		fmt.Fprint(cmd.ErrOrStderr(), sim.NewSummary(runID, rig, board, uint16(code)).Render())
	}

	switch code {
	case tinygoerrors.ErrorCodeNil, tinygoproprig.ErrorCodeRigCanceled, gate.ErrorCodeGateCanceled:
		return nil
	default:
		return fmt.Errorf("rig stopped: error code %d", code)
	}
}
