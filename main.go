package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrdg/drumbox/audio"
	"github.com/mrdg/drumbox/bounce"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

type options struct {
	sampleRate float64
	bufferSize int
	bpm        float64
	backend    string
	script     string
	watch      bool
	preset     string
	noColor    bool
	verbose    bool
}

func main() {
	log.SetFlags(log.Lshortfile)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:   "drumbox",
		Short: "A three lane, sixteen step drum machine",
		Long: `drumbox plays a kick, snare and hat pattern through the default
audio device and reads commands from a prompt.

Examples:
  drumbox --preset gabber --bpm 180
  drumbox --script beat.dub --watch
  drumbox render --bars 4 --out beat.wav --script beat.dub`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), &opts)
		},
	}
	flags := root.PersistentFlags()
	flags.Float64Var(&opts.sampleRate, "sample-rate", 48000, "sample rate in Hz")
	flags.IntVar(&opts.bufferSize, "buffer-size", 512, "frames per audio buffer")
	flags.Float64Var(&opts.bpm, "bpm", 120, "tempo in beats per minute")
	flags.StringVar(&opts.script, "script", "", "file of commands to run at startup")
	flags.StringVar(&opts.preset, "preset", "", "kick preset to load at startup")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colors in the grid")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log more")
	root.Flags().StringVar(&opts.backend, "backend", "portaudio", "audio backend: portaudio or oto")
	root.Flags().BoolVar(&opts.watch, "watch", false, "run the script again when it changes")

	root.AddCommand(newRenderCmd(&opts), newPreviewCmd(&opts))
	return root
}

func newRenderCmd(opts *options) *cobra.Command {
	var (
		bars int
		out  string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the pattern to a WAV file without an audio device",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, env, err := setup(opts)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := bounce.Bounce(f, e, bounce.Options{Bars: bars, Bpm: env.bpm}); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			log.Printf("wrote %d bars to %s", bars, out)
			return f.Close()
		},
	}
	cmd.Flags().IntVar(&bars, "bars", 4, "number of bars")
	cmd.Flags().StringVarP(&out, "out", "o", "drumbox.wav", "output file")
	return cmd
}

func newPreviewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <lane>",
		Short: "Render one hit of a lane and print its measurements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lane, ok := audio.LookupLane(args[0])
			if !ok {
				return fmt.Errorf("unknown lane: %s", args[0])
			}
			e, _, err := setup(opts)
			if err != nil {
				return err
			}
			samples, err := bounce.Preview(e.Params(), lane, opts.sampleRate, bounce.DefaultPreviewLength)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), bounce.Analyze(samples, opts.sampleRate))
			return nil
		},
	}
}

// setup prepares an engine and applies the startup flags and script.
func setup(opts *options) (*audio.Engine, *env, error) {
	e := audio.NewEngine()
	if err := e.Prepare(opts.sampleRate, opts.bufferSize); err != nil {
		return nil, nil, err
	}
	color := !opts.noColor && term.IsTerminal(int(os.Stdout.Fd()))
	env := newEnv(e, os.Stdout, color)
	if err := env.setBpm(opts.bpm); err != nil {
		return nil, nil, err
	}
	if opts.preset != "" {
		if err := audio.LoadPreset(opts.preset, e.Params(), e.SampleRate()); err != nil {
			return nil, nil, err
		}
	}
	if opts.script != "" {
		if err := env.runScript(opts.script); err != nil {
			return nil, nil, err
		}
	}
	if opts.verbose {
		log.Printf("engine prepared at %v Hz, %d frames per buffer", opts.sampleRate, opts.bufferSize)
	}
	return e, env, nil
}

func newSink(backend string, e *audio.Engine, bufferSize int) (audio.Sink, error) {
	switch backend {
	case "portaudio":
		return audio.NewPortaudioSink(e, bufferSize, 2)
	case "oto":
		return audio.NewOtoSink(e, bufferSize, 2)
	default:
		return nil, fmt.Errorf("unknown backend: %s", backend)
	}
}

func runPlay(ctx context.Context, opts *options) error {
	e, env, err := setup(opts)
	if err != nil {
		return err
	}
	sink, err := newSink(opts.backend, e, opts.bufferSize)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Printf("error while closing audio: %v", err)
		}
	}()
	if err := sink.Start(); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return repl(ctx, env)
	})
	if opts.watch && opts.script != "" {
		g.Go(func() error {
			return watchScript(ctx, opts.script, env)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}
