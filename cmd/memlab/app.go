package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli"

	"github.com/momentics/memlab/affinity"
	"github.com/momentics/memlab/control"
	"github.com/momentics/memlab/internal/scenario"
)

const version = "0.3.0"

func newApp(ctx context.Context, out, errOut io.Writer) *cli.App {
	d := control.DefaultConfig()

	app := cli.NewApp()
	app.Name = "memlab"
	app.Version = version
	app.Usage = "measure memory-management strategies: pooling, ownership, locality, fragmentation, leaks, stack vs heap"
	app.Writer = out
	app.ErrWriter = errOut
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "debug", Usage: "debug logging and a probe dump after the run"},
		cli.IntFlag{Name: "iterations, n", Value: d.Iterations, Usage: "timed loop length"},
		cli.IntFlag{Name: "pool-size", Value: d.PoolSize, Usage: "fixed pool capacity"},
		cli.Int64Flag{Name: "seed", Value: d.Seed, Usage: "PRNG seed for fragmentation block sizes"},
		cli.IntFlag{Name: "locality-n", Value: d.LocalityN, Usage: "elements summed by the locality scenario"},
		cli.IntFlag{Name: "heap-n", Value: d.HeapN, Usage: "ints written by the stackheap scenario"},
		cli.IntFlag{Name: "frag-blocks", Value: d.FragBlocks, Usage: "blocks allocated by the fragmentation scenario"},
		cli.StringFlag{Name: "metrics-out", Usage: "write Prometheus text metrics to `FILE`"},
		cli.IntFlag{Name: "pin-cpu", Value: -1, Usage: "bind the measuring thread to `CPU` (-1 disables)"},
	}
	app.Before = func(c *cli.Context) error {
		if c.GlobalBool("debug") {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		return nil
	}

	leakFlags := []cli.Flag{
		cli.StringFlag{Name: "mode", Value: d.LeakMode, Usage: "retained (Go heap) or raw (off-heap)"},
		cli.IntFlag{Name: "rounds", Value: d.LeakRounds, Usage: "leak rounds"},
		cli.IntFlag{Name: "per-round", Value: d.LeakPerRound, Usage: "4 KB blocks leaked per round"},
		cli.IntFlag{Name: "progress-every", Value: d.LeakProgressEvery, Usage: "log progress every N rounds"},
		cli.BoolFlag{Name: "no-cleanup", Usage: "keep leaked memory until exit"},
	}

	for _, s := range scenario.All() {
		name := s.Name
		cmd := cli.Command{
			Name:  name,
			Usage: s.Summary,
			Action: func(c *cli.Context) error {
				return run(ctx, c, out, errOut, []string{name})
			},
		}
		if name == "leak" {
			cmd.Flags = leakFlags
		}
		app.Commands = append(app.Commands, cmd)
	}
	app.Commands = append(app.Commands,
		cli.Command{
			Name:  "all",
			Usage: "run every scenario in order",
			Flags: leakFlags,
			Action: func(c *cli.Context) error {
				return run(ctx, c, out, errOut, scenario.Names())
			},
		},
		cli.Command{
			Name:  "list",
			Usage: "list scenarios",
			Action: func(c *cli.Context) error {
				for _, s := range scenario.All() {
					fmt.Fprintf(out, "%-14s %s\n", s.Name, s.Summary)
				}
				return nil
			},
		},
	)
	return app
}

func configFromFlags(c *cli.Context) (control.Config, error) {
	opts := []control.Option{
		control.WithIterations(c.GlobalInt("iterations")),
		control.WithPoolSize(c.GlobalInt("pool-size")),
		control.WithSeed(c.GlobalInt64("seed")),
		control.WithLocalityN(c.GlobalInt("locality-n")),
		control.WithHeapN(c.GlobalInt("heap-n")),
		control.WithFragBlocks(c.GlobalInt("frag-blocks")),
	}
	if c.String("mode") != "" {
		opts = append(opts,
			control.WithLeak(c.String("mode"), c.Int("rounds"), c.Int("per-round"), !c.Bool("no-cleanup")),
			control.WithLeakProgress(c.Int("progress-every")),
		)
	}
	return control.New(opts...)
}

func run(ctx context.Context, c *cli.Context, out, errOut io.Writer, names []string) error {
	cfg, err := configFromFlags(c)
	if err != nil {
		return errors.Wrap(err, "configuration")
	}
	metrics := control.NewMetricsRegistry()
	rep := scenario.NewReporter(out)

	if cpu := c.GlobalInt("pin-cpu"); cpu >= 0 {
		release, err := affinity.Pin(cpu)
		defer release()
		if err != nil {
			log.Warn().Err(err).Int("cpu", cpu).Msg("affinity pin warning")
		} else {
			log.Debug().Int("cpu", cpu).Msg("measuring thread pinned")
		}
	}

	for _, name := range names {
		s, err := scenario.Lookup(name)
		if err != nil {
			return err
		}
		log.Info().Str("scenario", name).Msg("running")
		res, err := scenario.Execute(ctx, s, cfg, log.Logger, metrics)
		if err != nil {
			return err
		}
		if err := rep.Print(res); err != nil {
			return errors.Wrap(err, "print report")
		}
	}

	if path := c.GlobalString("metrics-out"); path != "" {
		if err := writeMetrics(path, metrics); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("metrics written")
	}
	if c.GlobalBool("debug") {
		probes := control.NewDebugProbes()
		control.RegisterPlatformProbes(probes)
		probes.RegisterProbe("config", func() any { return cfg })
		probes.RegisterProbe("metrics", func() any { return metrics.GetSnapshot() })
		probes.Dump(errOut)
	}
	return nil
}

func writeMetrics(path string, metrics *control.MetricsRegistry) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create metrics file")
	}
	if err := metrics.WritePrometheus(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write metrics to %s", path)
	}
	return errors.Wrap(f.Close(), "close metrics file")
}
