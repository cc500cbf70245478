package main

import (
	"io"
	"math/rand/v2"
	"slices"

	"github.com/spf13/cobra"

	"github.com/sarchlab/stacktherm/report"
	"github.com/sarchlab/stacktherm/trace"
)

type synthFlags struct {
	events  int
	cycles  uint64
	energy  float64
	ioRatio float64
	hot     float64
	seed    uint64
	out     string
}

func newSynthCmd() *cobra.Command {
	device := &deviceFlags{}
	flags := &synthFlags{}

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a random access trace.",
		Long: "synth writes a random access trace for the device. A share " +
			"of the accesses goes to vault 0 to create a hot spot.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := device.mapper()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			if flags.out != "" && flags.out != "-" {
				f, err := report.Create(flags.out)
				if err != nil {
					return err
				}
				defer f.Close()

				w = f
			}

			return synthesize(w, device, flags)
		},
	}

	device.register(cmd.Flags())
	cmd.Flags().IntVar(&flags.events, "events", 10000, "Number of accesses.")
	cmd.Flags().Uint64Var(&flags.cycles, "cycles", 1000000,
		"Length of the trace in cycles.")
	cmd.Flags().Float64Var(&flags.energy, "energy", 2e-9,
		"Mean energy of an access in joules.")
	cmd.Flags().Float64Var(&flags.ioRatio, "io-ratio", 0.1,
		"Share of accesses that are I/O transfers.")
	cmd.Flags().Float64Var(&flags.hot, "hot", 0.3,
		"Share of accesses sent to vault 0.")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 1, "Random seed.")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "",
		"Output file. Files ending in .zst are compressed.")

	return cmd
}

func synthesize(w io.Writer, device *deviceFlags, flags *synthFlags) error {
	rng := rand.New(rand.NewPCG(flags.seed, flags.seed))

	cycles := make([]uint64, flags.events)
	for i := range cycles {
		cycles[i] = rng.Uint64N(max(flags.cycles, 1))
	}

	slices.Sort(cycles)

	tw, err := trace.NewWriter(w)
	if err != nil {
		return err
	}

	for _, c := range cycles {
		e := trace.Event{
			Cycle:  c,
			Kind:   trace.KindCore,
			Energy: flags.energy * (0.5 + rng.Float64()),
			Vault:  rng.IntN(device.vaults),
			Bank:   rng.IntN(device.banks),
			Row:    rng.IntN(device.rows),
			Col:    rng.IntN(device.cols),
			Single: rng.Float64() < 0.8,
		}

		if rng.Float64() < flags.hot {
			e.Vault = 0
		}

		if rng.Float64() < flags.ioRatio {
			e.Kind = trace.KindIO
			e.Single = false
		}

		err = tw.Write(e)
		if err != nil {
			return err
		}
	}

	return tw.Flush()
}
