package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/stacktherm/geometry"
)

func newArrangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "arrange N",
		Short: "Print the side of the near-square tile that holds N units.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid unit count %q", args[0])
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), geometry.SquareArrangement(n))

			return err
		},
	}
}
