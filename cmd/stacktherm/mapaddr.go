package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newMapCmd() *cobra.Command {
	device := &deviceFlags{}

	cmd := &cobra.Command{
		Use:   "map VAULT BANK ROW COL",
		Short: "Print the power map cell of an address.",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := make([]int, 4)
			for i, a := range args {
				v, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("invalid address field %q", a)
				}

				addr[i] = v
			}

			m, err := device.mapper()
			if err != nil {
				return err
			}

			loc, err := m.MapPhysicalLocation(addr[0], addr[1], addr[2], addr[3])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dram %s\n", loc)

			logic, err := m.LogicLocation(addr[0], addr[1], addr[2], addr[3])
			if err == nil {
				fmt.Fprintf(out, "logic %s\n", logic)
			}

			return nil
		},
	}

	device.register(cmd.Flags())

	return cmd
}
