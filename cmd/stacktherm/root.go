package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const envPrefix = "STACKTHERM_"

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use: "stacktherm",
		Short: "stacktherm computes the temperature and the supply voltage " +
			"of a 3D-stacked memory.",
		Long: `stacktherm computes the temperature and the supply voltage ` +
			`of a 3D-stacked memory from the energy of its accesses. ` +
			`Every flag can also be set with an environment variable named ` +
			`STACKTHERM_ followed by the flag name in upper case, ` +
			`with dashes replaced by underscores.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			err := loadEnvFile(envFile)
			if err != nil {
				return err
			}

			return applyEnv(cmd.Flags())
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"File with STACKTHERM_* settings. A missing file is ignored.")

	rootCmd.AddCommand(
		newRunCmd(),
		newArrangeCmd(),
		newMapCmd(),
		newSynthCmd(),
		newTrendCmd(),
	)

	return rootCmd
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

func envName(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// applyEnv sets the flags that are not given on the command line from the
// environment.
func applyEnv(flags *pflag.FlagSet) error {
	var err error

	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}

		v, ok := os.LookupEnv(envName(f.Name))
		if !ok {
			return
		}

		setErr := flags.Set(f.Name, v)
		if setErr != nil {
			err = fmt.Errorf("%s: %w", envName(f.Name), setErr)
		}
	})

	return err
}
