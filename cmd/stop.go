package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/scienceol/keep-awake/internal/control"
	"github.com/scienceol/keep-awake/internal/ui"
)

func newStopCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop pid [pid...]",
		Short: "Stop running keep-awake workers",
		Long: `Asks each worker to release the machine and exit. Every pid is reported
on its own line; a failure for one pid does not affect the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pids, err := parsePIDs(args)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			client := newClient(cfg, consoleLogger(cfg))

			for _, pid := range pids {
				err := client.Stop(cmd.Context(), pid)
				switch {
				case err == nil:
					ui.Success("Stopped %d", pid)
				case errors.Is(err, control.ErrInaccessible):
					ui.Error("Not allowed to stop %d", pid)
				default:
					ui.Error("Could not stop %d: no keep-awake worker with that pid", pid)
				}
			}
			return nil
		},
	}
}

func parsePIDs(args []string) ([]int, error) {
	pids := make([]int, 0, len(args))
	for _, a := range args {
		pid, err := strconv.Atoi(a)
		if err != nil || pid <= 0 {
			return nil, fmt.Errorf("invalid pid %q", a)
		}
		pids = append(pids, pid)
	}
	return pids, nil
}
