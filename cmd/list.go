package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scienceol/keep-awake/internal/discovery"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List running keep-awake workers",
		Long: `Finds every running keep-awake worker and shows its owner, session and
remaining time. Workers owned by other users show <inaccessible>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger := consoleLogger(cfg)

			svc := discovery.New(discovery.Config{
				Source:  discovery.SystemSource{},
				Querier: newClient(cfg, logger),
				Name:    executableName(),
				SelfPID: os.Getpid(),
				Logger:  logger,
			})
			records, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			return discovery.Render(cmd.OutOrStdout(), records)
		},
	}
}

func executableName() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Base(os.Args[0])
	}
	return filepath.Base(exe)
}
