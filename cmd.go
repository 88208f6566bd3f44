package main

import (
	"github.com/spf13/cobra"

	"scenario-visualizer/internal/log"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "scenario-visualizer",
		Short: "Animated traffic scenario board",
		Long: `scenario-visualizer fetches a traffic scenario, lays its vehicles out on a
board in the browser and plays their animations on demand, stopping them when
the scenario time runs out.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "Optional YAML or JSON config file.")
	root.AddCommand(newServeCommand(), newFixturesCommand())
	return root
}

func newServeCommand() *cobra.Command {
	opts := NewServeOptions()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scenario board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadOptions(cmd, opts); err != nil {
				return err
			}
			opts.Complete()
			if err := opts.Validate(); err != nil {
				return err
			}
			log.Init(opts.Log)
			return runServe(cmd.Context(), opts)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func newFixturesCommand() *cobra.Command {
	opts := NewFixtureOptions()
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Serve scenarios from a YAML or JSON file at /scenarios/{id}",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadOptions(cmd, opts); err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			log.Init(opts.Log)
			return runFixtures(cmd.Context(), opts)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}
