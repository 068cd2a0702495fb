package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"mission-console/models"
	"mission-console/services"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the local profile and progression",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProgressStore()
		if err != nil {
			return err
		}
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}

		p := store.Profile()
		prog := services.Progress(store.Completed(), catalog, false)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s (%s)\n", p.Avatar, p.Username, p.ID)
		fmt.Fprintf(out, "  rank:     %s (level %d)\n", prog.RankTitle, prog.Level)
		fmt.Fprintf(out, "  xp:       %d (%d to next level)\n", prog.XP, prog.XPToNext)
		fmt.Fprintf(out, "  missions: %d/%d\n", prog.Completed, prog.Total)
		fmt.Fprintf(out, "  session:  %t\n", store.SessionActive())
		return nil
	},
}

var meshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Pull and print the shared leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProgressStore()
		if err != nil {
			return err
		}
		meshStore, err := newMeshStore(cmd.Context())
		if err != nil {
			return err
		}

		profile := store.Profile()
		syncer := services.NewMeshSynchronizer(meshStore, services.CommanderSourceFunc(func() (models.Profile, int64) {
			return profile, 0
		}), logger)
		m := syncer.Pull(cmd.Context())

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tCOMMANDER\tXP\t")
		for _, c := range m.Commanders {
			marker := ""
			if c.ID == profile.ID {
				marker = "← you"
			}
			fmt.Fprintf(w, "%d\t%s %s\t%d\t%s\n", c.Rank, c.Avatar, c.Username, c.XP, marker)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		for _, s := range m.Signals {
			fmt.Fprintf(cmd.OutOrStdout(), "📡 %s %s\n", s.Commander, s.Action)
		}
		return nil
	},
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase local progress, profile and session",
	Long: `Erase the device's completed missions, profile and session flag.
A new profile with a new id is created on the next start. The shared mesh
is not touched, so the old commander entry stays on the leaderboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return errors.New("refusing to erase local progress without --yes")
		}
		store, err := openProgressStore()
		if err != nil {
			return err
		}
		if err := store.Reset(); err != nil {
			return fmt.Errorf("failed to reset local progress: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "local progress erased")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm erasing local progress")
}
