package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracklayout/pkg/core/layout"
	"github.com/matzehuels/tracklayout/pkg/core/mode"
	errs "github.com/matzehuels/tracklayout/pkg/errors"
	tio "github.com/matzehuels/tracklayout/pkg/io"
	"github.com/matzehuels/tracklayout/pkg/observability"
)

// modeCommand creates the mode command for managing persisted item modes.
func (c *CLI) modeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode",
		Short: "Set, list or reset item display modes",
		Long: `Set, list or reset item display modes.

Every event you apply pins the item: later layout and render runs keep its
mode until 'mode reset' clears every pin. Modes are stored in the configured
cache backend.`,
	}

	cmd.AddCommand(c.modeSetCommand())
	cmd.AddCommand(c.modeListCommand())
	cmd.AddCommand(c.modeResetCommand())

	return cmd
}

// modeSetCommand creates the "mode set" subcommand.
func (c *CLI) modeSetCommand() *cobra.Command {
	var (
		weight int
		track  string
	)

	cmd := &cobra.Command{
		Use:               "set [item] [expand|spread|collapse|cycle]",
		Short:             "Apply an event to one item",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeModeSet,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			if err := errs.ValidateItemID(id); err != nil {
				return err
			}
			ev, err := mode.ParseEvent(args[1])
			if err != nil {
				return errs.Wrap(errs.ErrCodeInvalidInput, err, "event")
			}
			if track != "" {
				if weight, err = pointWeight(track, id); err != nil {
					return err
				}
			}
			st, err := c.applyEvent(ctx, id, weight, ev)
			if err != nil {
				return err
			}
			printSuccess("%s is now %s", id, modeBadge(st))
			return nil
		},
	}

	cmd.Flags().IntVar(&weight, "weight", 1, "number of samples behind the item")
	cmd.Flags().StringVar(&track, "track", "", "track file to read the item's weight from")

	return cmd
}

// modeListCommand creates the "mode list" subcommand.
func (c *CLI) modeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded item modes",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.loadModes(cmd.Context())
			if err != nil {
				return err
			}
			if len(snap) == 0 {
				printInfo("No modes recorded")
				return nil
			}
			ids := slices.Sorted(maps.Keys(snap))
			fmt.Fprintln(stdout, renderModeTable(ids, snap))
			return nil
		},
	}
}

// modeResetCommand creates the "mode reset" subcommand.
func (c *CLI) modeResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear every pinned mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := c.openCache(ctx)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer backend.Close()

			if err := c.modeStore(backend).Reset(ctx); err != nil {
				return err
			}
			observability.Mode().OnReset(ctx, "cli")
			printSuccess("Modes reset")
			return nil
		},
	}
}

// applyEvent applies ev to id in the persisted CLI session.
func (c *CLI) applyEvent(ctx context.Context, id string, weight int, ev mode.Event) (mode.State, error) {
	backend, err := c.openCache(ctx)
	if err != nil {
		return mode.State{}, fmt.Errorf("open cache: %w", err)
	}
	defer backend.Close()

	store := c.modeStore(backend)
	sess, err := store.Load(ctx)
	if err != nil {
		return mode.State{}, fmt.Errorf("load modes: %w", err)
	}
	machine := sess.Machine(c.machineOptions())

	from, _ := machine.State(id)
	st, err := machine.Apply(id, weight, ev)
	observability.Mode().OnTransition(ctx, id, ev.String(), from.Mode.String(), st.Mode.String(), err)
	if err != nil {
		return st, err
	}

	sess.Modes = machine.Snapshot()
	if err := store.Save(ctx, sess); err != nil {
		return st, fmt.Errorf("save modes: %w", err)
	}
	return st, nil
}

// loadModes returns the persisted CLI modes.
func (c *CLI) loadModes(ctx context.Context) (mode.Snapshot, error) {
	backend, err := c.openCache(ctx)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer backend.Close()

	sess, err := c.modeStore(backend).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load modes: %w", err)
	}
	return sess.Modes, nil
}

// pointWeight reads path and returns the weight of point id.
func pointWeight(path, id string) (int, error) {
	t, err := tio.ImportFile(path)
	if err != nil {
		return 0, err
	}
	for _, it := range t.Items {
		if it.ID != id {
			continue
		}
		if it.Kind != layout.KindPoint {
			return 0, errs.Item(errs.ErrCodeInvalidItem, id, "only points have modes")
		}
		return max(it.Weight, 1), nil
	}
	return 0, errs.Item(errs.ErrCodeNotFound, id, "not in %s", path)
}
