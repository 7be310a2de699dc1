package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"plan-cli/internal/config"
	"plan-cli/internal/format"
	"plan-cli/internal/inline"
	"plan-cli/internal/model"
	"plan-cli/internal/store"
	"plan-cli/internal/tui"
)

func newListCmd(app *App) *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plan items in outline order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, st *store.Store, cfg config.Config) error {
				items, err := st.Load(ctx)
				if err != nil {
					return err
				}
				if strings.TrimSpace(tag) != "" {
					items = filterByTag(items, resolveTag(cfg, tag))
				}
				return writeItems(cmd, app, items)
			})
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Only items carrying this tag")
	return cmd
}

// resolveTag maps a tag name or id from the command line onto the id stored
// in items. Unknown tags are matched as given.
func resolveTag(cfg config.Config, ref string) string {
	if t, ok := inline.NewRegistry(cfg.Tags).FindTag(ref); ok {
		return t.ID
	}
	return ref
}

// filterByTag keeps items carrying tag. Ids compare case-insensitively.
func filterByTag(items []model.PlanItem, tag string) []model.PlanItem {
	tag = model.NormalizeTag(tag)
	var out []model.PlanItem
	for _, it := range items {
		for _, t := range it.Tags {
			if model.NormalizeTag(t) == tag {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

func newAddCmd(app *App) *cobra.Command {
	var level int
	var description string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Append an item to the outline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return writeErr(cmd, errors.New("missing title"))
			}
			if level < 0 {
				return writeErr(cmd, errors.New("--level must be >= 0"))
			}
			return withStore(cmd, app, func(ctx context.Context, st *store.Store, cfg config.Config) error {
				if level > cfg.MaxLevel {
					level = cfg.MaxLevel
				}
				it, err := st.Append(ctx, model.PlanItem{
					Title:       title,
					Level:       level,
					Description: description,
				})
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": it})
			})
		},
	}
	cmd.Flags().IntVar(&level, "level", 0, "Indentation level")
	cmd.Flags().StringVar(&description, "description", "", "Description text")
	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <item-id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return withStore(cmd, app, func(ctx context.Context, st *store.Store, _ config.Config) error {
				if err := st.Delete(ctx, id); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
			})
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	var width int
	var raw bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render the outline as markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, st *store.Store, _ config.Config) error {
				items, err := st.Load(ctx)
				if err != nil {
					return err
				}
				md := format.Markdown(items)
				if !raw {
					md = tui.RenderMarkdown(md, width) + "\n"
				}
				_, err = cmd.OutOrStdout().Write([]byte(md))
				return err
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown source instead of rendering it")
	return cmd
}
