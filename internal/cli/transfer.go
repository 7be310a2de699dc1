package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plan-cli/internal/clipboard"
	"plan-cli/internal/config"
	"plan-cli/internal/model"
	"plan-cli/internal/outline"
	"plan-cli/internal/projection"
	"plan-cli/internal/store"
)

func newExportCmd(app *App) *cobra.Command {
	var rich bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the outline in clipboard form",
		Long:  "Print the outline as an indented bullet list, or with --rich as the lossless JSON form the editor pastes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, st *store.Store, cfg config.Config) error {
				items, err := st.Load(ctx)
				if err != nil {
					return err
				}
				codec := clipboard.NewCodec(cfg.IndentWidth)
				lines := projection.Seed(items)
				out := codec.EncodePlain(lines)
				if rich {
					if out, err = codec.EncodeRich(lines); err != nil {
						return err
					}
				}
				_, err = io.WriteString(cmd.OutOrStdout(), strings.TrimRight(out, "\n")+"\n")
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&rich, "rich", false, "Lossless JSON form")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <glob>...",
		Short: "Append outlines read from files",
		Long: strings.TrimSpace(`
Append every file matching the given patterns. "**" matches across
directories. Files holding the --rich export form keep marks, tokens and
descriptions; anything else is read as an indented bullet list.`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, st *store.Store, cfg config.Config) error {
				files, err := expandGlobs(args)
				if err != nil {
					return err
				}
				if len(files) == 0 {
					return fmt.Errorf("no files match %s", strings.Join(args, " "))
				}
				codec := clipboard.NewCodec(cfg.IndentWidth)
				var added []model.PlanItem
				for _, f := range files {
					items, err := importFile(ctx, st, codec, cfg, f)
					if err != nil {
						return fmt.Errorf("import %s: %w", f, err)
					}
					added = append(added, items...)
				}
				return writeItems(cmd, app, added)
			})
		},
	}
	return cmd
}

func expandGlobs(patterns []string) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}

func importFile(ctx context.Context, st *store.Store, codec *clipboard.Codec, cfg config.Config, path string) ([]model.PlanItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	p := clipboard.Payload{Plain: text}
	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		p.Rich = text
	}
	lines, derr := codec.Decode(p)
	if derr != nil {
		zap.L().Debug("rich import fell back to plain text", zap.String("file", path), zap.Error(derr))
	}

	// Foreign ids are never trusted; the store assigns its own.
	for i := range lines {
		lines[i].DomainRef = ""
	}
	lines = pairDescriptions(lines)
	lines = outline.Normalize(lines, cfg.MaxLevel, nil)

	var out []model.PlanItem
	for _, it := range projection.Derive(lines, nil, time.Now().UTC()) {
		it.ID = ""
		saved, err := st.Append(ctx, it)
		if err != nil {
			return out, err
		}
		out = append(out, saved)
	}
	return out, nil
}

// pairDescriptions gives each title a fresh id and re-keys the description
// that follows it, so Normalize keeps the pair together.
func pairDescriptions(lines []outline.Line) []outline.Line {
	out := make([]outline.Line, len(lines))
	var title string
	for i, l := range lines {
		switch {
		case l.IsTitle():
			l.ID = outline.NewID()
			title = l.ID
		case title != "":
			l.ID = outline.DescriptionID(title)
			title = ""
		default:
			l.ID = ""
		}
		out[i] = l
	}
	return out
}
