package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"todust/database"
	"todust/models"
	"todust/repository"
	"todust/views"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var project string

func main() {
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "todust",
		Short:         "Very basic todo tool that supports multiline todos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&project, "project", "P", defaultProject(), "project to work on")

	rootCmd.AddCommand(
		addCmd(),
		listCmd(),
		doneCmd(),
		reopenCmd(),
		editCmd(),
		moveCmd(),
		dueCmd(),
		projectsCmd(),
		printCmd(),
		renameCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultProject() string {
	if p := os.Getenv("TODUST_PROJECT"); p != "" {
		return p
	}
	return repository.DefaultProject
}

func openRepository(ctx context.Context) (*repository.Repository, func(), error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL not set")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.Connect(connectCtx, databaseURL)
	if err != nil {
		return nil, nil, err
	}

	return repository.New(db), db.Close, nil
}

// activeEntry resolves the 1-based index shown by `todust list` to the
// entry it refers to. Indices are positional and only valid against the
// current active list.
func activeEntry(ctx context.Context, repo *repository.Repository, id int) (*models.Entry, error) {
	if id < 1 {
		return nil, errors.New("entry id can not be smaller than 1")
	}

	active, _, err := repo.ListEntries(ctx, project, false)
	if err != nil {
		return nil, err
	}
	if id > len(active) {
		return nil, fmt.Errorf("no active entry found with id %d", id)
	}

	return &active[id-1], nil
}

func parseEntryID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("entry id must be a number: %q", arg)
	}
	return id, nil
}

func parseUUID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid entry UUID: %q", arg)
	}
	return id, nil
}

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [text]",
		Short: "Add a new todo entry. If no text is given $EDITOR will be launched.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			text := ""
			if len(args) > 0 {
				text = args[0]
			} else {
				edited, err := stringFromEditor("")
				if err != nil {
					return err
				}
				text = edited
			}

			repo, closeRepo, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			entry, err := repo.AddEntry(ctx, project, text)
			if err != nil {
				return err
			}

			fmt.Printf("added entry %s to project %s\n", entry.UUID, entry.Project)
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			repo, closeRepo, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			active, _, err := repo.ListEntries(ctx, project, false)
			if err != nil {
				return err
			}

			if len(active) == 0 {
				fmt.Println("no active todos")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tAge\tDue\tDescription")
			for i, entry := range active {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					i+1, views.Age(entry), views.DueOrDash(entry.Due), views.Headline(entry.Text))
			}
			return w.Flush()
		},
	}
}

func doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [id]",
		Short: "Mark entry as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}

			repo, closeRepo, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			entry, err := activeEntry(ctx, repo, id)
			if err != nil {
				return err
			}

			if _, err := repo.SetDone(ctx, entry.UUID, true); err != nil {
				return err
			}

			fmt.Printf("finished: %s\n", views.Headline(entry.Text))
			return nil
		},
	}
}

func reopenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen [uuid]",
		Short: "Reopen a done entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}

			repo, closeRepo, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			entry, err := repo.SetDone(ctx, id, false)
			if err != nil {
				return err
			}

			fmt.Printf("reopened: %s\n", views.Headline(entry.Text))
			return nil
		},
	}
}

func editCmd() *cobra.Command {
	var updateTime bool

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Open text of entry in editor to edit it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}

			repo, closeRepo, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			entry, err := activeEntry(ctx, repo, id)
			if err != nil {
				return err
			}

			text, err := stringFromEditor(entry.Text)
			if err != nil {
				return err
			}

			if _, err := repo.EditText(ctx, entry.UUID, text, updateTime); err != nil {
				return err
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&updateTime, "update-time", "u", false,
		"refresh last_change of the entry to the current time")
	return cmd
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move [id] [project]",
		Short: "Move entry from current project to target project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}

			repo, closeRepo, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			entry, err := activeEntry(ctx, repo, id)
			if err != nil {
				return err
			}

			if _, err := repo.MoveProject(ctx, entry.UUID, args[1]); err != nil {
				return err
			}

			fmt.Printf("moved %s to project %s\n", views.Headline(entry.Text), args[1])
			return nil
		},
	}
}

func dueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due [id] [date]",
		Short: "Set due date for entry. Date has to be in format 2019-12-24.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}

			due, err := time.Parse("2006-01-02", args[1])
			if err != nil {
				return fmt.Errorf("due date must be in 2006-01-02 form: %w", err)
			}

			repo, closeRepo, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			entry, err := activeEntry(ctx, repo, id)
			if err != nil {
				return err
			}

			if _, err := repo.SetDue(ctx, entry.UUID, &due); err != nil {
				return err
			}

			return nil
		},
	}
}

func projectsCmd() *cobra.Command {
	var printInactive bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Print all projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			repo, closeRepo, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			counts, err := repo.ProjectCounts(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "Project\tActive\tDone\tTotal")

			var total models.ProjectCount
			for _, count := range counts {
				if !printInactive && count.ActiveCount == 0 {
					continue
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n",
					count.Project, count.ActiveCount, count.DoneCount, count.TotalCount)

				total.ActiveCount += count.ActiveCount
				total.DoneCount += count.DoneCount
				total.TotalCount += count.TotalCount
			}
			fmt.Fprintf(w, "\t%d\t%d\t%d\n", total.ActiveCount, total.DoneCount, total.TotalCount)

			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&printInactive, "print-inactive", "i", false,
		"also print projects without active todos")
	return cmd
}

func printCmd() *cobra.Command {
	var noDone bool

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print formatted todos of the current project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			repo, closeRepo, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			active, done, err := repo.ListEntries(ctx, project, !noDone)
			if err != nil {
				return err
			}

			fmt.Print(views.RenderDocument(active, done))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&noDone, "no-done", "n", false, "dont print done todos")
	return cmd
}

func renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [from] [to]",
		Short: "Rename a project by moving all of its entries",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			repo, closeRepo, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			moved, err := repo.RenameProject(ctx, args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("moved %d entries from %s to %s\n", moved, args[0], args[1])
			return nil
		},
	}
}
