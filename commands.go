package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/api"
	"github.com/CrowderSoup/taskboard/board"
	"github.com/CrowderSoup/taskboard/database"
	"github.com/CrowderSoup/taskboard/notice"
)

// stderrNotices prints notices the way a terminal user expects to see them.
func stderrNotices(w io.Writer) notice.Notifier {
	return notice.Func(func(n notice.Notice) {
		fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Message)
	})
}

// withApp builds the app for a single CLI command and closes it afterwards,
// which also writes any pending status change.
func withApp(opts *rootOptions, run func(ctx context.Context, a *app) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		log := opts.log
		if opts.cfg.LogLevel != "debug" {
			// notices already reach the terminal
			log = log.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
		}
		a, err := newApp(opts.cfg, log, stderrNotices(cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		defer a.close()
		return run(cmd.Context(), a)
	}
}

func loginCmd(opts *rootOptions) *cobra.Command {
	var creds api.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the task tracker",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		user, err := a.auth.Login(ctx, creds)
		if err != nil {
			return err
		}
		if user != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Name, user.Role)
		}
		return nil
	})
	return cmd
}

func logoutCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		return a.auth.Logout(ctx)
	})
	return cmd
}

func whoamiCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		user, err := a.identity.Refresh(ctx)
		if err != nil {
			// offline: show what the last session saw
			a.log.Debug("profile refresh failed", zap.Error(err))
			user, err = a.sessions.User()
			if err != nil {
				return err
			}
		}
		if user == nil {
			return errNotLoggedIn
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n", user.Name, user.Email, user.Role)
		return nil
	})
	return cmd
}

func projectsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the projects you can open",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		projects, err := a.workspace.Projects(ctx)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tDESCRIPTION")
		for _, p := range projects {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Title, p.Description)
		}
		return tw.Flush()
	})
	return cmd
}

type boardFlags struct {
	project   int64
	page      int
	status    []string
	priority  []string
	sortBy    string
	sortOrder string
	dateRange string
	assigned  bool
}

func (f *boardFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.project, "project", 0, "Project id (defaults to the last selected project)")
	cmd.Flags().IntVar(&f.page, "page", 1, "Page to show")
	cmd.Flags().StringSliceVar(&f.status, "status", nil, "Only show these statuses")
	cmd.Flags().StringSliceVar(&f.priority, "priority", nil, "Only show these priorities")
	cmd.Flags().StringVar(&f.sortBy, "sort-by", "", "Sort field")
	cmd.Flags().StringVar(&f.sortOrder, "sort-order", "", "asc or desc")
	cmd.Flags().StringVar(&f.dateRange, "date-range", "", "Date range filter")
	cmd.Flags().BoolVar(&f.assigned, "assigned", false, "Tasks you assigned instead of tasks you created")
}

// filters overlays the flags that were set on the saved filters.
func (f *boardFlags) filters(cmd *cobra.Command, saved board.Filters) board.Filters {
	out := saved
	if cmd.Flags().Changed("status") {
		out.Status = f.status
	}
	if cmd.Flags().Changed("priority") {
		out.Priority = f.priority
	}
	if f.sortBy != "" {
		out.SortBy = f.sortBy
	}
	if f.sortOrder != "" {
		out.SortOrder = f.sortOrder
	}
	if f.dateRange != "" {
		out.DateRange = f.dateRange
	}
	if cmd.Flags().Changed("assigned") {
		out.AssignedByMe = f.assigned
	}
	return out
}

// openBoard resolves the project from the flag, the saved preferences or the
// user's first project, loads the requested page and saves the selection.
func openBoard(ctx context.Context, cmd *cobra.Command, a *app, f *boardFlags) error {
	user, err := a.requireUser(ctx)
	if err != nil {
		return err
	}

	prefs, err := a.data.GetUserData(ctx, user.Email)
	if err != nil {
		a.log.Warn("failed to read preferences", zap.Error(err))
		prefs = &database.Preferences{Filters: board.DefaultFilters()}
	}

	selected := f.project
	if selected == 0 {
		selected = prefs.SelectedProject
	}
	projectID, err := a.workspace.DefaultProject(ctx, selected)
	if err != nil {
		return err
	}

	filters := f.filters(cmd, prefs.Filters)
	if err := a.board.Select(ctx, projectID, filters); err != nil {
		return err
	}
	if f.page > 1 {
		if _, err := a.board.GoToPage(ctx, f.page); err != nil {
			return err
		}
	}

	prefs.SelectedProject = projectID
	prefs.Filters = filters
	if err := a.data.SaveUserData(ctx, user.Email, prefs); err != nil {
		a.log.Warn("failed to save preferences", zap.Error(err))
	}
	return nil
}

func boardCmd(opts *rootOptions) *cobra.Command {
	var f boardFlags
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the board of a project",
		Args:  cobra.NoArgs,
	}
	f.register(cmd)
	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		if err := openBoard(ctx, cmd, a, &f); err != nil {
			return err
		}
		printBoard(cmd.OutOrStdout(), a.board.Snapshot())
		return nil
	})
	return cmd
}

func printBoard(w io.Writer, snap board.Snapshot) {
	fmt.Fprintf(w, "Project %d, page %d of %d\n", snap.ProjectID, snap.Pagination.CurrentPage, snap.Pagination.LastPage)
	for _, col := range snap.Columns {
		fmt.Fprintf(w, "\n== %s (%d)\n", col.Title, len(col.Cards))
		for _, c := range col.Cards {
			line := fmt.Sprintf("  #%d %s [%s]", c.ID, c.Title, board.PriorityLabel(c.Priority))
			if len(c.AssignedUsers) > 0 {
				names := make([]string, 0, len(c.AssignedUsers))
				for _, u := range c.AssignedUsers {
					names = append(names, u.Name)
				}
				line += " @" + strings.Join(names, ", @")
			}
			fmt.Fprintln(w, line)
		}
	}
}

// parseColumn accepts a column id or a status name.
func parseColumn(s string) (board.ColumnID, error) {
	if n, err := strconv.Atoi(s); err == nil {
		col := board.ColumnID(n)
		if !col.Valid() {
			return 0, fmt.Errorf("%w: %s", board.ErrUnknownColumn, s)
		}
		return col, nil
	}
	col, ok := board.ColumnByStatus(s)
	if !ok {
		return 0, fmt.Errorf("%w: %s", board.ErrUnknownColumn, s)
	}
	return col, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func moveCmd(opts *rootOptions) *cobra.Command {
	var f boardFlags
	var position int
	cmd := &cobra.Command{
		Use:   "move <task> <from> <to>",
		Short: "Move a task to another column",
		Long:  "Move a task between columns. Columns are given as 1-3 or as todo, in-progress, completed.",
		Args:  cobra.ExactArgs(3),
	}
	f.register(cmd)
	cmd.Flags().IntVar(&position, "position", -1, "Position in the target column (default: end)")

	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		args := cmd.Flags().Args()
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		from, err := parseColumn(args[1])
		if err != nil {
			return err
		}
		to, err := parseColumn(args[2])
		if err != nil {
			return err
		}

		if err := openBoard(ctx, cmd, a, &f); err != nil {
			return err
		}
		if position < 0 {
			position = len(a.board.Snapshot().Column(to))
		}
		if err := a.board.MoveCard(taskID, from, to, position); err != nil {
			return err
		}
		// write the status change now instead of waiting for the debounce
		a.board.Flush()
		return nil
	})
	return cmd
}

func taskCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Work with a single task",
	}
	cmd.AddCommand(taskShowCmd(opts))
	cmd.AddCommand(taskDeleteCmd(opts))
	cmd.AddCommand(taskCommentCmd(opts))
	cmd.AddCommand(taskAssignCmd(opts, true))
	cmd.AddCommand(taskAssignCmd(opts, false))
	return cmd
}

func taskShowCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <task>",
		Short: "Show a task and its comments",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		taskID, err := parseID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		task, err := a.tasks.Task(ctx, taskID)
		if err != nil {
			return err
		}
		comments, err := a.tasks.Comments(ctx, taskID)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "#%d %s\n", task.ID, task.Title)
		fmt.Fprintf(w, "Status:   %s\n", task.Status)
		fmt.Fprintf(w, "Priority: %s\n", board.PriorityLabel(task.Priority))
		if task.EstimatedTime != nil {
			fmt.Fprintf(w, "Estimate: %gh\n", *task.EstimatedTime)
		}
		if task.Description != "" {
			fmt.Fprintf(w, "\n%s\n", task.Description)
		}
		if len(comments) > 0 {
			fmt.Fprintln(w, "\nComments:")
			for _, c := range comments {
				edited := ""
				if c.Edited() {
					edited = " (edited)"
				}
				author := "unknown"
				if c.User != nil {
					author = c.User.Name
				}
				fmt.Fprintf(w, "  [%d] %s: %s%s\n", c.ID, author, c.Comment, edited)
			}
		}
		return nil
	})
	return cmd
}

func taskDeleteCmd(opts *rootOptions) *cobra.Command {
	var f boardFlags
	cmd := &cobra.Command{
		Use:   "delete <task>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
	}
	f.register(cmd)
	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		taskID, err := parseID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}
		user, err := a.requireUser(ctx)
		if err != nil {
			return err
		}
		if !user.IsManager() {
			return fmt.Errorf("only managers can delete tasks")
		}
		if err := openBoard(ctx, cmd, a, &f); err != nil {
			return err
		}
		return a.board.DeleteCard(ctx, taskID)
	})
	return cmd
}

func taskCommentCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment <task> <text>",
		Short: "Comment on a task",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		taskID, err := parseID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		_, err = a.tasks.AddComment(ctx, taskID, cmd.Flags().Arg(1))
		return err
	})
	return cmd
}

func taskAssignCmd(opts *rootOptions, assign bool) *cobra.Command {
	use, short := "assign <task> <user>", "Assign a user to a task"
	if !assign {
		use, short = "unassign <task> <user>", "Remove a user from a task"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		taskID, err := parseID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}
		userID, err := parseID(cmd.Flags().Arg(1))
		if err != nil {
			return err
		}
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		if assign {
			return a.tasks.Assign(ctx, taskID, userID)
		}
		return a.tasks.Unassign(ctx, taskID, userID)
	})
	return cmd
}
