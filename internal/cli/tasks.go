package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pdxmph/tasks-tui/internal/flow"
	"github.com/pdxmph/tasks-tui/internal/form"
	"github.com/pdxmph/tasks-tui/internal/logging"
	"github.com/pdxmph/tasks-tui/internal/tasks"
	"github.com/pdxmph/tasks-tui/internal/view"
)

const dueLayout = "2006-01-02"

func (a *app) listCmd() *cobra.Command {
	var (
		sortKey string
		order   string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := view.ParseKey(sortKey)
			if err != nil {
				return err
			}
			ord, err := view.ParseOrder(order)
			if err != nil {
				return err
			}

			logger, closer, err := a.logger(logging.ModeConsole)
			if err != nil {
				return err
			}
			defer closer.Close()

			s, release, err := a.store(logger)
			if err != nil {
				return err
			}
			defer release()

			if err := s.Load(cmd.Context()); err != nil {
				return err
			}
			list := view.Project(s.Tasks(), view.Sort{Key: key, Order: ord})

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No tasks")
				return nil
			}
			fmt.Fprintln(out, renderTasks(list))
			return nil
		},
	}

	cmd.Flags().StringVarP(&sortKey, "sort", "s", string(view.KeyDueDate), "sort key (title, status, due_date)")
	cmd.Flags().StringVarP(&order, "order", "o", string(view.Asc), "sort order (asc, desc)")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	return cmd
}

func renderTasks(list []tasks.Task) string {
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Status.Label(),
			tasks.DisplayDue(t.DueDate),
		})
	}
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style { return cell }).
		Headers("ID", "TITLE", "STATUS", "DUE").
		Rows(rows...).
		Render()
}

// taskFlags holds the field flags shared by add and edit
type taskFlags struct {
	title       string
	description string
	status      string
	due         string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&f.status, "status", "s", string(tasks.StatusPending), "status (pending, in-progress, completed)")
	cmd.Flags().StringVar(&f.due, "due", "", "due date, YYYY-MM-DD")
}

// actions turns the flags the user set into form actions
func (f *taskFlags) actions(cmd *cobra.Command) ([]form.Action, error) {
	var actions []form.Action
	changed := cmd.Flags().Changed

	if changed("title") {
		actions = append(actions, form.SetTitle(f.title))
	}
	if changed("description") {
		actions = append(actions, form.SetDescription(f.description))
	}
	if changed("status") {
		s, err := tasks.ParseStatus(f.status)
		if err != nil {
			return nil, err
		}
		actions = append(actions, form.SetStatus(s))
	}
	if changed("due") {
		t, err := time.ParseInLocation(dueLayout, f.due, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: %q, expected YYYY-MM-DD", tasks.ErrInvalidDue, f.due)
		}
		actions = append(actions, form.SetDueDate(t))
	}
	return actions, nil
}

func (a *app) addCmd() *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := flags.actions(cmd)
			if err != nil {
				return err
			}
			f := form.New(form.Defaults(time.Now())).Dispatch(actions...)
			if err := f.Validate(); err != nil {
				return err
			}

			logger, closer, err := a.logger(logging.ModeConsole)
			if err != nil {
				return err
			}
			defer closer.Close()

			s, release, err := a.store(logger)
			if err != nil {
				return err
			}
			defer release()

			created, err := s.Create(cmd.Context(), f.Draft())
			if err != nil {
				return err
			}
			if created.ID != 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Created task %d\n", created.ID)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Created task")
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.MarkFlagRequired("title")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			actions, err := flags.actions(cmd)
			if err != nil {
				return err
			}

			logger, closer, err := a.logger(logging.ModeConsole)
			if err != nil {
				return err
			}
			defer closer.Close()

			s, release, err := a.store(logger)
			if err != nil {
				return err
			}
			defer release()

			current, err := s.FetchOne(cmd.Context(), id)
			if err != nil {
				return err
			}

			f := form.New(current.Draft()).Dispatch(actions...)
			if !f.Dirty() {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to change")
				return nil
			}
			if err := f.Validate(); err != nil {
				return err
			}
			if err := s.Update(cmd.Context(), id, f.Draft().Task(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d\n", id)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			logger, closer, err := a.logger(logging.ModeConsole)
			if err != nil {
				return err
			}
			defer closer.Close()

			s, release, err := a.store(logger)
			if err != nil {
				return err
			}
			defer release()

			task, err := s.FetchOne(cmd.Context(), id)
			if err != nil {
				return err
			}

			var d flow.Delete
			if err := d.Request(id); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprintf(out, "Delete %q? This action cannot be undone. [y/N] ", task.Title)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if ans := strings.ToLower(strings.TrimSpace(answer)); ans != "y" && ans != "yes" {
					d.Cancel()
					fmt.Fprintln(out, "Cancelled")
					return nil
				}
			}

			notice, err := d.Run(cmd.Context(), s)
			if err != nil {
				return err
			}
			if notice.IsError() {
				return fmt.Errorf("%s: %w", notice.Body, notice.Err)
			}
			fmt.Fprintln(out, notice.Body)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}
