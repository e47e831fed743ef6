package tasks

import (
	"fmt"
	"sort"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/tracker"
)

type TaskCmd struct {
	Add     TaskAddCmd    `cmd:"" help:"Add a task to a day."`
	List    TaskListCmd   `cmd:"" help:"List tasks." default:"1"`
	Toggle  TaskToggleCmd `cmd:"" help:"Mark a task done or not done."`
	Edit    TaskEditCmd   `cmd:"" help:"Edit a task."`
	Move    TaskMoveCmd   `cmd:"" help:"Move a task to another day."`
	Delete  TaskDeleteCmd `cmd:"" help:"Delete a task."`
	Subtask SubtaskCmd    `cmd:"" help:"Manage task subtasks."`
}

func taskID(t *tracker.Tracker, date, input string) (string, error) {
	return cli.MatchID(input, cli.IDsOf(t.Tasks(date), func(task models.Task) string { return task.ID }))
}

type TaskAddCmd struct {
	Text     string `arg:"" help:"Task text."`
	Date     string `short:"d" help:"Day to log the task on (YYYY-MM-DD, today, tomorrow)." default:"today"`
	Category string `short:"c" help:"Work, Personal, Health, Urgent or Other." default:"Other"`
	Due      string `help:"Due date (YYYY-MM-DD)."`
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	task, err := t.AddTask(date, c.Text, models.Category(c.Category), c.Due)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Added task: %s (ID: %s)\n", task.Text, cli.ShortID(task.ID))
	return nil
}

type TaskListCmd struct {
	Date string `short:"d" help:"Day to list (YYYY-MM-DD, today, yesterday)." default:"today"`
	All  bool   `help:"List every day with tasks, newest first."`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}

	var dates []string
	if c.All {
		for date, log := range t.State().Logs {
			if len(log.Tasks) > 0 {
				dates = append(dates, date)
			}
		}
		sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	} else {
		date, err := ctx.ResolveDate(c.Date)
		if err != nil {
			return err
		}
		dates = []string{date}
	}

	shown := 0
	for _, date := range dates {
		tasks := t.Tasks(date)
		if len(tasks) == 0 {
			continue
		}
		shown++
		fmt.Fprintln(ctx.Out, cli.Title("Tasks for "+date))
		for _, task := range tasks {
			printTask(ctx, task)
		}
	}
	if shown == 0 {
		fmt.Fprintln(ctx.Out, "No tasks found")
	}
	return nil
}

func printTask(ctx *cli.Context, task models.Task) {
	line := fmt.Sprintf("  %s %s  %s  %s", cli.Check(task.Completed), task.Text, cli.Category(task.Category), cli.Muted("("+cli.ShortID(task.ID)+")"))
	if task.DueDate != "" {
		line += cli.Muted(" due " + task.DueDate)
	}
	fmt.Fprintln(ctx.Out, line)
	for _, sub := range task.Subtasks {
		fmt.Fprintf(ctx.Out, "      %s %s  %s\n", cli.Check(sub.Completed), sub.Text, cli.Muted("("+cli.ShortID(sub.ID)+")"))
	}
}

type TaskToggleCmd struct {
	ID   string `arg:"" help:"Task ID or unique prefix."`
	Date string `short:"d" help:"Day the task is logged on." default:"today"`
}

func (c *TaskToggleCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := taskID(t, date, c.ID)
	if err != nil {
		return err
	}
	task, err := t.ToggleTask(date, id)
	if err != nil {
		return err
	}
	state := "not done"
	if task.Completed {
		state = "done"
	}
	fmt.Fprintf(ctx.Out, "Marked %s as %s\n", task.Text, state)
	return nil
}

type TaskEditCmd struct {
	ID       string  `arg:"" help:"Task ID or unique prefix."`
	Date     string  `short:"d" help:"Day the task is logged on." default:"today"`
	Text     *string `help:"New text."`
	Category *string `short:"c" help:"New category."`
	Due      *string `help:"New due date; empty to clear."`
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	if c.Text == nil && c.Category == nil && c.Due == nil {
		return fmt.Errorf("nothing to change: pass --text, --category or --due")
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := taskID(t, date, c.ID)
	if err != nil {
		return err
	}
	edit := tracker.TaskEdit{Text: c.Text, DueDate: c.Due}
	if c.Category != nil {
		cat := models.Category(*c.Category)
		edit.Category = &cat
	}
	task, err := t.EditTask(date, id, edit)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Updated task: %s\n", task.Text)
	return nil
}

type TaskMoveCmd struct {
	ID   string `arg:"" help:"Task ID or unique prefix."`
	From string `help:"Day the task is logged on." default:"today"`
	To   string `help:"Target day." required:""`
}

func (c *TaskMoveCmd) Run(ctx *cli.Context) error {
	from, err := ctx.ResolveDate(c.From)
	if err != nil {
		return err
	}
	to, err := ctx.ResolveDate(c.To)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := taskID(t, from, c.ID)
	if err != nil {
		return err
	}
	task, err := t.MoveTask(id, from, to)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Moved %s from %s to %s\n", task.Text, from, to)
	return nil
}

type TaskDeleteCmd struct {
	ID   string `arg:"" help:"Task ID or unique prefix."`
	Date string `short:"d" help:"Day the task is logged on." default:"today"`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := taskID(t, date, c.ID)
	if err != nil {
		return err
	}
	var text string
	for _, task := range t.Tasks(date) {
		if task.ID == id {
			text = task.Text
		}
	}
	if text != "" {
		ok, err := ctx.Ask(fmt.Sprintf("Delete task %q?", text))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(ctx.Out, "Cancelled.")
			return nil
		}
	}
	if err := t.DeleteTask(date, id); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Deleted task: %s (ID: %s)\n", text, cli.ShortID(id))
	return nil
}
