package challenges

import (
	"fmt"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/stats"
	"github.com/julianstephens/zentask/internal/tracker"
)

type ChallengeCmd struct {
	Start  ChallengeStartCmd  `cmd:"" help:"Start a challenge with daily rules."`
	List   ChallengeListCmd   `cmd:"" help:"List challenges." default:"1"`
	Check  ChallengeCheckCmd  `cmd:"" help:"Tick or untick a rule for a day."`
	Delete ChallengeDeleteCmd `cmd:"" help:"Delete a challenge."`
}

func challengeID(t *tracker.Tracker, input string) (string, error) {
	return cli.MatchID(input, cli.IDsOf(t.Challenges(), func(c models.Challenge) string { return c.ID }))
}

func findChallenge(t *tracker.Tracker, id string) (models.Challenge, bool) {
	for _, c := range t.Challenges() {
		if c.ID == id {
			return c, true
		}
	}
	return models.Challenge{}, false
}

type ChallengeStartCmd struct {
	Title       string   `arg:"" help:"Challenge title."`
	Rules       []string `short:"r" name:"rule" help:"Daily rule; repeat for several." required:""`
	Days        int      `short:"n" help:"Duration in days." default:"30"`
	Description string   `help:"Description. Defaults to a summary of the title and duration."`
}

func (c *ChallengeStartCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	ch, err := t.StartChallenge(c.Title, c.Description, c.Days, c.Rules)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Started challenge: %s (ID: %s)\n", ch.Title, cli.ShortID(ch.ID))
	fmt.Fprintf(ctx.Out, "  %s\n", cli.Muted(ch.Description))
	return nil
}

type ChallengeListCmd struct {
	Date string `short:"d" help:"Day whose rule checks are shown." default:"today"`
}

func (c *ChallengeListCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}

	challenges := t.Challenges()
	if len(challenges) == 0 {
		fmt.Fprintln(ctx.Out, "No challenges found")
		return nil
	}
	for _, ch := range challenges {
		fmt.Fprintf(ctx.Out, "%s  %s  %d/%d days  %s\n", cli.Title(ch.Title), ch.Status,
			stats.ChallengeDaysReached(ch), ch.DurationDays, cli.Muted("("+cli.ShortID(ch.ID)+")"))
		checked := map[string]bool{}
		if comp, ok := ch.CompletionFor(date); ok {
			for _, id := range comp.Checked {
				checked[id] = true
			}
		}
		for _, r := range ch.Subtasks {
			fmt.Fprintf(ctx.Out, "  %s %s  %s\n", cli.Check(checked[r.ID]), r.Text, cli.Muted("("+cli.ShortID(r.ID)+")"))
		}
	}
	return nil
}

type ChallengeCheckCmd struct {
	ID     string `arg:"" help:"Challenge ID or unique prefix."`
	RuleID string `arg:"" help:"Rule ID or unique prefix."`
	Date   string `short:"d" help:"Day to record." default:"today"`
}

func (c *ChallengeCheckCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := challengeID(t, c.ID)
	if err != nil {
		return err
	}
	existing, _ := findChallenge(t, id)
	ruleID, err := cli.MatchID(c.RuleID, cli.IDsOf(existing.Subtasks, func(s models.Subtask) string { return s.ID }))
	if err != nil {
		return err
	}

	ch, err := t.ToggleChallengeRule(id, ruleID, date)
	if err != nil {
		return err
	}
	comp, _ := ch.CompletionFor(date)
	fmt.Fprintf(ctx.Out, "%s on %s: %s\n", ch.Title, date, cli.Percent(comp.Progress))
	if ch.Status == models.ChallengeCompleted && existing.Status != models.ChallengeCompleted {
		fmt.Fprintln(ctx.Out, cli.Title("Challenge completed!"))
		_ = ctx.Notifier.Notify(fmt.Sprintf("Challenge completed: %s", ch.Title))
	}
	return nil
}

type ChallengeDeleteCmd struct {
	ID string `arg:"" help:"Challenge ID or unique prefix."`
}

func (c *ChallengeDeleteCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := challengeID(t, c.ID)
	if err != nil {
		return err
	}
	if ch, ok := findChallenge(t, id); ok {
		ok, err := ctx.Ask(fmt.Sprintf("Delete challenge %q?", ch.Title))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(ctx.Out, "Cancelled.")
			return nil
		}
	}
	if err := t.DeleteChallenge(id); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Deleted challenge (ID: %s)\n", cli.ShortID(id))
	return nil
}
