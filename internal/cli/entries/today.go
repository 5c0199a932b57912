package entries

import (
	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/constants"
	"github.com/julianstephens/dayprompt/internal/lifecycle"
	"github.com/julianstephens/dayprompt/internal/models"
)

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	rctx := ctx.Ctx()
	engine, err := ctx.Engine(rctx)
	if err != nil {
		return err
	}

	entry, ok, err := engine.Today(rctx)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("No prompt planned for today.")
		ctx.Printf("Run '%s test-prompt' to get one now.\n", constants.AppName)
		return nil
	}

	now := ctx.Now()
	loc := engine.Config().Location
	ctx.Println(cli.TitleStyle.Render(entry.Day))
	ctx.Printf("  Status: %s\n", cli.StatusLabel(entry.Status))
	ctx.Printf("  Window: %s (%s)\n", cli.FormatWindow(entry, loc), cli.DescribeWindow(entry, now))
	printResponse(ctx, entry)

	if entry.Status == models.EntryStatusPending && lifecycle.IsAnswerable(entry, now) {
		ctx.Println()
		ctx.Printf("Answer with: %s answer --text \"...\"\n", constants.AppName)
	}
	return nil
}

func printResponse(ctx *cli.Context, entry models.DayEntry) {
	if entry.Status != models.EntryStatusAnswered {
		return
	}
	if entry.Text != nil {
		ctx.Printf("  Answer: %s\n", *entry.Text)
	}
	if entry.Mood != nil {
		ctx.Printf("  Mood:   %s\n", *entry.Mood)
	}
	if entry.Score != nil {
		ctx.Printf("  Score:  %d/%d\n", *entry.Score, constants.MaxScore)
	}
}
