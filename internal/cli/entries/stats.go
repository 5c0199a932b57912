package entries

import (
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/utils"
)

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	rctx := ctx.Ctx()
	engine, err := ctx.Engine(rctx)
	if err != nil {
		return err
	}
	s, err := engine.Summary(rctx)
	if err != nil {
		return err
	}

	ctx.Println(cli.TitleStyle.Render("Statistics"))
	ctx.Printf("  Days tracked:    %s\n", humanize.Comma(int64(s.Total)))
	ctx.Printf("  Answered:        %s\n", humanize.Comma(int64(s.Answered)))
	ctx.Printf("  Missed:          %s\n", humanize.Comma(int64(s.Missed)))
	ctx.Printf("  Pending:         %s\n", humanize.Comma(int64(s.Pending)))
	ctx.Printf("  Completion rate: %.0f%%\n", s.CompletionRate*100)
	ctx.Printf("  Current streak:  %d day(s)\n", s.CurrentStreak)
	ctx.Printf("  Longest streak:  %d day(s)\n", s.LongestStreak)

	if s.ScoredCount > 0 {
		ctx.Printf("  Average score:   %.1f (%d scored)\n", s.AverageScore, s.ScoredCount)
	}
	if len(s.MoodCounts) > 0 {
		ctx.Println()
		ctx.Println(cli.TitleStyle.Render("Moods"))
		for _, m := range models.Moods {
			if n := s.MoodCounts[m]; n > 0 {
				ctx.Printf("  %-6s %d\n", m, n)
			}
		}
	}

	state, err := ctx.Store.LoadState(rctx)
	if err == nil && state.FirstPlanDate != "" {
		if first, err := utils.StartOfDay(state.FirstPlanDate, engine.Config().Location); err == nil {
			ctx.Println()
			ctx.Printf("Tracking since %s (%s)\n", state.FirstPlanDate, cli.Relative(first, ctx.Now()))
		}
	}
	return nil
}
