package entries

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gosuri/uitable"

	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/utils"
)

type HistoryCmd struct {
	Days int `help:"Number of days to show, ending today." default:"14"`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1, got %d", c.Days)
	}

	rctx := ctx.Ctx()
	engine, err := ctx.Engine(rctx)
	if err != nil {
		return err
	}
	entries, err := engine.Entries(rctx)
	if err != nil {
		return err
	}

	loc := engine.Config().Location
	today := utils.DayKey(ctx.Now(), loc)
	from, err := utils.AddDays(today, -(c.Days - 1))
	if err != nil {
		return err
	}

	var shown []models.DayEntry
	for _, e := range entries {
		if e.Day >= from && e.Day <= today {
			shown = append(shown, e)
		}
	}
	if len(shown) == 0 {
		ctx.Printf("No entries in the last %d day(s).\n", c.Days)
		return nil
	}

	tbl := uitable.New()
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	tbl.AddRow("DAY", "STATUS", "WINDOW", "MOOD", "SCORE", "ANSWER")
	// Newest first.
	for i := len(shown) - 1; i >= 0; i-- {
		tbl.AddRow(row(shown[i], loc)...)
	}
	ctx.Println(tbl)
	return nil
}

func row(e models.DayEntry, loc *time.Location) []interface{} {
	mood, score, answer := "-", "-", ""
	if e.Mood != nil {
		mood = string(*e.Mood)
	}
	if e.Score != nil {
		score = strconv.Itoa(*e.Score)
	}
	if e.Text != nil {
		answer = cli.Truncate(*e.Text, 60)
	}
	return []interface{}{e.Day, cli.StatusLabel(e.Status), cli.FormatWindow(e, loc), mood, score, answer}
}
