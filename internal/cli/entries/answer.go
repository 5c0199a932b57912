package entries

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/constants"
	"github.com/julianstephens/dayprompt/internal/lifecycle"
	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/utils"
)

type AnswerCmd struct {
	Text        string `short:"t" help:"Response text."`
	Mood        string `short:"m" help:"Mood: great, good, okay, low or awful."`
	Score       *int   `short:"s" help:"Score from 1 to 10."`
	Day         string `help:"Day to answer (YYYY-MM-DD). Defaults to today."`
	Interactive bool   `short:"i" help:"Fill the response in a form."`
}

// answerInput is what the form edits. Score stays a string so the form can
// leave it blank.
type answerInput struct {
	Text  string
	Mood  string
	Score string
}

// promptResponse runs the interactive form. Tests replace it.
var promptResponse = func(title string, in *answerInput) error {
	moodOptions := []huh.Option[string]{huh.NewOption("(skip)", "")}
	for _, m := range models.Moods {
		moodOptions = append(moodOptions, huh.NewOption(string(m), string(m)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(title).
				Value(&in.Text).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("response cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Mood").
				Options(moodOptions...).
				Value(&in.Mood),
			huh.NewInput().
				Title(fmt.Sprintf("Score (%d-%d, optional)", constants.MinScore, constants.MaxScore)).
				Value(&in.Score).
				Validate(func(s string) error {
					_, err := parseScore(s)
					return err
				}),
		),
	)
	return form.Run()
}

func parseScore(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < constants.MinScore || n > constants.MaxScore {
		return nil, fmt.Errorf("score must be a number from %d to %d", constants.MinScore, constants.MaxScore)
	}
	return &n, nil
}

func (c *AnswerCmd) Run(ctx *cli.Context) error {
	rctx := ctx.Ctx()
	engine, err := ctx.Engine(rctx)
	if err != nil {
		return err
	}

	day := c.Day
	if day == "" {
		day = utils.DayKey(ctx.Now(), engine.Config().Location)
	} else if _, err := time.Parse(constants.DateFormat, day); err != nil {
		return fmt.Errorf("invalid day %q (expected YYYY-MM-DD)", day)
	}

	resp, err := c.response(ctx)
	if err != nil {
		return err
	}

	entry, err := engine.Submit(rctx, day, resp)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Response recorded for %s\n", entry.Day)

	summary, err := engine.Summary(rctx)
	if err == nil && summary.CurrentStreak > 0 {
		ctx.Printf("  Current streak: %d day(s)\n", summary.CurrentStreak)
	}
	return nil
}

func (c *AnswerCmd) response(ctx *cli.Context) (lifecycle.Response, error) {
	in := answerInput{Text: c.Text, Mood: c.Mood}
	if c.Score != nil {
		in.Score = strconv.Itoa(*c.Score)
	}

	if c.Interactive {
		settings, err := ctx.Settings(ctx.Ctx())
		if err != nil {
			return lifecycle.Response{}, err
		}
		if err := promptResponse(settings.PromptText, &in); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return lifecycle.Response{}, errors.New("answer cancelled")
			}
			return lifecycle.Response{}, err
		}
	} else if strings.TrimSpace(in.Text) == "" {
		return lifecycle.Response{}, errors.New("--text is required unless --interactive is set")
	}

	resp := lifecycle.Response{Text: in.Text}
	if in.Mood != "" {
		mood, err := models.ParseMood(strings.ToLower(strings.TrimSpace(in.Mood)))
		if err != nil {
			return lifecycle.Response{}, err
		}
		resp.Mood = &mood
	}
	score, err := parseScore(in.Score)
	if err != nil {
		return lifecycle.Response{}, err
	}
	resp.Score = score
	return resp, nil
}
