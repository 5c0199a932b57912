package plans

import (
	"github.com/gosuri/uitable"

	"github.com/julianstephens/dayprompt/internal/cli"
)

type AlertsCmd struct{}

func (c *AlertsCmd) Run(ctx *cli.Context) error {
	rctx := ctx.Ctx()
	engine, err := ctx.Engine(rctx)
	if err != nil {
		return err
	}
	alerts, err := engine.Pending(rctx)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		ctx.Println("No pending alerts.")
		return nil
	}

	loc := engine.Config().Location
	now := ctx.Now()
	tbl := uitable.New()
	tbl.AddRow("ID", "FIRES AT", "WHEN")
	for _, a := range alerts {
		tbl.AddRow(a.ID, a.FireAt.In(loc).Format("2006-01-02 15:04"), cli.Relative(a.FireAt, now))
	}
	ctx.Println(tbl)
	return nil
}
