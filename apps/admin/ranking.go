package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/report"
)

func (cli *commandLine) ranking(period core.Period) error {
	period.Clean()
	if err := cli.validate.Struct(period); err != nil {
		return err
	}

	rep, err := cli.reportSvc.Ranking(context.Background(), period)
	if err != nil {
		return errors.Wrap(err, "ranking students")
	}
	t := report.NewRankingTable("", rep, core.NowFunc())

	color.New(color.FgCyan, color.Bold).Fprintln(cli.out, "\n"+t.Title)
	color.New(color.FgCyan).Fprintln(cli.out, t.Subtitle)

	if len(t.Rows) == 0 {
		color.New(color.FgYellow).Fprintln(cli.out, "No grades recorded for this class, term and year.")
		return nil
	}

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader(report.RankingColumns)
	for _, row := range t.Rows {
		table.Append(row.Cells())
	}
	table.Render()

	color.New(color.FgYellow).Fprintln(cli.out, "\nSummary Statistics")
	for _, kv := range t.Summary() {
		fmt.Fprintf(cli.out, "  %s: %s\n", kv[0], kv[1])
	}
	return nil
}
