package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/health"
)

// healthTable renders a health report.
type healthTable health.Report

func (t healthTable) Headers() []string {
	return []string{"CHECK", "STATUS", "MESSAGE", "LATENCY"}
}

func (t healthTable) Rows() [][]string {
	rows := make([][]string, 0, len(t.Checks)+1)
	for _, c := range t.Checks {
		rows = append(rows, []string{c.Name, c.Status.String(), c.Message, c.Latency.Round(time.Millisecond).String()})
	}
	return append(rows, []string{"overall", t.Status.String(), "", ""})
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check connectivity and the saved session",
		Long: `Check that the portal API is reachable, that the token file is sane and
that the saved session is still accepted by the server.

Exits non-zero when any check is unhealthy.`,
		RunE: run(func(c *CommandContext, _ []string) error {
			manager := health.NewManager().WithTimeout(c.Config.RequestTimeout)
			manager.AddChecker(health.NewPortalChecker(c.App.Client))
			if !c.Ephemeral() {
				manager.AddChecker(health.NewTokenFileChecker(c.Config.TokenFile, time.Now))
			}
			manager.AddChecker(health.NewSessionChecker(c.App.Session))

			report := manager.Run(c.Ctx)
			if err := c.Print(healthTable(report)); err != nil {
				return err
			}
			if report.Status == health.StatusUnhealthy {
				return errors.New(errors.ErrCodeNetwork, fmt.Sprintf("%d check(s) failed", failed(report)))
			}
			return nil
		}),
	}
}

func failed(r health.Report) int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == health.StatusUnhealthy {
			n++
		}
	}
	return n
}
