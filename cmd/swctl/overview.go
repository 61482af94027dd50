package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/MrEthical07/swclient"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// overview is the data behind the dashboard landing page.
type overview struct {
	user          *swclient.User
	stats         swclient.Stats
	tasks         []swclient.Task
	notifications []swclient.Notification
}

func (a *app) overviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Fetch profile, dashboard, tasks and notifications in parallel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			sess, ok := c.ActiveSession(cmd.Context())
			if !ok {
				return errors.New("not signed in")
			}

			ov, err := fetchOverview(cmd, c, sess.User.Role)
			if err != nil {
				return err
			}
			printOverview(cmd, ov)
			return nil
		},
	}
}

// fetchOverview issues the four reads concurrently. The first failure
// cancels the rest; a 401 has already cleared the session by then.
func fetchOverview(cmd *cobra.Command, c *swclient.Client, role swclient.Role) (*overview, error) {
	var ov overview
	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		u, err := c.Auth.Me(ctx)
		ov.user = u
		return err
	})
	g.Go(func() error {
		s, err := c.Dashboard.ForRole(ctx, role)
		ov.stats = s
		return err
	})
	g.Go(func() error {
		t, err := c.Tasks.List(ctx)
		ov.tasks = t
		return err
	})
	g.Go(func() error {
		n, err := c.Notifications.List(ctx)
		ov.notifications = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ov, nil
}

func printOverview(cmd *cobra.Command, ov *overview) {
	out := cmd.OutOrStdout()
	name := ov.user.DisplayName
	if name == "" {
		name = ov.user.Email
	}
	fmt.Fprintf(out, "%s (%s), landing page %s\n\n", name, ov.user.Role, swclient.DashboardRoute(ov.user.Role))

	keys := make([]string, 0, len(ov.stats))
	for k := range ov.stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(out, "Dashboard:")
	for _, k := range keys {
		fmt.Fprintf(out, "  %-22s %v\n", k, ov.stats[k])
	}

	open := 0
	for _, t := range ov.tasks {
		if t.Status != swclient.TaskCompleted {
			open++
		}
	}
	unread := 0
	for _, n := range ov.notifications {
		if !n.Read {
			unread++
		}
	}
	fmt.Fprintf(out, "\nTasks: %d open of %d\n", open, len(ov.tasks))
	fmt.Fprintf(out, "Notifications: %d unread of %d\n", unread, len(ov.notifications))
}
