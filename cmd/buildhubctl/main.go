// buildhubctl drives the contractor estimate workflow from the command
// line: inspect the inbox, acknowledge requests, fill and submit
// estimates from a saved form file, and watch estimate statuses.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"

	"buildhub/client"
	"buildhub/estimate"
)

func main() {
	app := &cli.App{
		Name:  "buildhubctl",
		Usage: "contractor estimate workflow client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: "http://localhost:8080", Usage: "marketplace API base URL", EnvVars: []string{"BUILDHUB_API"}},
			&cli.StringFlag{Name: "token", Usage: "bearer token from /login", EnvVars: []string{"BUILDHUB_TOKEN"}},
			&cli.IntFlag{Name: "contractor-id", Usage: "contractor account id", EnvVars: []string{"BUILDHUB_CONTRACTOR_ID"}},
		},
		Commands: []*cli.Command{
			{
				Name:   "inbox",
				Usage:  "list inbox items",
				Action: runInbox,
			},
			{
				Name:  "ack",
				Usage: "acknowledge an inbox item",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "due", Usage: "due date YYYY-MM-DD"},
				},
				Action: runAck,
			},
			{
				Name:  "submit",
				Usage: "submit an estimate for a send from a form file",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "send", Required: true},
					&cli.StringFlag{Name: "file", Required: true, Usage: "JSON file of field name -> value"},
				},
				Action: runSubmit,
			},
			{
				Name:   "estimates",
				Usage:  "list submitted estimates",
				Action: runEstimates,
			},
			{
				Name:   "watch",
				Usage:  "poll estimates until interrupted",
				Action: runWatch,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func apiFrom(c *cli.Context) (*client.Client, int) {
	api := client.New(c.String("api"))
	api.SetToken(c.String("token"))
	return api, c.Int("contractor-id")
}

func runInbox(c *cli.Context) error {
	api, contractorID := apiFrom(c)
	items, err := api.Inbox(c.Context, contractorID)
	if err != nil {
		return err
	}
	for _, item := range items {
		state := "unacknowledged"
		if item.Acknowledged() {
			state = "acknowledged"
		}
		fmt.Printf("#%d  %-24s plot=%-10s %s\n", item.ID, item.HomeownerName, item.PlotSize, state)
	}
	return nil
}

func runAck(c *cli.Context) error {
	api, contractorID := apiFrom(c)
	ackAt, err := api.AcknowledgeInboxItem(c.Context, c.Int("id"), contractorID, c.String("due"))
	if err != nil {
		return err
	}
	fmt.Println("acknowledged at", ackAt.Time().Format(time.RFC3339))
	return nil
}

func runSubmit(c *cli.Context) error {
	api, contractorID := apiFrom(c)
	sendID := c.Int("send")

	raw, err := os.ReadFile(c.String("file"))
	if err != nil {
		return err
	}
	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("form file: %w", err)
	}

	items, err := api.Inbox(c.Context, contractorID)
	if err != nil {
		return err
	}
	var form *estimate.Form
	for _, item := range items {
		if item.ID == sendID {
			form, err = client.OpenEstimateForm(item)
			if err != nil {
				return err
			}
			break
		}
	}
	if form == nil {
		return fmt.Errorf("send %d not in inbox", sendID)
	}

	for name, value := range fields {
		form.Set(name, value)
	}
	totals := estimate.Recalc(form)
	fmt.Println("grand total:", totals.GrandDisplay())

	drafts := client.NewDraftClient(api)
	submitter := client.NewSubmitter(api, drafts)
	if err := submitter.Submit(c.Context, sendID, contractorID, form); err != nil {
		return err
	}
	fmt.Println("estimate submitted")
	return nil
}

func runEstimates(c *cli.Context) error {
	api, contractorID := apiFrom(c)
	estimates, err := api.MyEstimates(c.Context, contractorID)
	if err != nil {
		return err
	}
	for _, e := range estimates {
		total := ""
		if e.TotalCost != nil {
			total = e.TotalCost.String()
		}
		fmt.Printf("#%d  send=%d  total=%-12s %s\n", e.ID, e.SendID, total, e.Status)
	}
	return nil
}

func runWatch(c *cli.Context) error {
	api, contractorID := apiFrom(c)
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
	defer cancel()

	d := client.NewDashboard(api, contractorID)
	d.Refresh(ctx)
	stop := d.Start(ctx)
	defer stop()

	fmt.Println("watching estimates, Ctrl-C to stop")
	prev := -1
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
			estimates := d.Estimates()
			if len(estimates) != prev {
				prev = len(estimates)
				fmt.Printf("%d estimates, processing=%v\n", prev, d.Processing())
			}
		}
	}
}
