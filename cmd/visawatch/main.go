/*
visawatch logs into a visa scheduling portal, queries the open
appointment days and alerts you when a slot earlier than the one you
currently hold becomes available.

Have a look at the README.md for more information.
*/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jakopako/visawatch/internal/browser"
	"github.com/jakopako/visawatch/internal/config"
	"github.com/jakopako/visawatch/internal/log"
	"github.com/jakopako/visawatch/internal/notify"
	"github.com/jakopako/visawatch/internal/portal"
	"github.com/jakopako/visawatch/internal/types"
	"github.com/jakopako/visawatch/internal/workflow"
	"github.com/olekukonko/tablewriter"
)

var version = "dev"

const name = "visawatch"

type VersionFlag string

func (v VersionFlag) Decode(_ *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                       { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

type cli struct {
	Version VersionFlag `short:"v" help:"Print the version and exit."`
	Debug   bool        `short:"d" help:"Set log level to 'debug'."`

	Check CheckCmd `cmd:"" help:"Run one check against the portal."`
}

type CheckCmd struct {
	Config  string `short:"c" default:"./config.yaml" help:"The location of the configuration file."`
	Summary bool   `short:"s" help:"Print a step summary table at the end."`
}

func (cc *CheckCmd) Run() error {
	cfg, err := config.New(cc.Config)
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}

	agent := cfg.UserAgent
	if agent == "" {
		agent = fmt.Sprintf("%s %s (github.com/jakopako/visawatch)", name, version)
	}

	// the run deadline context is the parent of the browser allocator,
	// so hitting the ceiling tears the browser process down too
	runCtx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout())
	defer cancel()

	session := browser.NewSession(runCtx, &browser.SessionConfig{
		UserAgent:      cfg.UserAgent,
		Headless:       cfg.Headless,
		PageLoadWaitMS: cfg.PageLoadWaitMS,
	})
	w := workflow.New(cfg, session, portal.NewClient(cfg.BaseURL), notify.NewNotifier(cfg.PushToken, agent))

	status := workflow.Supervise(runCtx, w, cfg.RunTimeout())
	if cc.Summary {
		printSummary(status)
	}

	switch status.Outcome {
	case types.OutcomeFailed:
		os.Exit(1)
	case types.OutcomeTimedOut:
		os.Exit(2)
	}
	return nil
}

func printSummary(status types.RunStatus) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Step", "Elapsed", "Status"})
	for _, s := range status.Steps {
		stepStatus := "ok"
		if s.Err != nil {
			stepStatus = s.Err.Error()
		}
		table.Append([]string{s.Name, s.Elapsed.Round(time.Millisecond).String(), stepStatus})
	}
	table.SetFooter([]string{"outcome", status.FinishedAt.Sub(status.StartedAt).Round(time.Millisecond).String(), string(status.Outcome)})
	table.SetBorder(false)
	table.Render()
}

func main() {
	cli := cli{}
	ctx := kong.Parse(&cli,
		kong.Name(name),
		kong.Description("visawatch alerts you when the visa scheduling portal offers an appointment earlier than the one you currently hold."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	log.InitializeDefaultLogger(cli.Debug)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
