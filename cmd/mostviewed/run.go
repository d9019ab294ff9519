package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mostviewed/internal/render"
)

// runReport runs the pipeline, prints the terminal report and writes the HTML page.
func (a *app) runReport(cmd *cobra.Command) error {
	// 1. Run the pipeline
	p, _ := a.newPipeline()

	result, runErr := p.Run(cmd.Context())
	a.progress.Clear()

	if result == nil {
		return runErr
	}

	// 2. Build the view
	view := render.NewView(result.Rows, render.OptionsFromConfig(a.cfg))
	view.Notices = append(view.Notices, result.Notices...)

	// 3. Terminal report
	if err := render.Terminal(a.stdout, view, isTerminal(a.stdout)); err != nil {
		return err
	}

	// 4. HTML report
	if a.cfg.Report.Output != "" {
		if err := writeHTML(a.cfg.Report.Output, view); err != nil {
			a.log.Error(fmt.Sprintf("❌ Failed to write HTML report: %v", err))
			return err
		}

		a.log.Info(fmt.Sprintf("📄 HTML report written to %s", a.cfg.Report.Output))
	}

	a.log.Info(fmt.Sprintf("📊 %s", result.Summary()))

	return runErr
}

func writeHTML(path string, view *render.View) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := render.HTML(f, view); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
