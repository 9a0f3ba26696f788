package terminal

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"authflow_automation/domain/entities"
	"authflow_automation/infrastructure/config"
)

type printer struct {
	w     io.Writer
	pass  *color.Color
	fail  *color.Color
	faint *color.Color
	title *color.Color
}

func newPrinter(w io.Writer, noColor bool) *printer {
	p := &printer{
		w:     w,
		pass:  color.New(color.FgGreen),
		fail:  color.New(color.FgRed),
		faint: color.New(color.Faint),
		title: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.pass, p.fail, p.faint, p.title} {
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}
	return p
}

// properties prints key/value pairs with the values aligned
func (p *printer) properties(heading string, props []config.Property) {
	width := 0
	for _, prop := range props {
		width = max(width, len(prop.Key))
	}

	p.title.Fprintln(p.w, heading)
	for _, prop := range props {
		fmt.Fprintf(p.w, "  %-*s  %s\n", width, prop.Key+":", prop.Value)
	}
}

func (p *printer) results(results []entities.ScenarioResult) {
	fmt.Fprintln(p.w)
	for _, res := range results {
		took := res.Duration.Round(time.Millisecond)
		if res.Status == entities.ScenarioStatusPassed {
			p.pass.Fprintf(p.w, "  ✓ %s", res.Name)
			p.faint.Fprintf(p.w, " (%s)\n", took)
			continue
		}

		p.fail.Fprintf(p.w, "  ✗ %s", res.Name)
		p.faint.Fprintf(p.w, " (%s)\n", took)
		if res.Error != "" {
			fmt.Fprintf(p.w, "      %s\n", res.Error)
		}
		if res.Screenshot != "" {
			p.faint.Fprintf(p.w, "      screenshot: %s\n", res.Screenshot)
		}
	}
}

func (p *printer) summary(passed, failed int, reportPath string) {
	fmt.Fprintln(p.w)
	p.pass.Fprintf(p.w, "%d passed", passed)
	fmt.Fprint(p.w, ", ")
	if failed > 0 {
		p.fail.Fprintf(p.w, "%d failed", failed)
	} else {
		fmt.Fprintf(p.w, "%d failed", failed)
	}
	fmt.Fprintln(p.w)
	if reportPath != "" {
		p.faint.Fprintf(p.w, "report: %s\n", reportPath)
	}
}
