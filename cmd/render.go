package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"cosmos-isolation/core/envelope"
	"cosmos-isolation/core/reconcile"
	"cosmos-isolation/core/utils"
	"cosmos-isolation/feature/admin"
	"cosmos-isolation/feature/dump"
	"cosmos-isolation/feature/upload"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// renderer prints operator-facing tables. Colors are used only on terminals.
type renderer struct {
	w       io.Writer
	heading *color.Color
	ok      *color.Color
	warn    *color.Color
	bad     *color.Color
}

func newRenderer(w io.Writer) *renderer {
	r := &renderer{
		w:       w,
		heading: color.New(color.FgCyan, color.Bold),
		ok:      color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		bad:     color.New(color.FgRed),
	}
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if !tty {
		for _, c := range []*color.Color{r.heading, r.ok, r.warn, r.bad} {
			c.DisableColor()
		}
	}
	return r
}

func (r *renderer) title(s string) {
	r.heading.Fprintf(r.w, "\n%s\n", s)
}

func (r *renderer) table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

func partitionKeyLabel(pk *envelope.PartitionKeySchema) string {
	if !pk.HasPaths() {
		return "None"
	}
	return strings.Join(pk.Paths, ", ")
}

func (r *renderer) dumpResult(res *dump.Result, output string) {
	env := res.Envelope
	r.title(fmt.Sprintf("Dump of database %s", env.Database))
	rows := make([][]string, 0, len(env.Containers))
	for _, rec := range env.Containers {
		rows = append(rows, []string{rec.Name, utils.FormatCount(rec.TotalItems), partitionKeyLabel(rec.PartitionKey)})
	}
	r.table([]string{"Container", "Items", "Partition Key"}, rows)

	r.ok.Fprintf(r.w, "\nExported %s %s from %d %s to %s\n",
		utils.FormatCount(env.TotalItems), utils.Plural(env.TotalItems, "item"),
		env.TotalContainers, utils.Plural(env.TotalContainers, "container"), output)
	if len(res.Failed) > 0 {
		r.warn.Fprintf(r.w, "Skipped %d %s: %s\n", len(res.Failed), utils.Plural(len(res.Failed), "container"), strings.Join(res.Failed, ", "))
	}
}

func (r *renderer) plan(p *reconcile.Plan) {
	r.title("Upload plan")
	rows := make([][]string, 0, len(p.Containers))
	for _, cp := range p.Containers {
		rows = append(rows, []string{cp.Name, utils.FormatCount(cp.Items), partitionKeyLabel(cp.PartitionKey), cp.Status()})
	}
	r.table([]string{"Container", "Items", "Partition Key", "Status"}, rows)
}

func (r *renderer) uploadResult(res *upload.Result) {
	if res == nil {
		return
	}
	r.plan(res.Plan)

	if res.Report != nil {
		r.title("Results")
		rows := make([][]string, 0, len(res.Report.Results))
		for _, cr := range res.Report.Results {
			state := string(cr.State)
			if cr.Err != nil {
				state += ": " + cr.Err.Error()
			}
			rows = append(rows, []string{cr.Name, utils.FormatCount(cr.Uploaded), utils.FormatCount(cr.FailedItems()), state})
		}
		r.table([]string{"Container", "Uploaded", "Failed", "State"}, rows)
	}

	msg := res.Message()
	switch {
	case res.DryRun:
		r.ok.Fprintf(r.w, "\n%s\n", msg)
	case res.Report.Outcome() == reconcile.OutcomeSuccess:
		r.ok.Fprintf(r.w, "\n%s\n", msg)
	case res.Report.Outcome() == reconcile.OutcomeDegraded:
		r.warn.Fprintf(r.w, "\n%s\n", msg)
	default:
		r.bad.Fprintf(r.w, "\n%s\n", msg)
	}
}

func (r *renderer) connection(c *admin.Connection) {
	r.ok.Fprintf(r.w, "\nConnected to database %s\n", c.Database)
	if c.CreatedDatabase {
		r.ok.Fprintln(r.w, "Database was created")
	}
	if len(c.Containers) == 0 {
		fmt.Fprintln(r.w, "No containers found")
		return
	}
	fmt.Fprintf(r.w, "Found %d %s:\n", len(c.Containers), utils.Plural(len(c.Containers), "container"))
	for _, name := range c.Containers {
		fmt.Fprintf(r.w, "  - %s\n", name)
	}
}

func (r *renderer) status(report *admin.StatusReport, detailed bool) {
	r.title(fmt.Sprintf("Status of database %s", report.Database))
	if len(report.Containers) == 0 {
		fmt.Fprintln(r.w, "No containers found")
		return
	}

	headers := []string{"Container", "Items", "Partition Key", "Last Modified"}
	if detailed {
		headers = append(headers, "ETag")
	}
	rows := make([][]string, 0, len(report.Containers))
	for _, cs := range report.Containers {
		items := "error"
		if cs.Counted() {
			items = utils.FormatCount(cs.Items)
		}
		modified := "-"
		if !cs.LastModified.IsZero() {
			modified = cs.LastModified.Format(time.DateTime)
		}
		row := []string{cs.Name, items, partitionKeyLabel(cs.PartitionKey), modified}
		if detailed {
			row = append(row, cs.ETag)
		}
		rows = append(rows, row)
	}
	r.table(headers, rows)
	fmt.Fprintf(r.w, "\nTotal items: %s\n", utils.FormatCount(report.TotalItems))

	if recs := report.Recommendations(); len(recs) > 0 {
		r.title("Recommendations")
		for _, rec := range recs {
			r.warn.Fprintf(r.w, "  - %s\n", rec)
		}
	}

	r.title("Next steps")
	fmt.Fprintf(r.w, "  Dump all containers:   %s dump -d %s -c all -o backup.json\n", RootCmd.Name(), report.Database)
	fmt.Fprintf(r.w, "  Upload a dump:         %s upload -d %s -i backup.json\n", RootCmd.Name(), report.Database)
}

func (r *renderer) databases(names []string) {
	r.title("Databases")
	if len(names) == 0 {
		fmt.Fprintln(r.w, "No databases found")
		return
	}
	for _, name := range names {
		fmt.Fprintf(r.w, "  - %s\n", name)
	}
}
