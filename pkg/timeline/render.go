package timeline

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"
	"time"
)

// DefaultTitle is the chart title when none is given.
const DefaultTitle = "Project Gantt Chart"

var statusColors = map[Status]string{
	StatusComplete:   "#28a745",
	StatusInProgress: "#ffc107",
	StatusNotStarted: "#6c757d",
}

// RenderOptions controls the generated page.
type RenderOptions struct {
	Title string
	// Now stamps the page; zero means time.Now.
	Now time.Time
}

type barData struct {
	Display   string  `json:"display"`
	Name      string  `json:"name"`
	Start     string  `json:"start"`
	Finish    string  `json:"finish"`
	Millis    int64   `json:"millis"`
	Status    Status  `json:"status"`
	Color     string  `json:"color"`
	Critical  bool    `json:"critical"`
	Milestone bool    `json:"milestone"`
	Hover     string  `json:"hover"`
	Days      float64 `json:"days"`
}

type resourceData struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	Cost float64 `json:"cost"`
}

type chartData struct {
	Title     string         `json:"title"`
	Height    int            `json:"height"`
	Statuses  []Status       `json:"statuses"`
	Colors    []string       `json:"colors"`
	Bars      []barData      `json:"bars"`
	Resources []resourceData `json:"resources"`
}

const isoLayout = "2006-01-02T15:04:05"

// Render writes a standalone HTML page for tl. All workbook text reaches
// the page through JSON so it cannot break out of the script block.
func Render(w io.Writer, tl *Timeline, opts RenderOptions) error {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	data := chartData{
		Title:     title,
		Height:    max(600, len(tl.Bars)*20),
		Statuses:  []Status{StatusComplete, StatusInProgress, StatusNotStarted},
		Bars:      make([]barData, 0, len(tl.Bars)),
		Resources: make([]resourceData, 0, len(tl.Resources)),
	}
	for _, s := range data.Statuses {
		data.Colors = append(data.Colors, statusColors[s])
	}
	for _, b := range tl.Bars {
		data.Bars = append(data.Bars, barData{
			Display:   b.DisplayName,
			Name:      b.Name,
			Start:     b.Start.Format(isoLayout),
			Finish:    b.Finish.Format(isoLayout),
			Millis:    b.Finish.Sub(b.Start).Milliseconds(),
			Status:    b.Status,
			Color:     statusColors[b.Status],
			Critical:  b.Critical,
			Milestone: b.Milestone,
			Hover:     hoverText(b),
			Days:      b.DurationDays,
		})
	}
	for _, r := range tl.Resources {
		data.Resources = append(data.Resources, resourceData(r))
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	page := strings.NewReplacer(
		"{{TITLE}}", html.EscapeString(title),
		"{{GENERATED_TIME}}", now.Format("2006-01-02 15:04:05"),
		"{{TASK_COUNT}}", fmt.Sprint(len(tl.Bars)),
		"{{CHART_DATA}}", string(payload),
	).Replace(pageTemplate)

	_, err = io.WriteString(w, page)
	return err
}

// hoverText is the plotly hover label. Values are escaped because plotly
// renders a subset of HTML in labels.
func hoverText(b Bar) string {
	var s strings.Builder
	fmt.Fprintf(&s, "<b>%s</b><br>", html.EscapeString(b.Name))
	fmt.Fprintf(&s, "WBS: %s<br>", orNA(b.WBS))
	fmt.Fprintf(&s, "Duration: %s", orNA(b.Duration))
	if b.DurationDays > 0 {
		fmt.Fprintf(&s, " (%.1f days)", b.DurationDays)
	}
	s.WriteString("<br>")
	fmt.Fprintf(&s, "Progress: %.0f%%<br>", b.Progress)
	fmt.Fprintf(&s, "Resources: %s<br>", orNA(b.Resources))
	fmt.Fprintf(&s, "Predecessors: %s<br>", orNA(b.Predecessors))
	if b.Source != "" {
		fmt.Fprintf(&s, "Source: %s<br>", html.EscapeString(b.Source))
	}
	return s.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return html.EscapeString(s)
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{TITLE}}</title>
    <script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
            margin: 0;
            padding: 24px;
            background: #ffffff;
            color: #1e293b;
        }
        .meta { color: #64748b; font-size: 12px; margin-bottom: 12px; }
        #resources { margin-top: 32px; }
    </style>
</head>
<body>
    <div class="meta">Generated: {{GENERATED_TIME}} &middot; {{TASK_COUNT}} tasks</div>
    <div id="gantt"></div>
    <div id="resources"></div>
    <script>
        window.CHART_DATA = {{CHART_DATA}};

        (function () {
            const data = window.CHART_DATA;
            const traces = [];

            data.statuses.forEach(function (status, i) {
                const bars = data.bars.filter(function (b) { return b.status === status; });
                if (bars.length === 0) { return; }
                traces.push({
                    type: 'bar',
                    orientation: 'h',
                    name: status,
                    base: bars.map(function (b) { return b.start; }),
                    x: bars.map(function (b) { return b.millis; }),
                    y: bars.map(function (b) { return b.display; }),
                    hovertext: bars.map(function (b) { return b.hover; }),
                    hoverinfo: 'text',
                    marker: {
                        color: data.colors[i],
                        line: {
                            color: bars.map(function (b) { return b.critical ? 'red' : 'rgba(0,0,0,0)'; }),
                            width: bars.map(function (b) { return b.critical ? 3 : 0; })
                        }
                    }
                });
            });

            const milestones = data.bars.filter(function (b) { return b.milestone; });
            if (milestones.length > 0) {
                traces.push({
                    type: 'scatter',
                    mode: 'markers',
                    name: 'Milestones',
                    x: milestones.map(function (b) { return b.start; }),
                    y: milestones.map(function (b) { return b.display; }),
                    hovertext: milestones.map(function (b) { return b.name; }),
                    hoverinfo: 'text',
                    marker: { symbol: 'diamond', size: 12, color: 'purple' }
                });
            }

            Plotly.newPlot('gantt', traces, {
                title: data.title,
                height: data.height,
                barmode: 'overlay',
                showlegend: true,
                hovermode: 'closest',
                plot_bgcolor: 'white',
                xaxis: {
                    type: 'date',
                    title: 'Timeline',
                    showgrid: true,
                    gridwidth: 1,
                    gridcolor: 'lightgray',
                    dtick: 'M1',
                    tickformat: '%b %Y'
                },
                yaxis: {
                    title: 'Tasks',
                    autorange: 'reversed',
                    showgrid: true,
                    gridwidth: 1,
                    gridcolor: 'lightgray'
                }
            }, { responsive: true });

            if (data.resources.length > 0) {
                const types = Array.from(new Set(data.resources.map(function (r) { return r.type || 'Resource'; })));
                const resourceTraces = types.map(function (type) {
                    const rows = data.resources.filter(function (r) { return (r.type || 'Resource') === type; });
                    return {
                        type: 'bar',
                        name: type,
                        x: rows.map(function (r) { return r.name; }),
                        y: rows.map(function (r) { return r.cost; }),
                        text: rows.map(function (r) { return r.cost.toFixed(2); }),
                        textposition: 'outside'
                    };
                });
                Plotly.newPlot('resources', resourceTraces, {
                    title: 'Resource Costs',
                    height: 400,
                    showlegend: true,
                    xaxis: { title: 'Resources' },
                    yaxis: { title: 'Cost' }
                }, { responsive: true });
            }
        })();
    </script>
</body>
</html>
`
