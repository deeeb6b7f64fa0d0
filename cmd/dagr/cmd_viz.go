package main

import (
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dagr/internal/calendar"
	"dagr/internal/cpm"
	"dagr/internal/project"
)

// buildMermaid renders s's task graph as Mermaid flowchart text, with
// critical-path nodes styled in red.
func buildMermaid(s *project.State) (string, error) {
	g, err := s.Graph()
	if err != nil {
		return "", err
	}
	cal := calendar.New(s.CalendarConfig())
	result, _, err := (cpm.Engine{}).Compute(s, cal, g)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("flowchart TD\n")
	for _, t := range s.Tasks {
		label := strings.ReplaceAll(t.Name, `"`, `'`)
		sb.WriteString(fmt.Sprintf("    %s[\"%s: %s\"]\n", t.ID, t.ID, label))
		for _, dep := range t.DependsOn {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", dep, t.ID))
		}
	}
	for id, r := range result.Tasks {
		if r.Critical {
			sb.WriteString(fmt.Sprintf("    style %s stroke:#e53935,stroke-width:3px\n", id))
		}
	}
	return sb.String(), nil
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "print the task graph as Mermaid flowchart text",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadState()
		if err != nil {
			return err
		}
		mermaid, err := buildMermaid(s)
		if err != nil {
			return err
		}
		fmt.Print(mermaid)
		return nil
	},
}

var vizHTMLOut string

var vizHTMLCmd = &cobra.Command{
	Use:   "viz-html",
	Short: "render the task graph as a standalone HTML page (Mermaid via CDN)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadState()
		if err != nil {
			return err
		}
		mermaid, err := buildMermaid(s)
		if err != nil {
			return err
		}

		f, err := os.Create(vizHTMLOut)
		if err != nil {
			return err
		}
		defer f.Close()

		return vizHTMLTemplate.Execute(f, struct{ Mermaid string }{Mermaid: mermaid})
	},
}

func init() {
	vizHTMLCmd.Flags().StringVar(&vizHTMLOut, "out", "dagr-graph.html", "output HTML file path")
	rootCmd.AddCommand(vizCmd, vizHTMLCmd)
}

var vizHTMLTemplate = template.Must(template.New("viz").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>dagr task graph</title>
  <script type="module">
    import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";
    mermaid.initialize({ startOnLoad: true });
  </script>
</head>
<body>
  <pre class="mermaid">
{{.Mermaid}}
  </pre>
</body>
</html>
`))
