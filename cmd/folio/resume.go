package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/folio/internal/model"
	"github.com/amishk599/folio/internal/page"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Print a summary of the resume",
	Long:  "Fetches the resume from {api}/api/resume (falling back to the built-in one) and prints a summary.",
	RunE:  runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	api := resolveAPIBase(cfg)

	httpClient := &http.Client{Timeout: cfg.Client.Timeout}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Client.Timeout)
	defer cancel()

	if err := writeResume(ctx, os.Stdout, api, httpClient); err != nil {
		logger.Error("failed to fetch resume", "error", err)
		os.Exit(1)
	}
	return nil
}

// writeResume fetches the resume and writes its summary to w. The fallback
// notice is not logged so w holds only the summary.
func writeResume(ctx context.Context, w io.Writer, api string, httpClient *http.Client) error {
	r, err := viewerSource(api, httpClient, discardLogger()).FetchResume(ctx)
	if err != nil {
		return err
	}
	printResume(w, r)
	return nil
}

func printResume(w io.Writer, r model.Resume) {
	v := page.Build(r, nil)

	fmt.Fprintf(w, "%s\n", v.Name)
	if v.Title != "" {
		fmt.Fprintf(w, "%s\n", v.Title)
	}
	if v.Location != "" {
		fmt.Fprintf(w, "%s\n", v.Location)
	}
	if v.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", v.Summary)
	}

	if len(v.Skills) > 0 {
		fmt.Fprintln(w, "\nSkills")
		for _, c := range v.Skills {
			fmt.Fprintf(w, "  %-16s %s\n", c.Name+":", strings.Join(c.Items, ", "))
		}
	}
	if len(v.Experience) > 0 {
		fmt.Fprintln(w, "\nExperience")
		for _, e := range v.Experience {
			fmt.Fprintf(w, "  %s at %s (%s)\n", e.Role, e.Company, e.Period)
		}
	}
	if len(v.Projects) > 0 {
		fmt.Fprintln(w, "\nProjects")
		for _, p := range v.Projects {
			fmt.Fprintf(w, "  %s: %s\n", p.Name, strings.Join(p.Technologies, ", "))
		}
	}
	if len(v.Education) > 0 {
		fmt.Fprintln(w, "\nEducation")
		for _, e := range v.Education {
			fmt.Fprintf(w, "  %s, %s\n", e.Degree, e.Institution)
		}
	}
	if len(v.Contacts) > 0 {
		fmt.Fprintln(w, "\nContact")
		for _, c := range v.Contacts {
			fmt.Fprintf(w, "  %-10s %s\n", c.Label+":", c.Text)
		}
	}
}
