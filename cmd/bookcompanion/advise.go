package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/bookcompanion/internal/domain/advisory"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/profile"
)

func newAdviseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Preview the personalized advice a learner sees above a chapter",
		Long: `Preview the personalized advice for a chapter topic.

The profile is a JSON file with the background fields used at sign-up
(programmingExperience, rosExperience, hasRoboticsHardware, ...). Use "-"
to read it from stdin. Without --profile the blank profile is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			topic, _ := cmd.Flags().GetString("topic")
			path, _ := cmd.Flags().GetString("profile")
			asJSON, _ := cmd.Flags().GetBool("json")
			style, _ := cmd.Flags().GetString("style")

			bg, err := readBackground(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			bundle := advisory.Advise(bg, topic)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Topic string `json:"topic"`
					advisory.Bundle
					BasedOn advisory.Summary `json:"basedOn"`
				}{topic, bundle, advisory.Summarize(bg)})
			}

			md := adviceMarkdown(topic, bundle)
			rendered, err := renderMarkdown(md, style)
			if err != nil {
				rendered = md
			}
			_, err = io.WriteString(out, rendered)
			return err
		},
	}
	cmd.Flags().String("topic", "", "chapter topic or title")
	cmd.Flags().String("profile", "", `background JSON file ("-" for stdin)`)
	cmd.Flags().Bool("json", false, "print the bundle as JSON")
	cmd.Flags().String("style", "auto", "glamour style: auto, dark, light or notty")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func readBackground(stdin io.Reader, path string) (*profile.Background, error) {
	bg := &profile.Background{}
	if path == "" {
		return bg, nil
	}

	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	if err := json.Unmarshal(raw, bg); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	if err := bg.Validate(); err != nil {
		return nil, err
	}
	return bg, nil
}

// adviceMarkdown lays the bundle out the way the chapter header shows it.
func adviceMarkdown(topic string, b advisory.Bundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Personalized for: %s\n", topic)
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", title)
		for _, it := range items {
			fmt.Fprintf(&sb, "- %s\n", it)
		}
	}
	section("Tips", b.Tips)
	section("Exercises", b.Exercises)
	section("Resources", b.Resources)
	return sb.String()
}

func renderMarkdown(md, style string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(80)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
