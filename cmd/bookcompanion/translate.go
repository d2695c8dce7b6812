package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/bookcompanion/internal/domain/translation"
)

const envToken = "BOOKCOMPANION_TOKEN"

func newTranslateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <chapter.html>",
		Short: "Translate the readable text of a chapter HTML file",
		Long: `Translate a chapter HTML file through a running server's /api/translate
endpoint, batch by batch. Code blocks are left untouched. Use "-" to read
the HTML from stdin. With --local the placeholder translator runs in-process
and no server is needed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL, _ := cmd.Flags().GetString("server")
			token, _ := cmd.Flags().GetString("token")
			local, _ := cmd.Flags().GetBool("local")
			batchSize, _ := cmd.Flags().GetInt("batch-size")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			var req translation.ChapterRequest
			req.Selector, _ = cmd.Flags().GetString("selector")
			req.TargetLanguage, _ = cmd.Flags().GetString("target")
			req.Chapter, _ = cmd.Flags().GetString("chapter")
			req.Title, _ = cmd.Flags().GetString("title")
			req.VerifyRestore, _ = cmd.Flags().GetBool("restore-check")

			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			req.HTML = string(raw)

			var requester translation.Requester
			if local {
				requester = translation.NewService(translation.PlaceholderBackend{}, nil, 0, nil)
			} else {
				if token == "" {
					token = os.Getenv(envToken)
				}
				requester = translation.NewHTTPRequester(serverURL, token, timeout)
			}

			driver := translation.NewDriver(requester, translation.WithBatchSize(batchSize))
			res, err := translation.TranslateChapter(cmd.Context(), driver, req)
			if err != nil {
				return err
			}

			if _, err := io.WriteString(cmd.OutOrStdout(), res.HTML+"\n"); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d/%d batches, %d fragments\n", //nolint:errcheck
				res.State, res.Progress.AppliedBatches, res.Progress.Batches, res.Progress.Fragments)
			if res.RestoreVerified {
				fmt.Fprintln(cmd.ErrOrStderr(), "restore check: original reproduced") //nolint:errcheck
			}
			if res.Error != "" {
				return errors.New(res.Error)
			}
			return nil
		},
	}
	cmd.Flags().String("server", "http://localhost:3001", "bookcompanion server base URL")
	cmd.Flags().String("token", "", "session token (default $"+envToken+")")
	cmd.Flags().Bool("local", false, "translate in-process with the placeholder backend")
	cmd.Flags().String("selector", translation.DefaultSelector, "content root selector")
	cmd.Flags().String("target", "urdu", "target language")
	cmd.Flags().String("chapter", "", "chapter id sent with each batch")
	cmd.Flags().String("title", "", "chapter title sent with each batch")
	cmd.Flags().Int("batch-size", translation.DefaultBatchSize, "texts per request")
	cmd.Flags().Duration("timeout", 30*time.Second, "per-request timeout")
	cmd.Flags().Bool("restore-check", false, "after translating, restore the chapter and fail unless the original is reproduced")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return raw, nil
}
