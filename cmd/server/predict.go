package main

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	_ "golang.org/x/image/webp"
)

func newPredictCmd() *cobra.Command {
	var (
		lang       string
		showScores bool
	)

	cmd := &cobra.Command{
		Use:   "predict <image>",
		Short: "Classify one image and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open image: %w", err)
			}
			defer file.Close()

			img, _, err := image.Decode(file)
			if err != nil {
				return fmt.Errorf("decode image: %w", err)
			}

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			start := time.Now()
			result, err := a.service.Diagnose(cmd.Context(), uuid.NewString(), img, lang)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if showScores {
				printScores(out, result.Scores, time.Since(start))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "en", "Language code or Accept-Language value")
	cmd.Flags().BoolVar(&showScores, "scores", false, "Also print the score of every class")
	return cmd
}

func printScores(w io.Writer, scores map[string]float32, elapsed time.Duration) {
	classes := make([]string, 0, len(scores))
	for class := range scores {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool {
		if scores[classes[i]] == scores[classes[j]] {
			return classes[i] < classes[j]
		}
		return scores[classes[i]] > scores[classes[j]]
	})

	fmt.Fprintf(w, "Scores (in %s):\n", elapsed)
	for _, class := range classes {
		fmt.Fprintf(w, "- %s: %.4f\n", class, scores[class])
	}
}
