package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/neuro-fusion/internal/client"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/analysis"
	"github.com/bryanwahyu/neuro-fusion/internal/wizard"
)

type analyzeOptions struct {
	mriPath       string
	eegPath       string
	notes         string
	notesFile     string
	stageInterval time.Duration
}

func analyzeCmd(opts *globalOptions) *cobra.Command {
	a := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Upload MRI, EEG and clinical notes and show the predicted conditions",
		Long: `Upload the three modalities and run the multimodal analysis.

All three inputs are required. Clinical notes must be longer than ten
characters once surrounding whitespace is removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts, a)
		},
	}
	cmd.Flags().StringVar(&a.mriPath, "mri", "", "MRI image file (.jpg, .png, .dcm)")
	cmd.Flags().StringVar(&a.eegPath, "eeg", "", "EEG recording file (.csv, .txt, .edf)")
	cmd.Flags().StringVar(&a.notes, "notes", "", "clinical notes text")
	cmd.Flags().StringVar(&a.notesFile, "notes-file", "", "read clinical notes from a file")
	cmd.Flags().DurationVar(&a.stageInterval, "stage-interval", wizard.DefaultInterval, "how long each progress stage is shown")
	cmd.MarkFlagsMutuallyExclusive("notes", "notes-file")
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *globalOptions, a *analyzeOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	w := wizard.New()
	if err := fillWizard(w, a); err != nil {
		return err
	}
	fmt.Fprintln(out, renderStatus(w.Status()))

	progress, err := w.Start()
	if err != nil {
		if errors.Is(err, wizard.ErrNotReady) {
			return fmt.Errorf("all three inputs are required (--mri, --eeg and --notes or --notes-file): %w", err)
		}
		return err
	}

	stages := wizard.Stages()
	bar := progressbar.NewOptions(len(stages),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(stageLabel(stages[0])),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)
	show := func(i int) {
		bar.Describe(stageLabel(stages[i]))
		if err := bar.Set(i); err != nil {
			opts.log.Debug("failed to update progress bar", zap.Error(err))
		}
	}

	tickCtx, stopTicking := context.WithCancel(ctx)
	ticking := make(chan struct{})
	go func() {
		defer close(ticking)
		progress.Run(tickCtx, a.stageInterval, show)
	}()

	res, err := opts.client().SubmitAnalysis(ctx, submissionFrom(w.Data()))
	stopTicking()
	<-ticking

	if err != nil {
		_ = bar.Clear()
		_ = w.Fail(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	if err := w.Complete(res.Predictions); err != nil {
		return err
	}
	show(progress.Current())
	_ = bar.Finish()

	opts.log.Debug("prediction received", zap.String("request_id", res.Metadata.RequestID))
	fmt.Fprint(out, renderPredictions(res))
	return nil
}

func stageLabel(s wizard.Stage) string {
	return fmt.Sprintf("[cyan][bold]%s[reset] %s", s.Title, s.Description)
}

func fillWizard(w *wizard.Wizard, a *analyzeOptions) error {
	if a.mriPath != "" {
		u, err := readUpload(a.mriPath)
		if err != nil {
			return fmt.Errorf("failed to read MRI file: %w", err)
		}
		w.SetMRI(u)
	}
	if a.eegPath != "" {
		u, err := readUpload(a.eegPath)
		if err != nil {
			return fmt.Errorf("failed to read EEG file: %w", err)
		}
		w.SetEEG(u)
	}
	notes := a.notes
	if a.notesFile != "" {
		raw, err := os.ReadFile(a.notesFile)
		if err != nil {
			return fmt.Errorf("failed to read notes file: %w", err)
		}
		notes = string(raw)
	}
	w.SetNotes(notes)
	return nil
}

func readUpload(path string) (*analysis.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &analysis.Upload{
		Filename: filepath.Base(path),
		Size:     int64(len(data)),
		Data:     data,
	}, nil
}

func submissionFrom(d analysis.AnalysisData) client.Submission {
	s := client.Submission{ClinicalNotes: d.ClinicalNotes}
	if d.MRI != nil {
		s.MRI = &client.File{Name: d.MRI.Filename, Reader: bytes.NewReader(d.MRI.Data)}
	}
	if d.EEG != nil {
		s.EEG = &client.File{Name: d.EEG.Filename, Reader: bytes.NewReader(d.EEG.Data)}
	}
	return s
}
