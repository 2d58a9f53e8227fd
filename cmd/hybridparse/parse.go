package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/gardar/hybridparse/pkg/document"
	"github.com/gardar/hybridparse/pkg/gdocai"
	"github.com/gardar/hybridparse/pkg/parseapi"
	"github.com/gardar/hybridparse/pkg/pipeline"
	"github.com/gardar/hybridparse/pkg/searchable"
)

// recordingProvider keeps the last raw response for --debug-api: the
// Document AI proto for that provider, the decoded JSON payload otherwise.
type recordingProvider struct {
	parseapi.Provider
	raw any
}

func (r *recordingProvider) Parse(ctx context.Context, req parseapi.Request) (map[string]any, error) {
	if dp, ok := r.Provider.(*gdocai.Provider); ok {
		doc, payload, err := dp.ParseDocument(ctx, req)
		if doc != nil {
			r.raw = doc
		}
		return payload, err
	}

	payload, err := r.Provider.Parse(ctx, req)
	if payload != nil {
		r.raw = payload
	}
	return payload, err
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse one document and write its outputs",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "markdown", Usage: "Path to save the assembled Markdown (default: stdout)"},
			&cli.StringFlag{Name: "json", Usage: "Path to save the document record as JSON"},
			&cli.StringFlag{Name: "hocr", Usage: "Path to save hOCR output"},
			&cli.StringFlag{Name: "output", Usage: "Path to save the searchable PDF"},
			&cli.BoolFlag{Name: "force", Usage: "Reapply the text layer even if the PDF already has one"},
			&cli.BoolFlag{Name: "debug-layer", Usage: "Draw the text layer visibly with word boxes"},
			&cli.StringFlag{Name: "debug-api", Usage: "Path to save the raw provider response as JSON"},
		},
		Action: runParse,
	}
}

func runParse(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("parse expects exactly one file argument", 2)
	}
	path := c.Args().First()

	cfg, logger, err := load(c)
	if err != nil {
		return err
	}
	provider, err := cfg.NewProvider(logger)
	if err != nil {
		return err
	}
	if provider == nil {
		return fmt.Errorf("provider %q is not configured", cfg.Parsing.Provider)
	}
	recorder := &recordingProvider{Provider: provider}

	proc, st, err := cfg.Open(logger, recorder, false)
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	ctx := c.Context
	rec, err := proc.Upload(ctx, pipeline.Upload{Filename: filepath.Base(path), Data: data})
	if err != nil {
		return err
	}

	if out := c.String("debug-api"); out != "" && recorder.raw != nil {
		js, err := gdocai.ToJSON(recorder.raw)
		if err != nil {
			return err
		}
		if err := writeOutput(out, []byte(js), logger); err != nil {
			return err
		}
	}
	if out := c.String("json"); out != "" {
		js, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		if err := writeOutput(out, js, logger); err != nil {
			return err
		}
	}

	if rec.Status != document.StatusCompleted {
		return cli.Exit(fmt.Sprintf("parsing failed: %s", rec.ErrorMessage), 1)
	}
	return writeExports(c, proc, rec, logger)
}

func writeExports(c *cli.Context, proc *pipeline.Processor, rec *document.Record, logger *logrus.Logger) error {
	ctx := c.Context
	md := rec.Parsed.Content.Markdown
	if out := c.String("markdown"); out != "" {
		if err := writeOutput(out, []byte(md), logger); err != nil {
			return err
		}
	} else if c.String("hocr") == "" && c.String("output") == "" {
		fmt.Fprintln(c.App.Writer, md)
	}

	if out := c.String("hocr"); out != "" {
		h, err := proc.HOCR(ctx, rec.ID)
		if err != nil {
			return err
		}
		if err := writeOutput(out, []byte(h), logger); err != nil {
			return err
		}
	}

	if out := c.String("output"); out != "" {
		pdfCfg := searchable.DefaultConfig()
		pdfCfg.Force = c.Bool("force")
		pdfCfg.Debug = c.Bool("debug-layer")
		pdfCfg.Logger = logger
		pdf, err := proc.SearchablePDF(ctx, rec.ID, pdfCfg)
		if err != nil {
			return err
		}
		if err := writeOutput(out, pdf, logger); err != nil {
			return err
		}
	}
	return nil
}

func writeOutput(path string, data []byte, logger *logrus.Logger) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.WithField("path", path).Info("Wrote output")
	return nil
}
