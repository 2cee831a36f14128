package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/chartsight/chartsight/internal/detect"
	"github.com/chartsight/chartsight/internal/insight"
	"github.com/chartsight/chartsight/internal/ocr"
	"github.com/chartsight/chartsight/internal/parser"
	"github.com/chartsight/chartsight/internal/store"
)

// maxContextChars caps how much of the source document's text is passed to
// the inference engine as surrounding context.
const maxContextChars = 2000

// Worker runs one task through the full pipeline: parse, detect, OCR,
// infer, persist.
type Worker struct {
	detector    *detect.Detector
	extractor   *ocr.Extractor
	engine      *insight.Engine
	results     *store.Store
	log         *slog.Logger
	pdfFallback bool
}

// NewWorker wires the pipeline stages together.
func NewWorker(detector *detect.Detector, extractor *ocr.Extractor, engine *insight.Engine, results *store.Store, log *slog.Logger) *Worker {
	return &Worker{
		detector:  detector,
		extractor: extractor,
		engine:    engine,
		results:   results,
		log:       log,
	}
}

// EnablePDFTextFallback lets PDF text extraction shell out to pdftotext when
// the Go library cannot open a file.
func (w *Worker) EnablePDFTextFallback() {
	w.pdfFallback = true
}

// Process runs a task to completion, updating its state as stages finish.
// A stage error fails the task; it never panics out.
func (w *Worker) Process(ctx context.Context, task *Task) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("worker panic", "task_id", task.ID, "panic", r)
			task.Fail("Internal error during processing")
		}
	}()

	task.Advance("Extracting content...", 10)

	p, err := parser.ForFile(task.SourceName)
	if err != nil {
		task.Fail(fmt.Sprintf("Unsupported file type: %s", task.SourceName))
		return
	}
	if pdf, ok := p.(*parser.PDFParser); ok {
		pdf.FallbackPdftotext = w.pdfFallback
	}

	src, err := p.Parse(bytes.NewReader(task.Payload()), task.SourceName)
	if err != nil {
		w.log.Warn("parse failed", "task_id", task.ID, "source", task.SourceName, "error", err)
		task.Fail(fmt.Sprintf("Failed to extract content: %v", err))
		return
	}

	task.Advance(fmt.Sprintf("Found %d image regions, analyzing...", len(src.Regions)), 30)

	docContext := src.Text
	if len(docContext) > maxContextChars {
		docContext = docContext[:maxContextChars]
	}

	extractions := make([]store.Extraction, 0, len(src.Regions))
	for i, region := range src.Regions {
		verdict := w.detector.Detect(ctx, region.Img)

		imagePath, err := w.results.SaveImage(region.ID, region.Img)
		if err != nil {
			w.log.Error("save region image", "task_id", task.ID, "image_id", region.ID, "error", err)
			task.Fail("Failed to save extracted image")
			return
		}

		ex := store.Extraction{
			ImageID:    region.ID,
			ImagePath:  imagePath,
			Type:       verdict.ChartType,
			PageNumber: region.Page,
		}

		if verdict.IsChart {
			task.Advance(fmt.Sprintf("Analyzing chart %d/%d...", i+1, len(src.Regions)), task.Snapshot().Progress)

			extracted := w.extractor.Extract(ctx, region.Img)
			inference := w.engine.Analyze(ctx, verdict.ChartType, extracted.Structured, docContext)
			ex.OCRData = &extracted.Structured
			ex.Inference = &inference
		}

		extractions = append(extractions, ex)
		task.Advance("", 30+(i+1)*60/len(src.Regions))
	}

	task.Advance("Saving results...", 95)

	stored, err := w.results.Save(store.Result{
		SourceName:  src.Name,
		ProcessedAt: task.CreatedAt,
		TotalPages:  src.TotalPages,
		FullText:    src.Text,
		Extractions: extractions,
	})
	if err != nil {
		w.log.Error("save result", "task_id", task.ID, "error", err)
		task.Fail("Failed to save results")
		return
	}

	task.Complete(stored.ID, &stored)
	w.log.Info("task completed", "task_id", task.ID, "result_id", stored.ID, "regions", len(src.Regions))
}
