// Package scanner 提供并发批处理调度能力。
// 该层负责文件选择、任务分发、并发执行和结果汇总，不负责行分类细节。
package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"luastrip/internal/aggregate"
	"luastrip/internal/classify"
	"luastrip/internal/model"
	"luastrip/internal/rewrite"
	"luastrip/internal/selector"
	"luastrip/internal/textcodec"
)

// Mode 决定单文件处理到哪一步。
type Mode string

const (
	// ModeAnalyze 只分类与统计。
	ModeAnalyze Mode = "analyze"
	// ModeStrip 改写并写回文件。
	ModeStrip Mode = "strip"
	// ModeDryRun 计算改写结果但不写回。
	ModeDryRun Mode = "dry-run"
)

// Options 是批处理参数。
type Options struct {
	// Workers 为并发数，<= 0 时使用 CPU 核数。
	Workers  int
	Decoder  *textcodec.Decoder
	Selector selector.Options
}

// Service 是批处理服务对象，可重复调用 Run。
type Service struct {
	rules     *classify.Rules
	decoder   *textcodec.Decoder
	selection selector.Options
	workers   int
	logger    zerolog.Logger

	writeFile func(name string, data []byte, perm os.FileMode) error
}

// scanTask 表示一个待处理文件，seq 为分发顺序。
type scanTask struct {
	seq    int
	target selector.Target
}

// workerResult 表示 worker 的执行产物，summary 与 scanError 二选一。
type workerResult struct {
	seq       int
	summary   *model.FileSummary
	scanError *model.ScanError
}

// NewService 创建批处理服务。
func NewService(rules *classify.Rules, options Options, logger zerolog.Logger) *Service {
	workers := options.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	decoder := options.Decoder
	if decoder == nil {
		decoder, _ = textcodec.NewDecoder(nil)
	}

	return &Service{
		rules:     rules,
		decoder:   decoder,
		selection: options.Selector,
		workers:   workers,
		logger:    logger,
		writeFile: os.WriteFile,
	}
}

// Run 处理目录或单文件。
//
// ctx 取消后不再分发新文件，已经开始的文件会处理完；此时返回部分结果和 ctx 的错误。
// strip 模式下有文件写回失败时返回完整结果和 ErrWritesFailed。
func (s *Service) Run(ctx context.Context, targetPath string, mode Mode) (model.ScanResult, error) {
	result := model.ScanResult{
		RunID:   uuid.NewString(),
		Mode:    string(mode),
		Files:   make([]model.FileSummary, 0),
		Folders: make([]model.FolderTotals, 0),
		Errors:  make([]model.ScanError, 0),
	}

	switch mode {
	case ModeAnalyze, ModeStrip, ModeDryRun:
	default:
		return result, fmt.Errorf("unknown mode %q", mode)
	}

	trimmedPath := strings.TrimSpace(targetPath)
	if trimmedPath == "" {
		return result, errors.New("scan path is empty")
	}

	absoluteTarget, err := filepath.Abs(trimmedPath)
	if err != nil {
		return result, fmt.Errorf("resolve absolute path: %w", err)
	}
	result.ScannedPath = absoluteTarget

	logger := s.logger.With().Str("run_id", result.RunID).Str("mode", string(mode)).Logger()

	tasks := make(chan scanTask, s.workers*4)
	results := make(chan workerResult, s.workers*4)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(tasks)
		seq := 0
		return selector.Walk(absoluteTarget, s.selection, func(target selector.Target) error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			case tasks <- scanTask{seq: seq, target: target}:
				seq++
				return nil
			}
		})
	})

	for i := 0; i < s.workers; i++ {
		group.Go(func() error {
			for task := range tasks {
				if groupCtx.Err() != nil {
					continue
				}
				results <- s.process(logger, task, mode)
			}
			return nil
		})
	}

	var runErr error
	go func() {
		runErr = group.Wait()
		close(results)
	}()

	collected := make([]workerResult, 0)
	for item := range results {
		collected = append(collected, item)
	}

	s.buildSummaries(&result, collected)

	if runErr != nil {
		return result, runErr
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	logger.Info().
		Int64("files", result.Total.Files).
		Int64("total", result.Total.Total).
		Int("errors", len(result.Errors)).
		Msg("run finished")

	if mode == ModeStrip && result.HasErrorKind(model.ErrorKindWrite) {
		return result, ErrWritesFailed
	}
	return result, nil
}

// process 执行单文件的读取、解码、分类，以及按模式进行的改写。
func (s *Service) process(logger zerolog.Logger, task scanTask, mode Mode) workerResult {
	target := task.target
	fileLogger := logger.With().Str("path", target.DisplayPath).Logger()

	data, err := os.ReadFile(target.AbsolutePath)
	if err != nil {
		return s.readFailure(fileLogger, task, err)
	}

	text, encoding, err := s.decoder.Decode(data)
	if err != nil {
		return s.readFailure(fileLogger, task, err)
	}

	lines := textcodec.SplitLines(text)
	classifier := classify.NewClassifier(s.rules)
	records := make([]classify.Record, 0, len(lines))
	for _, line := range lines {
		records = append(records, classifier.Next(line))
	}

	summary := model.FileSummary{
		Path:     target.DisplayPath,
		Dialect:  target.Dialect.Name,
		Encoding: encoding,
		Counts:   classify.Summarize(records),
	}
	if start, open := classifier.Unclosed(); open {
		summary.UnclosedStatementAt = start
		fileLogger.Warn().Int("line", start).Msg("forbidden statement never closes, removing to end of file")
	}

	if mode == ModeAnalyze {
		return workerResult{seq: task.seq, summary: &summary}
	}

	output := rewrite.Rewrite(records)
	for _, decision := range output.Decisions {
		fileLogger.Debug().
			Int("line", decision.Index).
			Stringer("category", decision.Category).
			Str("action", string(decision.Action)).
			Msg("rewrite")
	}

	content := rewrite.Render(output.Lines)
	stats := &model.RewriteStats{
		LinesBefore: len(lines),
		LinesAfter:  len(output.Lines),
		Changed:     !bytes.Equal(content, data),
	}

	if mode == ModeStrip && stats.Changed {
		if err := s.writeBack(target.AbsolutePath, content); err != nil {
			writeErr := &WriteError{Path: target.DisplayPath, Err: err}
			fileLogger.Error().Err(err).Msg("write failed")
			return workerResult{
				seq: task.seq,
				scanError: &model.ScanError{
					Path:  target.DisplayPath,
					Kind:  model.ErrorKindWrite,
					Error: writeErr.Error(),
				},
			}
		}
		stats.Written = true
	}

	summary.Rewrite = stats
	return workerResult{seq: task.seq, summary: &summary}
}

func (s *Service) readFailure(logger zerolog.Logger, task scanTask, err error) workerResult {
	readErr := &FileReadError{Path: task.target.DisplayPath, Err: err}
	logger.Warn().Err(err).Msg("skipping unreadable file")
	return workerResult{
		seq: task.seq,
		scanError: &model.ScanError{
			Path:  task.target.DisplayPath,
			Kind:  model.ErrorKindRead,
			Error: readErr.Error(),
		},
	}
}

// writeBack 覆盖原文件并保留原有权限位。
func (s *Service) writeBack(path string, content []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return s.writeFile(path, content, info.Mode().Perm())
}

// buildSummaries 按分发顺序还原结果，再计算目录汇总和总计。
func (s *Service) buildSummaries(result *model.ScanResult, collected []workerResult) {
	sort.Slice(collected, func(i int, j int) bool {
		return collected[i].seq < collected[j].seq
	})

	for _, item := range collected {
		if item.summary != nil {
			result.Files = append(result.Files, *item.summary)
		}
		if item.scanError != nil {
			result.Errors = append(result.Errors, *item.scanError)
		}
	}

	result.Folders, result.Total = aggregate.Aggregate(result.Files)
	aggregate.SortFiles(result.Files)
}
