package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"pairmap/internal/geo"
	"pairmap/internal/repository"
	"pairmap/internal/tasks"
)

// 压缩任务的默认参数
const (
	DefaultCompactionMinBytes = 4 * 1024
	DefaultCompactionLimit    = 100
)

// DrawingCompactionHandler 处理笔迹路径的后台压缩。
// 提交时已经做过一次简化；老数据和容差调整后的存量数据由这里兜底。
type DrawingCompactionHandler struct {
	drawingRepo repository.DrawingRepository
}

// NewDrawingCompactionHandler 创建 Handler 实例
func NewDrawingCompactionHandler(drawingRepo repository.DrawingRepository) *DrawingCompactionHandler {
	if drawingRepo == nil {
		panic("DrawingRepository cannot be nil for DrawingCompactionHandler")
	}
	return &DrawingCompactionHandler{drawingRepo: drawingRepo}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *DrawingCompactionHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
	})
	logCtx.Info("Processing drawing compaction task...")

	var payload tasks.DrawingCompactionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.MinBytes <= 0 {
		payload.MinBytes = DefaultCompactionMinBytes
	}
	if payload.Limit <= 0 {
		payload.Limit = DefaultCompactionLimit
	}

	drawings, err := h.drawingRepo.ListHeavy(ctx, payload.MinBytes, payload.Limit)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list heavy drawings")
		return fmt.Errorf("failed to list heavy drawings: %w", err)
	}
	if len(drawings) == 0 {
		logCtx.Debug("No drawings above compaction threshold")
		return nil
	}

	compacted := 0
	for i := range drawings {
		drawing := &drawings[i]
		path, err := drawing.ParsePath()
		if err != nil {
			// 坏数据跳过，不让单条记录卡死整个任务
			logCtx.WithField("drawing_id", drawing.ID).WithError(err).Warn("Skipping drawing with unparsable path")
			continue
		}

		simplified := geo.SimplifyGeo(path, geo.GeoTolerance)
		if len(simplified) >= len(path) {
			continue
		}

		if err := drawing.SetPath(simplified); err != nil {
			logCtx.WithField("drawing_id", drawing.ID).WithError(err).Warn("Failed to encode simplified path")
			continue
		}
		if err := h.drawingRepo.Save(ctx, drawing); err != nil {
			logCtx.WithField("drawing_id", drawing.ID).WithError(err).Error("Failed to save compacted drawing")
			return fmt.Errorf("failed to save compacted drawing %s: %w", drawing.ID, err)
		}

		compacted++
		logCtx.WithFields(logrus.Fields{
			"drawing_id":        drawing.ID,
			"points_before":     len(path),
			"points_after":      len(simplified),
			"compression_ratio": geo.CompressionRatio(len(path), len(simplified)),
		}).Debug("Drawing path compacted")
	}

	logCtx.WithFields(logrus.Fields{"candidates": len(drawings), "compacted": compacted}).Info("Drawing compaction task processed successfully")
	return nil
}
