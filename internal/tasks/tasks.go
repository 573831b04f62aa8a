package tasks

import "encoding/json"

// 定义任务类型常量
const (
	// TypeDrawingCompaction 压缩存量笔迹的路径数据
	TypeDrawingCompaction = "drawing:compact"
)

// DrawingCompactionPayload 定义了笔迹压缩任务的数据结构。
// MinBytes 以下的路径不值得压缩，Limit 限制单次处理的条数。
type DrawingCompactionPayload struct {
	MinBytes int `json:"minBytes"`
	Limit    int `json:"limit"`
}

// NewDrawingCompactionTask 序列化一个笔迹压缩任务的 payload。
func NewDrawingCompactionTask(minBytes, limit int) ([]byte, error) {
	payload := DrawingCompactionPayload{
		MinBytes: minBytes,
		Limit:    limit,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return payloadBytes, nil
}
