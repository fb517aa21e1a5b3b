package core

// PredictionColumn 是 ScoringData.PredDF 中唯一列的列名
const PredictionColumn = "prediction"

// ScoringData 是回归预测的统一结果容器。
//
// Preds 与 PredDF 持有相同的预测值，索引均与输入行的标识一致。
// 每次预测构造一次，返回后不再修改。
type ScoringData struct {
	// Preds 预测序列
	Preds *Series

	// PredDF 单列（"prediction"）表格形式
	PredDF *Frame
}

// NewScoringData 由预测序列构造结果容器，两种形式各持一份拷贝。
func NewScoringData(preds *Series) (*ScoringData, error) {
	df, err := preds.ToFrame(PredictionColumn)
	if err != nil {
		return nil, err
	}
	return &ScoringData{Preds: preds.Copy(), PredDF: df}, nil
}

// Len 返回预测条数
func (d *ScoringData) Len() int {
	if d == nil || d.Preds == nil {
		return 0
	}
	return d.Preds.Len()
}

// Get 按行标识取预测值
func (d *ScoringData) Get(id string) (float64, bool) {
	if d == nil || d.Preds == nil {
		return 0, false
	}
	return d.Preds.Get(id)
}

// Values 返回预测值拷贝
func (d *ScoringData) Values() []float64 {
	if d == nil || d.Preds == nil {
		return nil
	}
	return append([]float64(nil), d.Preds.Values...)
}

// Index 返回行标识拷贝
func (d *ScoringData) Index() []string {
	if d == nil || d.Preds == nil {
		return nil
	}
	return append([]string(nil), d.Preds.Index...)
}
