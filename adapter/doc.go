// Package adapter 把第三方回归模型的原始预测输出规整为统一的 core.ScoringData。
//
// 处理流程：
//  1. 判定输出形态（表格 / 数组 / 其他）并抽取一维预测序列
//  2. 校验：非空、条数与输入行一致、无 NaN、（可选）Guard 规则
//  3. 用输入行标识替换模型返回的索引，打包为 ScoringData
package adapter
