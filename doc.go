// Package trendkit 是一个时尚场景的趋势推荐工具包（Trend Kit）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（并行打分 → 过滤 → 融合 → 截断）
// - 无状态打分: 矩阵、编码器、口味向量每次调用基于数据快照重建，反馈写入即生效
// - 趋势双写: 分析器把归一化趋势分落盘数据层并同步热榜 zset，推荐链路优先消费落盘分
package trendkit

import "github.com/rushteam/trendkit/pipeline"

// 轻量 facade：便于用户直接 import "trendkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindFuse        = pipeline.KindFuse
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
