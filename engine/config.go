// Package engine 是对外的门面：装配打分管线、反馈链路和趋势查询。
package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/trendkit/core"
	"github.com/rushteam/trendkit/rerank"
	"github.com/rushteam/trendkit/trend"
)

// Config 是引擎的全量配置。所有校验在构建期完成（INVALID_CONFIG
// 属启动期致命错误），调用期不再检查。
type Config struct {
	// FeatureWeights 属性维度的重要性权重，必须总和为 1.0
	FeatureWeights map[core.Dimension]float64 `yaml:"feature_weights" json:"feature_weights"`

	// FusionWeights 三路策略的融合权重，必须总和为 1.0
	FusionWeights rerank.FusionWeights `yaml:"fusion_weights" json:"fusion_weights"`

	// TopKSimilarUsers 协同过滤的邻居数
	TopKSimilarUsers int `yaml:"top_k_similar_users" json:"top_k_similar_users"`

	// SimilarityThreshold 邻居最小相似度门槛
	SimilarityThreshold float64 `yaml:"similarity_threshold" json:"similarity_threshold"`

	// MaxCellWeight 交互矩阵单元格上限（防刷护栏，必须显式为正）
	MaxCellWeight float64 `yaml:"max_cell_weight" json:"max_cell_weight"`

	// TrendingWindowDays 趋势统计窗口天数
	TrendingWindowDays int `yaml:"trending_window_days" json:"trending_window_days"`

	// DecayLambda 趋势分的指数衰减系数
	DecayLambda float64 `yaml:"decay_lambda" json:"decay_lambda"`

	// PreferenceAlpha 偏好权重指数更新步长，(0,1]
	PreferenceAlpha float64 `yaml:"preference_alpha" json:"preference_alpha"`

	// MaxPreferenceWeight 偏好权重上限
	MaxPreferenceWeight float64 `yaml:"max_preference_weight" json:"max_preference_weight"`

	// ExcludeInteractionTypes 推荐结果中排除的已交互类型，默认只排除 purchase
	ExcludeInteractionTypes []core.InteractionType `yaml:"exclude_interaction_types" json:"exclude_interaction_types"`

	// FilterExprs 可选的 CEL 规则过滤表达式，命中即排除
	FilterExprs []string `yaml:"filter_exprs" json:"filter_exprs"`

	// GrowthEpsilon / MaxGrowthRate 周环比的除零保护与上限
	GrowthEpsilon float64 `yaml:"growth_epsilon" json:"growth_epsilon"`
	MaxGrowthRate float64 `yaml:"max_growth_rate" json:"max_growth_rate"`

	// ThresholdUp / ThresholdDown 涨跌分类阈值
	ThresholdUp   float64 `yaml:"threshold_up" json:"threshold_up"`
	ThresholdDown float64 `yaml:"threshold_down" json:"threshold_down"`
}

// DefaultConfig 返回可直接使用的默认配置。
// 维度重要性沿用目录侧约定：品类 > 风格 > 颜色/品牌 > 价位 > 季节。
func DefaultConfig() *Config {
	return &Config{
		FeatureWeights: map[core.Dimension]float64{
			core.DimensionCategory:   0.30,
			core.DimensionStyle:      0.25,
			core.DimensionColor:      0.15,
			core.DimensionBrand:      0.15,
			core.DimensionPriceRange: 0.10,
			core.DimensionSeason:     0.05,
		},
		FusionWeights:           rerank.DefaultFusionWeights(),
		TopKSimilarUsers:        5,
		SimilarityThreshold:     0.5,
		MaxCellWeight:           10.0,
		TrendingWindowDays:      30,
		DecayLambda:             0.1,
		PreferenceAlpha:         0.2,
		MaxPreferenceWeight:     core.MaxTypeWeight(),
		ExcludeInteractionTypes: []core.InteractionType{core.InteractionPurchase},
		GrowthEpsilon:           trend.DefaultEpsilon,
		MaxGrowthRate:           trend.DefaultMaxGrowthRate,
		ThresholdUp:             trend.DefaultThresholdUp,
		ThresholdDown:           trend.DefaultThresholdDown,
	}
}

// LoadConfig 从 YAML 文件加载配置：先取默认值，再用文件内容覆盖。
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验整份配置，非法时返回 INVALID_CONFIG。
func (c *Config) Validate() error {
	invalid := func(msg string) error {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidConfig, msg)
	}

	if len(c.FeatureWeights) == 0 {
		return invalid("feature_weights is required")
	}
	// 权重和/维度合法性由编码器构建时复核，这里先挡掉明显错误
	for d, w := range c.FeatureWeights {
		if !d.Valid() {
			return invalid(fmt.Sprintf("unknown dimension in feature_weights: %s", d))
		}
		if w < 0 {
			return invalid(fmt.Sprintf("negative feature weight for %s", d))
		}
	}
	if err := c.FusionWeights.Validate(); err != nil {
		return err
	}
	if c.TopKSimilarUsers <= 0 {
		return invalid("top_k_similar_users must be positive")
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return invalid("similarity_threshold must be in [0,1]")
	}
	if c.MaxCellWeight <= 0 {
		return invalid("max_cell_weight must be positive")
	}
	if c.TrendingWindowDays <= 0 {
		return invalid("trending_window_days must be positive")
	}
	if c.DecayLambda <= 0 {
		return invalid("decay_lambda must be positive")
	}
	if c.PreferenceAlpha <= 0 || c.PreferenceAlpha > 1 {
		return invalid("preference_alpha must be in (0,1]")
	}
	if c.MaxPreferenceWeight <= 0 {
		return invalid("max_preference_weight must be positive")
	}
	for _, t := range c.ExcludeInteractionTypes {
		if !t.Valid() {
			return invalid(fmt.Sprintf("unknown interaction type in exclusions: %s", t))
		}
	}
	if c.GrowthEpsilon <= 0 {
		return invalid("growth_epsilon must be positive")
	}
	if c.MaxGrowthRate <= 0 {
		return invalid("max_growth_rate must be positive")
	}
	if c.ThresholdUp < c.ThresholdDown {
		return invalid("threshold_up must be >= threshold_down")
	}
	return nil
}
