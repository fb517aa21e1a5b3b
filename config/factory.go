// Package config 根据 pipeline.Config 构建可运行的 *pipeline.Pipeline。
//
// 组件按类型名注册在 Registry 中，DefaultRegistry 包含全部内置类型：
//   - 模型：mlflow、kserve、tf_serving、torch_serve、rpc、linear、mlp
//   - 存储：memory、redis、sqlite、kafka
//   - 来源：feast
//   - 特征处理：missing、zscore、minmax、log1p、select
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rushteam/scorekit/adapter"
	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/feast"
	"github.com/rushteam/scorekit/feature"
	"github.com/rushteam/scorekit/model"
	"github.com/rushteam/scorekit/pipeline"
	"github.com/rushteam/scorekit/pkg/conv"
	"github.com/rushteam/scorekit/pkg/dsl"
	"github.com/rushteam/scorekit/pkg/logx"
	"github.com/rushteam/scorekit/service"
	"github.com/rushteam/scorekit/store"
)

// Build 使用 DefaultRegistry 构建 Pipeline，日志输出到 stderr。
func Build(cfg *pipeline.Config) (*pipeline.Pipeline, error) {
	return BuildWithRegistry(DefaultRegistry(), cfg, os.Stderr)
}

// BuildFromYAML 加载 YAML 配置并构建 Pipeline。
func BuildFromYAML(path string) (*pipeline.Pipeline, error) {
	cfg, err := pipeline.LoadFromYAML(path)
	if err != nil {
		return nil, err
	}
	return Build(cfg)
}

// BuildWithRegistry 使用指定注册表构建 Pipeline，logOut 为日志输出目标。
// 构建中途失败时，已创建的组件会被关闭。
func BuildWithRegistry(reg *Registry, cfg *pipeline.Config, logOut io.Writer) (_ *pipeline.Pipeline, err error) {
	if cfg == nil {
		return nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &pipeline.Pipeline{
		Name:   cfg.Pipeline.Name,
		Batch:  adapter.BatchConfig{Size: cfg.Batch.Size, Concurrency: cfg.Batch.Concurrency},
		Logger: logx.New(logOut, cfg.Log.Format, cfg.Log.Level),
	}
	defer func() {
		if err != nil {
			_ = p.Close()
		}
	}()

	if p.Model, err = reg.BuildModel(cfg.Model.Type, cfg.Model.Config); err != nil {
		return nil, fmt.Errorf("build model %s: %w", cfg.Model.Type, err)
	}
	if cfg.Source != nil {
		if p.Source, err = reg.BuildSource(cfg.Source.Type, cfg.Source.Config); err != nil {
			return nil, fmt.Errorf("build source %s: %w", cfg.Source.Type, err)
		}
	}
	for i, fc := range cfg.Features {
		proc, err := reg.BuildProcessor(fc.Type, fc.Config)
		if err != nil {
			return nil, fmt.Errorf("build features[%d] %s: %w", i, fc.Type, err)
		}
		p.Processors = append(p.Processors, proc)
	}
	if cfg.Store != nil {
		if p.Store, err = reg.BuildStore(cfg.Store.Type, cfg.Store.Config); err != nil {
			return nil, fmt.Errorf("build store %s: %w", cfg.Store.Type, err)
		}
		p.TTL = cfg.Store.TTL
	}
	if cfg.Guard != "" {
		guard, err := dsl.NewGuard(cfg.Guard)
		if err != nil {
			return nil, fmt.Errorf("build guard: %w", err)
		}
		p.Options = append(p.Options, adapter.WithGuard(guard))
	}
	return p, nil
}

// Validate 校验配置中的组件类型均已在注册表中；未支持的类型返回包含已支持列表的错误。
func Validate(reg *Registry, cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	var errs []error
	if !contains(reg.ModelTypes(), cfg.Model.Type) {
		errs = append(errs, unsupported("model", cfg.Model.Type, reg.ModelTypes()))
	}
	if cfg.Source != nil && !contains(reg.SourceTypes(), cfg.Source.Type) {
		errs = append(errs, unsupported("source", cfg.Source.Type, reg.SourceTypes()))
	}
	if cfg.Store != nil && !contains(reg.StoreTypes(), cfg.Store.Type) {
		errs = append(errs, unsupported("store", cfg.Store.Type, reg.StoreTypes()))
	}
	for _, fc := range cfg.Features {
		if !contains(reg.ProcessorTypes(), fc.Type) {
			errs = append(errs, unsupported("feature", fc.Type, reg.ProcessorTypes()))
		}
	}
	return errors.Join(errs...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func registerBuiltins(r *Registry) {
	// 远程模型服务
	r.RegisterModel(string(service.ServiceTypeMLflow), buildServiceModel(service.ServiceTypeMLflow))
	r.RegisterModel(string(service.ServiceTypeKServe), buildServiceModel(service.ServiceTypeKServe))
	r.RegisterModel(string(service.ServiceTypeTFServing), buildServiceModel(service.ServiceTypeTFServing))
	r.RegisterModel(string(service.ServiceTypeTorchServe), buildServiceModel(service.ServiceTypeTorchServe))

	// 本地模型
	r.RegisterModel("rpc", buildRPCModel)
	r.RegisterModel("linear", buildLinearModel)
	r.RegisterModel("mlp", buildMLPModel)

	// 存储
	r.RegisterStore("memory", buildMemoryStore)
	r.RegisterStore("redis", buildRedisStore)
	r.RegisterStore("sqlite", buildSQLiteStore)
	r.RegisterStore("kafka", buildKafkaStore)

	// 来源
	r.RegisterSource("feast", buildFeastSource)

	// 特征处理
	r.RegisterProcessor("missing", buildMissingProcessor)
	r.RegisterProcessor("zscore", buildZScoreProcessor)
	r.RegisterProcessor("minmax", buildMinMaxProcessor)
	r.RegisterProcessor("log1p", buildLogProcessor)
	r.RegisterProcessor("select", buildSelectProcessor)
}

// configString 取字符串配置，兼容 YAML 中被解析为数字的值（如 model_version: 1）
func configString(cfg map[string]any, key, defaultVal string) string {
	if s, ok := conv.ToString(cfg[key]); ok && s != "" {
		return s
	}
	return defaultVal
}

func configMap(cfg map[string]any, key string) map[string]any {
	return conv.ConfigGet[map[string]any](cfg, key, nil)
}

func buildServiceModel(t service.ServiceType) ModelBuilder {
	return func(cfg map[string]any) (core.Model, error) {
		sc := &service.ServiceConfig{
			Type:         t,
			Endpoint:     configString(cfg, "endpoint", ""),
			ModelName:    configString(cfg, "model_name", ""),
			ModelVersion: configString(cfg, "model_version", ""),
			Timeout:      int(conv.ConfigGetInt64(cfg, "timeout", 0)),
			Protocol:     configString(cfg, "protocol", ""),
			InputFormat:  service.InputFormat(configString(cfg, "input_format", "")),
			Params:       configMap(cfg, "params"),
		}
		if auth := configMap(cfg, "auth"); auth != nil {
			sc.Auth = &service.AuthConfig{
				Type:     configString(auth, "type", ""),
				Username: configString(auth, "username", ""),
				Password: configString(auth, "password", ""),
				Token:    configString(auth, "token", ""),
				APIKey:   configString(auth, "api_key", ""),
			}
		}
		m, err := service.NewModel(sc)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

func buildRPCModel(cfg map[string]any) (core.Model, error) {
	endpoint := configString(cfg, "endpoint", "")
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint not found")
	}
	timeout := 5 * time.Second
	if sec := conv.ConfigGetInt64(cfg, "timeout", 5); sec > 0 {
		timeout = time.Duration(sec) * time.Second
	}
	return model.NewRPCModel(configString(cfg, "name", "rpc"), endpoint, timeout), nil
}

func buildLinearModel(cfg map[string]any) (core.Model, error) {
	if path := configString(cfg, "path", ""); path != "" {
		m, err := model.LoadLinearModel(path)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	weights := configMap(cfg, "weights")
	if weights == nil {
		return nil, fmt.Errorf("weights or path not found")
	}
	return &model.LinearModel{
		ModelName: configString(cfg, "name", ""),
		Bias:      conv.ConfigGetFloat64(cfg, "bias", 0),
		Weights:   conv.MapToFloat64(weights),
	}, nil
}

func buildMLPModel(cfg map[string]any) (core.Model, error) {
	path := configString(cfg, "path", "")
	if path == "" {
		return nil, fmt.Errorf("path not found")
	}
	m, err := model.LoadMLPModel(path)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func buildMemoryStore(cfg map[string]any) (core.ScoreStore, error) {
	return store.NewMemoryStore(), nil
}

func buildRedisStore(cfg map[string]any) (core.ScoreStore, error) {
	s, err := store.NewRedisStore(
		configString(cfg, "addr", "localhost:6379"),
		int(conv.ConfigGetInt64(cfg, "db", 0)),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func buildSQLiteStore(cfg map[string]any) (core.ScoreStore, error) {
	s, err := store.NewSQLStore(configString(cfg, "dsn", ""))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func buildKafkaStore(cfg map[string]any) (core.ScoreStore, error) {
	brokers := conv.SliceAnyToString(cfg["brokers"])
	if len(brokers) == 0 {
		if b := configString(cfg, "brokers", ""); b != "" {
			brokers = []string{b}
		}
	}
	s, err := store.NewKafkaStore(store.KafkaConfig{
		Brokers:      brokers,
		Topic:        configString(cfg, "topic", ""),
		ClientID:     configString(cfg, "client_id", ""),
		RequiredAcks: int16(conv.ConfigGetInt64(cfg, "acks", 1)),
		Compression:  configString(cfg, "compression", ""),
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func buildFeastSource(cfg map[string]any) (core.FrameSource, error) {
	src := &feast.Source{
		EntityKey:  configString(cfg, "entity_key", ""),
		EntityType: feast.EntityType(configString(cfg, "entity_type", string(feast.EntityString))),
		Features:   conv.SliceAnyToString(cfg["features"]),
		Project:    configString(cfg, "project", ""),
	}
	if src.EntityKey == "" {
		return nil, fmt.Errorf("entity_key not found")
	}
	if len(src.Features) == 0 {
		return nil, fmt.Errorf("features not found")
	}
	if cols := configMap(cfg, "columns"); cols != nil {
		src.Columns = make(map[string]string, len(cols))
		for k, v := range cols {
			if s, ok := conv.ToString(v); ok {
				src.Columns[k] = s
			}
		}
	}

	host, port := feast.ParseEndpoint(configString(cfg, "endpoint", "localhost"))
	var opts []feast.ClientOption
	if sec := conv.ConfigGetInt64(cfg, "timeout", 0); sec > 0 {
		opts = append(opts, feast.WithTimeout(time.Duration(sec)*time.Second))
	}
	if token := configString(cfg, "token", ""); token != "" {
		opts = append(opts, feast.WithAuth(&feast.AuthConfig{
			Type:  "static",
			Token: token,
			TLS:   conv.ConfigGet(cfg, "tls", false),
		}))
	}
	client, err := feast.NewGrpcClient(host, port, src.Project, opts...)
	if err != nil {
		return nil, err
	}
	src.Client = client
	return src, nil
}

func buildMissingProcessor(cfg map[string]any) (feature.Processor, error) {
	h := feature.NewMissingValueHandler(
		configString(cfg, "strategy", feature.StrategyConstant),
		conv.ConfigGetFloat64(cfg, "default", 0),
	)
	if defaults := configMap(cfg, "defaults"); defaults != nil {
		h.WithDefaultValues(conv.MapToFloat64(defaults))
	}
	h.WithRequired(conv.SliceAnyToString(cfg["required"]))
	return h, nil
}

func buildZScoreProcessor(cfg map[string]any) (feature.Processor, error) {
	mean, std := configMap(cfg, "mean"), configMap(cfg, "std")
	if std == nil {
		return nil, fmt.Errorf("std not found")
	}
	return feature.NewZScoreNormalizer(conv.MapToFloat64(mean), conv.MapToFloat64(std)), nil
}

func buildMinMaxProcessor(cfg map[string]any) (feature.Processor, error) {
	lo, hi := configMap(cfg, "min"), configMap(cfg, "max")
	if lo == nil || hi == nil {
		return nil, fmt.Errorf("min and max not found")
	}
	return feature.NewMinMaxNormalizer(conv.MapToFloat64(lo), conv.MapToFloat64(hi)), nil
}

func buildLogProcessor(cfg map[string]any) (feature.Processor, error) {
	return &feature.LogNormalizer{Columns: conv.SliceAnyToString(cfg["columns"])}, nil
}

func buildSelectProcessor(cfg map[string]any) (feature.Processor, error) {
	s := feature.NewFeatureSelector(conv.SliceAnyToString(cfg["columns"]))
	s.WithExcludedFeatures(conv.SliceAnyToString(cfg["exclude"]))
	if len(s.Selected) == 0 && len(s.Excluded) == 0 {
		return nil, fmt.Errorf("columns or exclude not found")
	}
	return s, nil
}
