package config

import (
	"sort"
	"sync"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/feature"
)

// ModelBuilder 根据 config 构建模型
type ModelBuilder func(cfg map[string]any) (core.Model, error)

// StoreBuilder 根据 config 构建结果存储
type StoreBuilder func(cfg map[string]any) (core.ScoreStore, error)

// SourceBuilder 根据 config 构建输入来源
type SourceBuilder func(cfg map[string]any) (core.FrameSource, error)

// ProcessorBuilder 根据 config 构建特征处理器
type ProcessorBuilder func(cfg map[string]any) (feature.Processor, error)

// Registry 按类型名保存各组件的构建逻辑。
type Registry struct {
	mu      sync.RWMutex
	models  map[string]ModelBuilder
	stores  map[string]StoreBuilder
	sources map[string]SourceBuilder
	procs   map[string]ProcessorBuilder
}

// NewRegistry 返回空注册表
func NewRegistry() *Registry {
	return &Registry{
		models:  make(map[string]ModelBuilder),
		stores:  make(map[string]StoreBuilder),
		sources: make(map[string]SourceBuilder),
		procs:   make(map[string]ProcessorBuilder),
	}
}

// RegisterModel 注册模型类型
func (r *Registry) RegisterModel(typeName string, b ModelBuilder) {
	if typeName == "" || b == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[typeName] = b
}

// RegisterStore 注册存储类型
func (r *Registry) RegisterStore(typeName string, b StoreBuilder) {
	if typeName == "" || b == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[typeName] = b
}

// RegisterSource 注册来源类型
func (r *Registry) RegisterSource(typeName string, b SourceBuilder) {
	if typeName == "" || b == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[typeName] = b
}

// RegisterProcessor 注册特征处理器类型
func (r *Registry) RegisterProcessor(typeName string, b ProcessorBuilder) {
	if typeName == "" || b == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs[typeName] = b
}

// BuildModel 根据类型和配置构建模型
func (r *Registry) BuildModel(typeName string, cfg map[string]any) (core.Model, error) {
	r.mu.RLock()
	b, ok := r.models[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, unsupported("model", typeName, r.ModelTypes())
	}
	return b(cfg)
}

// BuildStore 根据类型和配置构建存储
func (r *Registry) BuildStore(typeName string, cfg map[string]any) (core.ScoreStore, error) {
	r.mu.RLock()
	b, ok := r.stores[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, unsupported("store", typeName, r.StoreTypes())
	}
	return b(cfg)
}

// BuildSource 根据类型和配置构建来源
func (r *Registry) BuildSource(typeName string, cfg map[string]any) (core.FrameSource, error) {
	r.mu.RLock()
	b, ok := r.sources[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, unsupported("source", typeName, r.SourceTypes())
	}
	return b(cfg)
}

// BuildProcessor 根据类型和配置构建特征处理器
func (r *Registry) BuildProcessor(typeName string, cfg map[string]any) (feature.Processor, error) {
	r.mu.RLock()
	b, ok := r.procs[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, unsupported("feature", typeName, r.ProcessorTypes())
	}
	return b(cfg)
}

// ModelTypes 返回已注册的模型类型（排序）
func (r *Registry) ModelTypes() []string { return sortedNames(&r.mu, r.models) }

// StoreTypes 返回已注册的存储类型（排序）
func (r *Registry) StoreTypes() []string { return sortedNames(&r.mu, r.stores) }

// SourceTypes 返回已注册的来源类型（排序）
func (r *Registry) SourceTypes() []string { return sortedNames(&r.mu, r.sources) }

// ProcessorTypes 返回已注册的特征处理器类型（排序）
func (r *Registry) ProcessorTypes() []string { return sortedNames(&r.mu, r.procs) }

func sortedNames[T any](mu *sync.RWMutex, m map[string]T) []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unsupported(kind, typeName string, supported []string) error {
	return core.Errorf(core.ModuleConfig, core.ErrorCodeNotSupported,
		"unsupported %s type %q (supported: %v)", kind, typeName, supported)
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry 返回包含所有内置组件的全局注册表。
// 自定义组件可通过 DefaultRegistry().RegisterModel(...) 等加入。
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		registerBuiltins(defaultRegistry)
	})
	return defaultRegistry
}
