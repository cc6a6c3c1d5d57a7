package providers

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/guided-traffic/chatcrypt/internal/monitoring"
	"github.com/guided-traffic/chatcrypt/pkg/encryption"
)

// Built-in plugin names. The set is closed: a new variant is added here and
// in NewRegistry, never discovered at runtime.
const (
	// PluginAESGCM is authenticated AES-256-GCM
	PluginAESGCM = "aes-gcm"

	// PluginRSA is RSA-OAEP with SHA-256
	PluginRSA = "rsa"
)

// SupportedPlugins returns the names of all built-in plugins
func SupportedPlugins() []string {
	return []string{PluginAESGCM, PluginRSA}
}

// NormalizeName trims and lower-cases a plugin name for lookup
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Registry selects plugins by name. It is immutable after construction and
// safe for concurrent use.
type Registry struct {
	plugins     map[string]encryption.Plugin
	defaultName string
	logger      *logrus.Entry
}

type registryConfig struct {
	defaultName   string
	metrics       bool
	pluginOptions []PluginOption
}

// RegistryOption configures a Registry
type RegistryOption func(*registryConfig)

// WithDefault selects the plugin returned by Default
func WithDefault(name string) RegistryOption {
	return func(c *registryConfig) {
		c.defaultName = name
	}
}

// WithMetrics wraps every plugin with Prometheus instrumentation
func WithMetrics() RegistryOption {
	return func(c *registryConfig) {
		c.metrics = true
	}
}

// WithPluginOptions passes options through to every built-in plugin
func WithPluginOptions(opts ...PluginOption) RegistryOption {
	return func(c *registryConfig) {
		c.pluginOptions = append(c.pluginOptions, opts...)
	}
}

// NewRegistry builds a registry holding every built-in plugin
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	cfg := &registryConfig{defaultName: PluginAESGCM}
	for _, opt := range opts {
		opt(cfg)
	}

	aesPlugin := NewAESGCMPlugin(cfg.pluginOptions...)
	rsaPlugin, err := NewRSAPlugin(cfg.pluginOptions...)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		plugins:     make(map[string]encryption.Plugin),
		defaultName: NormalizeName(cfg.defaultName),
		logger:      logrus.WithField("component", "plugin-registry"),
	}

	for _, p := range []encryption.Plugin{aesPlugin, rsaPlugin} {
		if cfg.metrics {
			p = Instrument(p)
		}
		r.plugins[p.Name()] = p
	}

	if _, ok := r.plugins[r.defaultName]; !ok {
		return nil, encryption.NewError("NewRegistry", encryption.ErrUnknownPlugin,
			"default plugin %q is not one of %s", cfg.defaultName, strings.Join(SupportedPlugins(), ", "))
	}

	for _, name := range r.Names() {
		p := r.plugins[name]
		if cfg.metrics {
			monitoring.SetPluginInfo(name, p.Algorithm().Name(), p.Version(), name == r.defaultName)
		}
		r.logger.WithFields(logrus.Fields{
			"plugin":     name,
			"algorithm":  p.Algorithm().Name(),
			"is_default": name == r.defaultName,
		}).Debug("Registered encryption plugin")
	}

	return r, nil
}

// Get returns the plugin registered under name
func (r *Registry) Get(name string) (encryption.Plugin, error) {
	p, ok := r.plugins[NormalizeName(name)]
	if !ok {
		return nil, encryption.NewError("Registry.Get", encryption.ErrUnknownPlugin,
			"plugin %q not found (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return p, nil
}

// Default returns the default plugin
func (r *Registry) Default() encryption.Plugin {
	return r.plugins[r.defaultName]
}

// DefaultName returns the name of the default plugin
func (r *Registry) DefaultName() string {
	return r.defaultName
}

// Names returns the registered plugin names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Asymmetric returns the plugin registered under name if it supports key pairs
func (r *Registry) Asymmetric(name string) (encryption.AsymmetricPlugin, error) {
	p, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	ap, ok := p.(encryption.AsymmetricPlugin)
	if !ok {
		return nil, encryption.NewError("Registry.Asymmetric", encryption.ErrInvalidArgument,
			"plugin %q does not generate key pairs", p.Name())
	}
	return ap, nil
}
