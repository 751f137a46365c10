package connectors

import (
	"sync"
)

// Manager holds the connector per platform. Platforms without a configured
// connector are simply absent; callers skip them.
type Manager struct {
	mu         sync.RWMutex
	connectors map[string]Connector
}

func NewManager() *Manager {
	return &Manager{
		connectors: make(map[string]Connector),
	}
}

func (m *Manager) Register(platform string, c Connector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectors[platform] = c
}

// Get returns the connector for a platform, or nil when unconfigured.
func (m *Manager) Get(platform string) Connector {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connectors[platform]
}

// Platforms lists the configured platform names.
func (m *Manager) Platforms() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.connectors))
	for platform := range m.connectors {
		out = append(out, platform)
	}
	return out
}
