package cmis

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// CallContext carries the caller's identity and per-call options into every
// repository operation.
type CallContext struct {
	// Context bounds blocking work. Nil means context.Background().
	Context context.Context

	// RequestID correlates log lines and metrics of a single call
	RequestID string

	Username string
	Password string

	// Version selects the property set emitted for objects
	Version Version

	// ObjectInfoRequired asks the repository to populate ObjectInfos
	ObjectInfoRequired bool

	// ObjectInfos receives object summaries when ObjectInfoRequired is set
	ObjectInfos ObjectInfoHandler
}

// NewCallContext builds a call context for username with a fresh request id.
func NewCallContext(ctx context.Context, username, password string) *CallContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &CallContext{
		Context:   ctx,
		RequestID: uuid.NewString(),
		Username:  username,
		Password:  password,
		Version:   Version11,
	}
}

// Ctx returns the context to use for blocking work.
func (c *CallContext) Ctx() context.Context {
	if c == nil || c.Context == nil {
		return context.Background()
	}
	return c.Context
}

// AddObjectInfo forwards info to the handler when object infos are requested.
func (c *CallContext) AddObjectInfo(info *ObjectInfo) {
	if c == nil || !c.ObjectInfoRequired || c.ObjectInfos == nil {
		return
	}
	c.ObjectInfos.AddObjectInfo(info)
}

// ObjectInfoHandler collects object summaries produced during a call.
type ObjectInfoHandler interface {
	AddObjectInfo(info *ObjectInfo)
	GetObjectInfo(objectID string) *ObjectInfo
}

// ObjectInfoMap is an ObjectInfoHandler keyed by object id.
type ObjectInfoMap struct {
	mu    sync.Mutex
	infos map[string]*ObjectInfo
}

func NewObjectInfoMap() *ObjectInfoMap {
	return &ObjectInfoMap{infos: make(map[string]*ObjectInfo)}
}

func (m *ObjectInfoMap) AddObjectInfo(info *ObjectInfo) {
	if info == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos[info.ID] = info
}

func (m *ObjectInfoMap) GetObjectInfo(objectID string) *ObjectInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.infos[objectID]
}

func (m *ObjectInfoMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.infos)
}
