package stagehand

import (
	"context"
	"errors"
)

// acquireWithLoading is acquire wrapped in the loading overlay when the open
// options ask for it.
func (m *Manager) acquireWithLoading(ctx context.Context, key string, o OpenOptions) (*entry, error) {
	if !o.ShowLoading || !m.loading.enabled {
		return m.acquire(ctx, key)
	}
	end := m.beginLoading(o.Layer)
	e, err := m.acquire(ctx, key)
	end(ctx)
	return e, err
}

// acquire returns the cache entry for key, instantiating it on a miss, and
// takes a hold on it so it cannot be evicted before the caller attaches it.
// The caller must call unhold.
func (m *Manager) acquire(ctx context.Context, key string) (*entry, error) {
	for {
		m.mu.Lock()
		if e, victim, ok := m.holdLocked(key); ok {
			m.mu.Unlock()
			m.destroyVictim(victim)
			return e, nil
		}
		m.pending[key]++
		m.mu.Unlock()

		_, err, shared := m.loads.Do(key, func() (any, error) {
			return nil, m.instantiate(ctx, key)
		})

		m.mu.Lock()
		if m.pending[key]--; m.pending[key] <= 0 {
			delete(m.pending, key)
		}
		if err != nil {
			m.mu.Unlock()
			return nil, err
		}
		// pending kept the fresh entry off the eviction list until now
		e, victim, ok := m.holdLocked(key)
		m.mu.Unlock()
		m.destroyVictim(victim)

		if shared {
			m.logger.Debug("Joined in-flight load", "key", key)
		}
		if ok {
			return e, nil
		}
		// closed with destroy before we got to it; load again
	}
}

// holdLocked takes a hold on key's cached entry and runs one eviction round.
// The caller passes the victim to destroyVictim once the lock is released.
func (m *Manager) holdLocked(key string) (e, victim *entry, ok bool) {
	e, ok = m.cache[key]
	if !ok {
		return nil, nil, false
	}
	e.holds++
	m.lru.Touch(key)
	return e, m.evictLocked(), true
}

func (m *Manager) destroyVictim(victim *entry) {
	if victim != nil {
		m.destroyEntry(victim)
	}
}

// unhold drops a hold taken by acquire. A view closed with destroy while it
// was held is closed and destroyed by its last holder.
func (m *Manager) unhold(e *entry) {
	m.mu.Lock()
	e.holds--
	finish := e.holds == 0 && e.doomed
	m.mu.Unlock()

	if finish {
		m.closeDetached(context.Background(), e.view, false)
		m.destroyEntry(e)
	}
}

// instantiate loads key's template and builds a cached, detached view. It
// runs at most once at a time per key.
func (m *Manager) instantiate(ctx context.Context, key string) error {
	m.mu.Lock()
	_, cached := m.cache[key]
	m.mu.Unlock()
	if cached {
		// another caller finished a load between our miss and this call
		return nil
	}

	reg, err := m.registry.Resolve(key)
	if err != nil {
		return NewLoadError("resolve", key, err)
	}

	// loads run to completion even if the first caller gives up
	tmpl, err := m.loader.Load(context.WithoutCancel(ctx), reg.TemplatePath)
	if err != nil {
		return NewLoadError("load", key, err)
	}

	node, err := tmpl.Instantiate()
	if err != nil {
		m.loader.Release(reg.TemplatePath, false)
		return NewLoadError("instantiate", key, err)
	}
	if node == nil {
		m.loader.Release(reg.TemplatePath, false)
		return NewLoadError("instantiate", key, errors.New("template produced no node"))
	}

	view := reg.Factory()
	if view == nil {
		node.Destroy()
		m.loader.Release(reg.TemplatePath, false)
		return NewLoadError("create", key, errors.New("factory returned nil view"))
	}

	if node.Name == "" {
		node.Name = key
	}
	node.SetActive(false)
	view.Base().bind(key, node)

	e := &entry{key: key, path: reg.TemplatePath, view: view, node: node}

	m.mu.Lock()
	m.cache[key] = e
	m.lru.Touch(key)
	victim := m.evictLocked()
	m.mu.Unlock()
	m.destroyVictim(victim)

	m.logger.Debug("View instantiated", "key", key, "id", view.Base().ID(), "template", reg.TemplatePath)
	return nil
}

// evictLocked drops the least recently used entry when the cache is over
// its limit and that entry is not in use. An entry in use blocks eviction
// for this round. The returned entry still needs destroyEntry.
func (m *Manager) evictLocked() *entry {
	if !m.enableLRU || m.maxSize <= 0 || m.lru.Len() <= m.maxSize {
		return nil
	}

	oldest, ok := m.lru.Oldest()
	if !ok {
		return nil
	}
	e, ok := m.cache[oldest]
	if !ok {
		m.lru.Remove(oldest)
		return nil
	}

	if m.inUseLocked(e) {
		m.logger.Debug("Eviction skipped, oldest view in use", "key", oldest, "size", m.lru.Len(), "max", m.maxSize)
		return nil
	}

	delete(m.cache, oldest)
	m.lru.Remove(oldest)
	m.logger.Debug("View evicted", "key", oldest)
	return e
}

// inUseLocked reports whether e is attached, about to be attached, or held
// by a group stack for later resume. Callers still waiting on the load that
// produced e count as about to attach it.
func (m *Manager) inUseLocked(e *entry) bool {
	if e.holds > 0 || m.pending[e.key] > 0 {
		return true
	}
	if _, onStack := m.groups.GroupOf(e.view); onStack {
		return true
	}
	return m.root.IsAttached(e.node)
}
