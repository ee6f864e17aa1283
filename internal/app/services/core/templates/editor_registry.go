package templates

import "sync"

// EditorRegistry keeps the open editor sessions of this process, at most one per template.
type EditorRegistry struct {
	mu         sync.RWMutex
	sessions   map[string]*EditorSession
	byTemplate map[string]string
}

func NewEditorRegistry() *EditorRegistry {
	return &EditorRegistry{
		sessions:   make(map[string]*EditorSession),
		byTemplate: make(map[string]string),
	}
}

// Put registers session and returns the session it replaced for the same
// template, if any. The replaced session is not closed here.
func (r *EditorRegistry) Put(session *EditorSession) *EditorSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	var replaced *EditorSession
	if previousID, ok := r.byTemplate[session.TemplateID]; ok && previousID != session.ID {
		replaced = r.sessions[previousID]
		delete(r.sessions, previousID)
	}

	r.sessions[session.ID] = session
	r.byTemplate[session.TemplateID] = session.ID
	return replaced
}

func (r *EditorRegistry) Get(sessionID string) (*EditorSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	return session, ok
}

func (r *EditorRegistry) Remove(sessionID string) (*EditorSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, false
	}

	delete(r.sessions, sessionID)
	if r.byTemplate[session.TemplateID] == sessionID {
		delete(r.byTemplate, session.TemplateID)
	}
	return session, true
}

// CloseAll closes and forgets every session.
func (r *EditorRegistry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*EditorSession)
	r.byTemplate = make(map[string]string)
	r.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

func (r *EditorRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
