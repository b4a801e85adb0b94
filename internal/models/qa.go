package models

// QuestionAnswer is one compiled question/answer pair
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QAMapping maps code patterns to question/answer pairs while preserving
// key insertion order. Partial matching scans keys in insertion order and
// accepts the first hit, so iteration order is part of the contract.
type QAMapping struct {
	keys    []string
	entries map[string]QuestionAnswer
}

// NewQAMapping creates an empty mapping
func NewQAMapping() *QAMapping {
	return &QAMapping{
		entries: make(map[string]QuestionAnswer),
	}
}

// Put inserts a key. The first insertion of a key wins; later inserts of
// the same key are ignored so rebuilt rows cannot reorder earlier ones.
func (m *QAMapping) Put(key string, qa QuestionAnswer) {
	if _, exists := m.entries[key]; exists {
		return
	}
	m.keys = append(m.keys, key)
	m.entries[key] = qa
}

// Get looks up a key exactly
func (m *QAMapping) Get(key string) (QuestionAnswer, bool) {
	qa, ok := m.entries[key]
	return qa, ok
}

// Keys returns the keys in insertion order. Callers must not modify the
// returned slice.
func (m *QAMapping) Keys() []string {
	return m.keys
}

// Len returns the number of distinct keys
func (m *QAMapping) Len() int {
	return len(m.keys)
}
