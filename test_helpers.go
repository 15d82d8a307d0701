package main

import (
	"io"
	"log/slog"
)

// memoryKV is an in-memory KeyValue for tests
type memoryKV struct {
	data map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string]string)}
}

func (m *memoryKV) Get(key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Set(key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(key string) error {
	delete(m.data, key)
	return nil
}

// newTestLogger returns a logger that discards everything
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestTabManager returns a tab manager over a fresh in-memory store
func newTestTabManager() *TabManager {
	return NewTabManager(newMemoryKV(), newTestLogger())
}
