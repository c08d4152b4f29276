package pdf

import "context"

// MockExtractor is a test double for TextExtractor.
// It allows custom behavior injection via a function field.
type MockExtractor struct {
	// ExtractTextFunc is called by ExtractText if set.
	// If nil, the raw bytes are returned as text with a one-page info.
	ExtractTextFunc func(ctx context.Context, data []byte) (string, DocumentInfo, error)

	callCount int
}

var _ TextExtractor = (*MockExtractor)(nil)

// NewMockExtractor creates a mock extractor that echoes its input bytes as text.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// ExtractText returns the injected behavior or echoes the input.
func (m *MockExtractor) ExtractText(ctx context.Context, data []byte) (string, DocumentInfo, error) {
	m.callCount++
	if m.ExtractTextFunc != nil {
		return m.ExtractTextFunc(ctx, data)
	}
	return string(data), DocumentInfo{Title: "mock document", PageCount: 1}, nil
}

// CallCount returns the number of times ExtractText was called.
func (m *MockExtractor) CallCount() int {
	return m.callCount
}
