package services

import (
	"github.com/stretchr/testify/mock"

	"postpulse/pkg/contracts/events"
)

// MockDatasetEvents is a mock for the DatasetEvents interface
type MockDatasetEvents struct {
	mock.Mock
}

func (m *MockDatasetEvents) BroadcastDatasetLoaded(data events.DatasetLoadedData) {
	m.Called(data)
}

func (m *MockDatasetEvents) BroadcastDatasetExpired(data events.DatasetExpiredData) {
	m.Called(data)
}

// MockUploadArchive is a mock for the UploadArchive interface
type MockUploadArchive struct {
	mock.Mock
}

func (m *MockUploadArchive) Save(sessionID, sourceName string, data []byte) (string, error) {
	args := m.Called(sessionID, sourceName, data)
	return args.String(0), args.Error(1)
}
