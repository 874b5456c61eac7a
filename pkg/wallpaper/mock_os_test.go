package wallpaper

import "github.com/stretchr/testify/mock"

// MockOS is a mock implementation of the OS interface.
type MockOS struct {
	mock.Mock
}

func (m *MockOS) getDesktopDimension() (int, int, error) {
	args := m.Called()
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockOS) setWallpaper(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

// newMockOS returns a MockOS reporting a width x height desktop.
func newMockOS(width, height int) *MockOS {
	m := &MockOS{}
	m.On("getDesktopDimension").Return(width, height, nil)
	return m
}
