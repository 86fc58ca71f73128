package component

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/binfile/errors"
)

// mockComponent implements the Discoverable interface for testing
type mockComponent struct {
	name   string
	config json.RawMessage
}

func (m *mockComponent) Meta() Metadata {
	return Metadata{Name: m.name, Type: "processor", Description: "Mock component for testing", Version: "1.0.0"}
}

func (m *mockComponent) InputPorts() []Port {
	return []Port{BuildPortFromDefinition(PortDefinition{Name: "in", Subject: "test.input"}, DirectionInput)}
}

func (m *mockComponent) OutputPorts() []Port { return nil }

func (m *mockComponent) ConfigSchema() ConfigSchema { return ConfigSchema{} }

func (m *mockComponent) Health() HealthStatus {
	return HealthStatus{Healthy: true, LastCheck: time.Now()}
}

func (m *mockComponent) DataFlow() FlowMetrics { return FlowMetrics{} }

func mockFactory(rawConfig json.RawMessage, _ Dependencies) (Discoverable, error) {
	return &mockComponent{name: "mock", config: rawConfig}, nil
}

func registerMock(t *testing.T, r *Registry) {
	t.Helper()
	require.NoError(t, r.RegisterWithConfig(RegistrationConfig{
		Name:        "mock",
		Factory:     mockFactory,
		Type:        "processor",
		Protocol:    "test",
		Domain:      "testing",
		Description: "mock factory",
		Version:     "1.0.0",
	}))
}

func TestRegistry_RegisterFactory(t *testing.T) {
	r := NewRegistry()
	registerMock(t, r)

	t.Run("duplicate", func(t *testing.T) {
		err := r.RegisterWithConfig(RegistrationConfig{Name: "mock", Factory: mockFactory, Type: "processor"})
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("missing factory", func(t *testing.T) {
		err := r.RegisterFactory("nofactory", &Registration{Type: "processor"})
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})

	t.Run("missing type", func(t *testing.T) {
		err := r.RegisterFactory("notype", &Registration{Factory: mockFactory})
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})

	available := r.ListAvailable()
	require.Contains(t, available, "mock")
	assert.Equal(t, "processor", available["mock"].Type)
	assert.Equal(t, "1.0.0", available["mock"].Version)

	_, ok := r.GetFactory("mock")
	assert.True(t, ok)
	_, ok = r.GetFactory("absent")
	assert.False(t, ok)
}

func TestRegistry_CreateComponent(t *testing.T) {
	r := NewRegistry()
	registerMock(t, r)

	comp, err := r.CreateComponent("first", "mock", nil, Dependencies{})
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("{}"), comp.(*mockComponent).config)
	assert.Same(t, comp, r.Component("first"))

	_, err = r.CreateComponent("first", "mock", json.RawMessage(`{}`), Dependencies{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	_, err = r.CreateComponent("second", "absent", nil, Dependencies{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown component factory")

	_, err = r.CreateComponent("bad name!", "mock", nil, Dependencies{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid characters")

	assert.Equal(t, []string{"first"}, r.InstanceNames())
	r.UnregisterInstance("first")
	assert.Nil(t, r.Component("first"))
	assert.Empty(t, r.ListComponents())
}

func TestValidateComponentName(t *testing.T) {
	assert.NoError(t, ValidateComponentName("write_binary_file-1.v2"))
	assert.Error(t, ValidateComponentName(""))
	assert.Error(t, ValidateComponentName("a/b"))
	assert.Error(t, ValidateComponentName(string(make([]byte, 129))))
}

func TestBuildPortFromDefinition(t *testing.T) {
	port := BuildPortFromDefinition(PortDefinition{
		Name:      "in",
		Subject:   "docs.>",
		Queue:     "workers",
		Interface: "xml.document",
		Required:  true,
	}, DirectionInput)

	assert.Equal(t, DirectionInput, port.Direction)
	assert.True(t, port.Required)
	natsPort, ok := port.Config.(NATSPort)
	require.True(t, ok)
	assert.Equal(t, "nats:docs.>", natsPort.ResourceID())
	assert.Equal(t, "workers", natsPort.Queue)
	require.NotNil(t, natsPort.Interface)
	assert.Equal(t, "xml.document", natsPort.Interface.Type)
}

func TestSubjects(t *testing.T) {
	defs := []PortDefinition{
		{Name: "a", Subject: "one"},
		{Name: "b", Type: "nats", Subject: "two"},
		{Name: "c", Type: "jetstream", Subject: "three"},
		{Name: "d", Type: "nats"},
	}
	assert.Equal(t, []string{"one", "two"}, Subjects(defs))
}
