package container

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"ragstack/internal/config"
	"ragstack/internal/services"
)

func TestContainerName(t *testing.T) {
	assert.Equal(t, "ragstack-weaviate", ContainerName("weaviate"))
}

func TestNewContainerService(t *testing.T) {
	svc := NewContainerService(config.ServiceDefinition{
		Name:  "weaviate",
		Kind:  config.ServiceKindContainer,
		Image: "semitechnologies/weaviate:1.24.4",
	})

	assert.Equal(t, "weaviate", svc.GetLabel())
	assert.Equal(t, services.TypeContainer, svc.GetType())
	assert.Equal(t, services.StateUnknown, svc.GetState())
	assert.Empty(t, svc.ContainerID())
}

func TestEndpoint(t *testing.T) {
	httpSvc := NewContainerService(config.ServiceDefinition{
		Name:      "api",
		Readiness: config.ProbeDefinition{URL: "http://localhost:8000/api/v1/ping"},
	})
	assert.Equal(t, "http://localhost:8000/api/v1/ping", httpSvc.Endpoint())

	tcpSvc := NewContainerService(config.ServiceDefinition{
		Name:      "postgres",
		Readiness: config.ProbeDefinition{Type: config.ProbeTypeTCP, Address: "localhost:5432"},
	})
	assert.Equal(t, "localhost:5432", tcpSvc.Endpoint())
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortID("0123456789abcdef0123"))
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "", shortID(""))
}

func TestEnvMapToSlice(t *testing.T) {
	assert.Nil(t, envMapToSlice(nil))
	assert.Nil(t, envMapToSlice(map[string]string{}))

	got := envMapToSlice(map[string]string{
		"WEAVIATE_URL":   "http://host.docker.internal:8080",
		"OPENAI_API_KEY": "sk-test",
	})
	sort.Strings(got)
	assert.Equal(t, []string{
		"OPENAI_API_KEY=sk-test",
		"WEAVIATE_URL=http://host.docker.internal:8080",
	}, got)
}
