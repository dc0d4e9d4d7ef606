package config

// GetDefaultConfig returns the built-in stack definition: Weaviate, the
// answering API, and the web UI, in their required start order. User and
// project config files layer on top of this.
func GetDefaultConfig() StackConfig {
	return StackConfig{
		GlobalSettings: GlobalSettings{
			LogLevel:                "info",
			DefaultContainerRuntime: "docker",
		},
		Services: []ServiceDefinition{
			{
				Name:           "weaviate",
				Kind:           ServiceKindContainer,
				Enabled:        true,
				Image:          "semitechnologies/weaviate:1.24.4",
				ContainerPorts: []string{"8080:8080"},
				ContainerEnv: map[string]string{
					"QUERY_DEFAULTS_LIMIT":                    "25",
					"AUTHENTICATION_ANONYMOUS_ACCESS_ENABLED": "true",
					"PERSISTENCE_DATA_PATH":                   "/var/lib/weaviate",
					"DEFAULT_VECTORIZER_MODULE":               "none",
					"CLUSTER_HOSTNAME":                        "node1",
				},
				Readiness: ProbeDefinition{
					Type: ProbeTypeHTTP,
					URL:  "http://localhost:8080/v1/.well-known/ready",
				},
			},
			{
				Name:           "api",
				Kind:           ServiceKindContainer,
				Enabled:        true,
				Image:          "ragstack-api:latest",
				ContainerPorts: []string{"8000:8000"},
				ContainerEnv: map[string]string{
					"WEAVIATE_URL":   "http://host.docker.internal:8080",
					"OPENAI_API_KEY": "${OPENAI_API_KEY}",
				},
				Readiness: ProbeDefinition{
					Type: ProbeTypeHTTP,
					URL:  "http://localhost:8000/api/v1/ping",
				},
			},
			{
				Name:           "ui",
				Kind:           ServiceKindContainer,
				Enabled:        true,
				Image:          "ragstack-ui:latest",
				ContainerPorts: []string{"8501:8501"},
				ContainerEnv: map[string]string{
					"API_URL": "http://host.docker.internal:8000",
				},
				Readiness: ProbeDefinition{
					Type: ProbeTypeHTTP,
					URL:  "http://localhost:8501/",
				},
			},
		},
	}
}
