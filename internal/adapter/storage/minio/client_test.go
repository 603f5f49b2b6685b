package minio

import (
	"context"
	"testing"

	appconfig "github.com/GoArmGo/geeklib/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", endpointURL(appconfig.MinioConfig{Endpoint: "localhost:9000"}))
	assert.Equal(t, "https://s3.local", endpointURL(appconfig.MinioConfig{Endpoint: "s3.local", UseSSL: true}))
}

func TestObjectURL(t *testing.T) {
	c := &Client{bucketName: "library-events", baseURL: "http://localhost:9000"}
	assert.Equal(t,
		"http://localhost:9000/library-events/library-events/2024/05/01/e-1.json",
		c.ObjectURL("library-events/2024/05/01/e-1.json"),
	)
}

func TestNewMinioClient_RequiresSettings(t *testing.T) {
	_, err := NewMinioClient(context.Background(), appconfig.MinioConfig{Endpoint: "localhost:9000"}, nil)
	assert.Error(t, err)
}
