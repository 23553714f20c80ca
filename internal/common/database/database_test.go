package database

import (
	"context"
	"testing"

	"homelead-workers/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedis_PingAgainstMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
	assert.NotNil(t, client.GetClient())
}

func TestNewRedis_EmptyAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

func TestNewPostgres_OpensLazily(t *testing.T) {
	client, err := NewPostgres(config.PostgresConfig{
		Host: "localhost", Port: 5432, User: "u", Database: "d", SSLMode: "disable",
		MaxConnections: 2, MaxIdle: 1,
	})
	require.NoError(t, err)
	assert.NotNil(t, client.GetDB())
	assert.NoError(t, client.Close())
}

func TestNewMongo_EmptyURI(t *testing.T) {
	_, err := NewMongo(context.Background(), config.MongoConfig{})
	assert.Error(t, err)
}

func TestDialMongo_UnreachableReturnsNoClient(t *testing.T) {
	mc, err := DialMongo(context.Background(), config.MongoConfig{
		URI:            "mongodb://127.0.0.1:1/?directConnection=true",
		Database:       "homelead",
		ConnectTimeout: 100,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo ping failed")
	assert.Nil(t, mc)
}

func TestNewElasticsearch_FallsBackToURL(t *testing.T) {
	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: "http://localhost:9200"})
	require.NoError(t, err)
	assert.NotNil(t, client.Client)
}
