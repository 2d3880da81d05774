// Package redis persists component schemas in redis, keyed by namespace, so a
// world restarted against the same storage cannot silently change the shape
// of a registered component.
package redis

import (
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

type Storage struct {
	Namespace string
	Client    *redis.Client
	Log       zerolog.Logger
	SchemaStorage
}

type Options = redis.Options

func NewRedisStorage(options Options, namespace string) Storage {
	client := redis.NewClient(&options)
	return Storage{
		Namespace:     namespace,
		Client:        client,
		Log:           zerolog.New(os.Stdout),
		SchemaStorage: NewSchemaStorage(client, namespace),
	}
}

func (r *Storage) Close() error {
	if err := r.Client.Close(); err != nil {
		return eris.Wrap(err, "")
	}
	return nil
}
