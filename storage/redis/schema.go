package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/Jonster5/raxis/component"
)

// Interface guard
var _ component.SchemaStorage = (*SchemaStorage)(nil)

type SchemaStorage struct {
	Client    *redis.Client
	namespace string
}

func NewSchemaStorage(client *redis.Client, namespace string) SchemaStorage {
	return SchemaStorage{
		Client:    client,
		namespace: namespace,
	}
}

func (r *SchemaStorage) schemaStorageKey() string {
	return fmt.Sprintf("%s:COMPONENT_NAME_TO_SCHEMA_DATA", r.namespace)
}

func (r *SchemaStorage) GetSchema(componentName string) ([]byte, error) {
	ctx := context.Background()
	schemaBytes, err := r.Client.HGet(ctx, r.schemaStorageKey(), componentName).Bytes()
	if eris.Is(err, redis.Nil) {
		return nil, eris.Wrap(component.ErrNoSchemaFound, componentName)
	} else if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return schemaBytes, nil
}

func (r *SchemaStorage) SetSchema(componentName string, schemaData []byte) error {
	ctx := context.Background()
	return eris.Wrap(r.Client.HSet(ctx, r.schemaStorageKey(), componentName, schemaData).Err(), "")
}
