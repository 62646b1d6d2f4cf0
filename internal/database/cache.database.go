package database

import (
	"fmt"

	"chartintel/config"

	"github.com/valkey-io/valkey-go"
)

// Valkey database indexes. Provider lookups live apart from anything else
// that may share the instance.
const (
	GENERAL_CACHE_INDEX = iota
	CLIENT_API_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		log.Warn("Cache address not configured, identity cache disabled")
		return nil
	}

	log.Info("Initializing cache database", "address", address, "port", port)

	client, err := valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    CLIENT_API_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create client api valkey client", err)
	}

	s.Cache = Cache{ClientAPI: client}
	return nil
}
