package module

import "paygate/internal/services/indexer/domain"

// Ports defines indexer module ports
type Ports struct {
	Indexer domain.IndexerPort
	Schema  domain.SchemaPort
}
