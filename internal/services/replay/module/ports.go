package module

import "paygate/internal/services/replay/domain"

// Ports is what the replay module exposes for cross wiring
type Ports struct {
	Guard   domain.GuardPort
	Sweeper domain.SweeperPort
	Schema  domain.SchemaPort
}
