package module

import "paygate/internal/services/api/entities/domain"

// Ports is what the entities module exposes for cross wiring
type Ports struct {
	Entities domain.ServicePort
}
