// Package modkit wires API modules: shared deps in, routes and ports out
package modkit

import "paygate/internal/modkit/module"

// Module is the contract every API module satisfies
type Module = module.Module
