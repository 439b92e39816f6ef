// Package module holds the module contract and port lookup; it sits below modkit so port types can import it freely
package module

import (
	"fmt"
	"reflect"

	phttp "paygate/internal/platform/net/http"
)

// Module mounts routes and exposes a port set other modules consume
type Module interface {
	Name() string
	MountRoutes(r phttp.Router)
	Ports() any
}

// PortsOf finds a T in m's ports: the port set itself, or an exported field of a port struct
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return zero, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range rv.NumField() {
		if !rv.Type().Field(i).IsExported() {
			continue
		}
		if v, ok := rv.Field(i).Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for bootstrap code; a missing port is a wiring bug
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic(fmt.Sprintf("module %s: no %s in ports", m.Name(), reflect.TypeFor[T]()))
	}
	return v
}
