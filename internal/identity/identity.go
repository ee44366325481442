// Package identity carries the opaque actor resolved by the session
// collaborator. The engine never reads ambient session state; every operation
// receives an Actor explicitly.
package identity

import "context"

// Actor identifies the caller of an engine operation. ID is opaque to the
// engine; Admin marks the administrative override the permission collaborator
// granted.
type Actor struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre,omitempty"`
	Admin  bool   `json:"admin,omitempty"`
}

// Zero reports whether no actor was resolved.
func (a Actor) Zero() bool {
	return a.ID == ""
}

// Permissions answers cross-cutting authorization questions the ownership
// guards cannot: "can this actor perform this action on this module".
type Permissions interface {
	Can(ctx context.Context, actor Actor, modulo, accion string) bool
}

// AllowAll grants everything. It stands in until a real permission
// collaborator is wired at the HTTP boundary.
type AllowAll struct{}

// Can always reports true.
func (AllowAll) Can(context.Context, Actor, string, string) bool { return true }
