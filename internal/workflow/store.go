// internal/workflow/store.go
package workflow

import "context"

// Store persists the whole workflow state of one client. Load returns the
// initial state when nothing has been saved.
type Store interface {
	Load(ctx context.Context, clientID string) (State, error)
	Save(ctx context.Context, clientID string, state State) error
	Delete(ctx context.Context, clientID string) error
}
