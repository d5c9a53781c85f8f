package ports

import (
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

type SpentUtxoEventHandler func(event domain.SpentUtxoEvent)

// RepoManager is the abstraction for any kind of service intended to manage
// domain repositories implementations of the same concrete type.
type RepoManager interface {
	// SpentUtxoRepository returns the spent utxo repository.
	SpentUtxoRepository() domain.SpentUtxoRepository

	// RegisterHandlerForSpentUtxoEvent registers an handler function,
	// executed whenever the given event type occurs.
	RegisterHandlerForSpentUtxoEvent(
		eventType domain.SpentUtxoEventType, handler SpentUtxoEventHandler,
	)

	// Reset brings all the repos to their initial state by deleting any
	// persisted data.
	Reset()

	// Close closes the connection with all concrete repositories
	// implementations.
	Close()
}
