package inmemory

import (
	"sync"

	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	"github.com/vulpemventures/cardano-coinselect/internal/core/ports"
)

type repoManager struct {
	spentUtxoRepository *spentUtxoRepository

	spentUtxoEventHandlers *handlerMap
}

func NewRepoManager() ports.RepoManager {
	rm := &repoManager{
		spentUtxoRepository:    newSpentUtxoRepository(),
		spentUtxoEventHandlers: newHandlerMap(),
	}

	go rm.listenToSpentUtxoEvents()

	return rm
}

func (rm *repoManager) SpentUtxoRepository() domain.SpentUtxoRepository {
	return rm.spentUtxoRepository
}

func (rm *repoManager) RegisterHandlerForSpentUtxoEvent(
	eventType domain.SpentUtxoEventType, handler ports.SpentUtxoEventHandler,
) {
	rm.spentUtxoEventHandlers.set(int(eventType), handler)
}

func (rm *repoManager) Reset() {
	rm.spentUtxoRepository.reset()
}

func (rm *repoManager) Close() {
	rm.spentUtxoRepository.close()
}

func (rm *repoManager) listenToSpentUtxoEvents() {
	for event := range rm.spentUtxoRepository.chEvents {
		if handlers, ok := rm.spentUtxoEventHandlers.get(int(event.EventType)); ok {
			for i := range handlers {
				handler := handlers[i]
				go handler.(ports.SpentUtxoEventHandler)(event)
			}
		}
	}
}

// handlerMap is a util type to prevent race conditions when registering
// or retrieving handlers for events.
type handlerMap struct {
	handlersByEventType map[int][]interface{}
	lock                *sync.RWMutex
}

func newHandlerMap() *handlerMap {
	return &handlerMap{
		handlersByEventType: make(map[int][]interface{}),
		lock:                &sync.RWMutex{},
	}
}

func (m *handlerMap) set(key int, val interface{}) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.handlersByEventType[key] = append(m.handlersByEventType[key], val)
}

func (m *handlerMap) get(key int) ([]interface{}, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	val, ok := m.handlersByEventType[key]
	return val, ok
}
