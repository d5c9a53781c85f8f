package dbbadger

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	"github.com/vulpemventures/cardano-coinselect/internal/core/ports"
)

// repoManager holds all the badgerhold stores and domain repositories
// implementations in a single data structure.
type repoManager struct {
	spentUtxoRepository *spentUtxoRepository

	spentUtxoEventHandlers *handlerMap
}

// NewRepoManager is the factory for creating a new badger implementation
// of the ports.RepoManager interface.
// It takes care of creating the db files on disk (or in-memory if no baseDbDir
// is provided - to be used only for testing purposes), and opening and closing
// the connection to them.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var spentUtxoDir string
	if len(baseDbDir) > 0 {
		spentUtxoDir = filepath.Join(baseDbDir, "spent-utxos")
	}

	spentUtxoDb, err := createDb(spentUtxoDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening spent utxo db: %w", err)
	}

	rm := &repoManager{
		spentUtxoRepository:    newSpentUtxoRepository(spentUtxoDb),
		spentUtxoEventHandlers: newHandlerMap(),
	}

	go rm.listenToSpentUtxoEvents()

	return rm, nil
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

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			for {
				<-ticker.C
				if err := db.Badger().RunValueLogGC(0.5); err != nil && err != badger.ErrNoRewrite {
					log.Warnf("garbage collector: %s", err)
				}
			}
		}()
	}

	return db, nil
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
