package postgresdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	"github.com/vulpemventures/cardano-coinselect/internal/core/ports"

	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	postgresDriver             = "pgx"
	insecureDataSourceTemplate = "postgresql://%s:%s@%s:%d/%s?sslmode=disable"
)

type repoManager struct {
	pgxPool *pgxpool.Pool

	spentUtxoRepository *spentUtxoRepositoryPg

	spentUtxoEventHandlers *handlerMap
}

func NewRepoManager(dbConfig DbConfig) (ports.RepoManager, error) {
	dataSource := insecureDataSourceStr(dbConfig)

	pgxPool, err := connect(dataSource)
	if err != nil {
		return nil, err
	}

	if err = migrateDb(dataSource, dbConfig.MigrationSourceURL); err != nil {
		pgxPool.Close()
		return nil, err
	}

	rm := &repoManager{
		pgxPool:                pgxPool,
		spentUtxoRepository:    newSpentUtxoRepositoryPgImpl(pgxPool),
		spentUtxoEventHandlers: newHandlerMap(),
	}

	go rm.listenToSpentUtxoEvents()

	return rm, nil
}

type DbConfig struct {
	DbUser             string
	DbPassword         string
	DbHost             string
	DbPort             int
	DbName             string
	MigrationSourceURL string
}

func (rm *repoManager) SpentUtxoRepository() domain.SpentUtxoRepository {
	return rm.spentUtxoRepository
}

func (rm *repoManager) RegisterHandlerForSpentUtxoEvent(
	eventType domain.SpentUtxoEventType, handler ports.SpentUtxoEventHandler,
) {
	rm.spentUtxoEventHandlers.set(int(eventType), handler)
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

func (rm *repoManager) Reset() {
	rm.spentUtxoRepository.reset(context.Background())
}

func (rm *repoManager) Close() {
	rm.spentUtxoRepository.close()

	rm.pgxPool.Close()
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

func connect(dataSource string) (*pgxpool.Pool, error) {
	return pgxpool.Connect(context.Background(), dataSource)
}

func migrateDb(dataSource, migrationSourceUrl string) error {
	pg := postgres.Postgres{}

	d, err := pg.Open(dataSource)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationSourceUrl,
		postgresDriver,
		d,
	)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

// insecureDataSourceStr converts database configuration params to connection string
func insecureDataSourceStr(dbConfig DbConfig) string {
	return fmt.Sprintf(
		insecureDataSourceTemplate,
		dbConfig.DbUser,
		dbConfig.DbPassword,
		dbConfig.DbHost,
		dbConfig.DbPort,
		dbConfig.DbName,
	)
}
