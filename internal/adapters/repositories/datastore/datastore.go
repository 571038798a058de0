package datastore

import (
	"strings"
	"sync"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/interfaces"
)

// keySep разделяет имя контроллера и имя тега в ключе
const keySep = "\x00"

// DataStore - потокобезопасное in-memory хранилище последних значений тегов
type DataStore struct {
	mu   sync.RWMutex
	data map[string]entities.TagValue
}

// NewDataStore создает новый экземпляр DataStore
func NewDataStore() interfaces.DataStoreRepository {
	return &DataStore{
		data: make(map[string]entities.TagValue),
	}
}

func key(endpoint, tagName string) string {
	return endpoint + keySep + tagName
}

// Set сохраняет последнее значение тега контроллера
func (ds *DataStore) Set(endpoint, tagName string, value entities.TagValue) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.data[key(endpoint, tagName)] = value
}

// Get извлекает последнее значение тега контроллера
func (ds *DataStore) Get(endpoint, tagName string) (entities.TagValue, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	value, found := ds.data[key(endpoint, tagName)]
	return value, found
}

// DeleteEndpoint удаляет все значения контроллера
func (ds *DataStore) DeleteEndpoint(endpoint string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	prefix := endpoint + keySep
	for k := range ds.data {
		if strings.HasPrefix(k, prefix) {
			delete(ds.data, k)
		}
	}
}
