package interfaces

import "github.com/chuhuyvt/FS-Project/internal/domain/entities"

// Repository - это агрегирующий интерфейс для всех репозиториев
type Repository interface {
	DataStoreRepository
}

// DataStoreRepository определяет контракт хранилища последних значений тегов,
// ключ - пара (контроллер, тег)
type DataStoreRepository interface {
	Set(endpoint, tagName string, value entities.TagValue)
	Get(endpoint, tagName string) (entities.TagValue, bool)
	DeleteEndpoint(endpoint string)
}
