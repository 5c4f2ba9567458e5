package apperr

import "errors"

// Базовые ошибки доменной логики. Сервисы заворачивают их через fmt.Errorf("%s: %w"),
// хендлеры сопоставляют с HTTP статусами через errors.Is.
var (
	// ErrNotFound : комната или сущность не существует (или уже удалена)
	ErrNotFound = errors.New("не найдено")

	// ErrForbidden : у пользователя нет нужного уровня доступа
	ErrForbidden = errors.New("доступ запрещён")

	// ErrSelfDemotion : попытка понизить доступ создателя комнаты
	ErrSelfDemotion = errors.New("нельзя понизить доступ создателя комнаты")

	// ErrSelfRemoval : попытка удалить создателя из его же комнаты
	ErrSelfRemoval = errors.New("нельзя удалить создателя из комнаты")

	// ErrDelivery : ошибка доставки broadcast/notification. Логируется и
	// проглатывается: мутация матрицы уже закоммичена и не откатывается.
	ErrDelivery = errors.New("ошибка доставки события")
)
