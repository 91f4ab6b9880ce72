// Package domain содержит бизнес-сущности и доменные ошибки витрины.
package domain

import "errors"

// Доменные ошибки жизненного цикла заказа.
// Передают бизнес-ошибки между слоями; HTTP коды назначает handler.
var (
	// ErrOrderNotFound возвращается, когда заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("заказ не найден")

	// ErrEmptyCart возвращается при попытке оформить заказ без позиций.
	ErrEmptyCart = errors.New("корзина пуста: заказ должен содержать хотя бы одну позицию")

	// ErrInvalidAddress возвращается при пустом поле адреса доставки.
	ErrInvalidAddress = errors.New("все поля адреса доставки обязательны")

	// ErrInvalidUserID возвращается при пустом идентификаторе пользователя.
	ErrInvalidUserID = errors.New("некорректный идентификатор пользователя")

	// ErrInvalidProductRef возвращается при пустой ссылке на товар в позиции.
	ErrInvalidProductRef = errors.New("позиция заказа должна ссылаться на товар")

	// ErrInvalidProductName возвращается при пустом названии товара.
	ErrInvalidProductName = errors.New("название товара не может быть пустым")

	// ErrInvalidQuantity возвращается, когда количество меньше единицы.
	ErrInvalidQuantity = errors.New("количество должно быть не меньше единицы")

	// ErrInvalidPrice возвращается при отрицательной цене позиции.
	ErrInvalidPrice = errors.New("цена не может быть отрицательной")

	// ErrInvalidPaymentMethod возвращается при пустом методе оплаты.
	ErrInvalidPaymentMethod = errors.New("метод оплаты обязателен")

	// ErrForbidden возвращается, когда запрашивающий не имеет доступа к заказу.
	ErrForbidden = errors.New("доступ к заказу запрещён")

	// ErrAlreadyPaid возвращается при повторной попытке оплатить заказ.
	ErrAlreadyPaid = errors.New("заказ уже оплачен")

	// ErrPaymentInProgress возвращается, когда оплата заказа уже выполняется
	// конкурентным запросом.
	ErrPaymentInProgress = errors.New("оплата заказа уже выполняется")

	// ErrAlreadyDelivered возвращается при повторной попытке отметить доставку.
	ErrAlreadyDelivered = errors.New("заказ уже доставлен")

	// ErrOrderNotPaid возвращается при попытке отметить доставку неоплаченного заказа.
	ErrOrderNotPaid = errors.New("заказ не оплачен: доставка невозможна")

	// ErrInvalidConfirmation возвращается при неполном платёжном подтверждении.
	ErrInvalidConfirmation = errors.New("платёжное подтверждение не содержит обязательных полей")

	// ErrPaymentNotCompleted возвращается, когда статус платежа отличен от COMPLETED.
	ErrPaymentNotCompleted = errors.New("платёж не завершён провайдером")

	// ErrAmountMismatch возвращается при расхождении суммы платежа с суммой заказа.
	ErrAmountMismatch = errors.New("сумма платежа не совпадает с суммой заказа")

	// ErrCurrencyMismatch возвращается при расхождении валюты платежа.
	ErrCurrencyMismatch = errors.New("валюта платежа не совпадает с валютой заказа")

	// ErrStoreUnavailable возвращается при временной недоступности хранилища.
	// Безопасно повторять с backoff.
	ErrStoreUnavailable = errors.New("хранилище заказов временно недоступно")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса заказа.
	ErrInvalidTransition = errors.New("недопустимый переход статуса заказа")
)
