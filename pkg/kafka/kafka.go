// Package kafka предоставляет публикацию сообщений в Kafka.
// Витрина использует его для событий жизненного цикла заказа.
package kafka

import "time"

// Config содержит настройки подключения к Kafka.
type Config struct {
	Brokers []string // Адреса брокеров
	Topic   string   // Топик по умолчанию
}

// Message — подготовленное сообщение для отправки.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
	Time    time.Time
}
