package internal

import (
	"errors"
	"time"
)

// TestConfig описывает параметры теста для клиента и сервера.
type TestConfig struct {
	Mode         string        // Режим работы: server | client | test
	Addr         string        // Адрес для подключения или прослушивания
	Streams      int           // Количество потоков на соединение
	Connections  int           // Количество соединений
	Duration     time.Duration // Длительность теста
	PacketSize   int           // Размер пакета (байт)
	Rate         int           // Частота отправки пакетов (в секунду)
	ReportPath   string        // Путь к файлу для отчёта
	ReportFormat string        // Формат отчёта: csv | md | json
	CertPath     string        // Путь к TLS-сертификату
	KeyPath      string        // Путь к TLS-ключу
	Pattern      string        // Шаблон данных: random | zeroes | increment
	NoTLS        bool          // Отключить TLS
	Prometheus   bool          // Экспортировать метрики Prometheus

	// --- Эмуляция плохих сетей ---
	EmulateLoss    float64        // вероятность потери пакета (0..1)
	EmulateLatency time.Duration  // дополнительная задержка
	EmulateDup     float64        // вероятность дублирования пакета (0..1)

	// --- Профилирование и мониторинг ---
	PprofAddr string // Адрес для pprof (например, :6060)

	// --- SLA проверки ---
	SlaRttP95     time.Duration // SLA: максимальный RTT p95
	SlaLoss       float64       // SLA: максимальная потеря пакетов
	SlaThroughput float64       // SLA: минимальная пропускная способность (KB/s)
	SlaErrors     int64         // SLA: максимальное количество ошибок

	// --- QUIC тюнинг ---
	CongestionControl     string        // Алгоритм управления перегрузкой: cubic, bbr, bbrv2, bbrv3, reno
	MaxIdleTimeout        time.Duration // Максимальное время простоя соединения
	HandshakeTimeout      time.Duration // Таймаут handshake
	KeepAlive             time.Duration // Интервал keep-alive
	MaxStreams            int64         // Максимальное количество потоков
	MaxStreamData         int64         // Максимальный размер данных потока
	Enable0RTT            bool          // Включить 0-RTT
	EnableKeyUpdate       bool          // Включить key update
	EnableDatagrams       bool          // Включить datagrams
	MaxIncomingStreams    int64         // Максимальное количество входящих потоков
	MaxIncomingUniStreams int64         // Максимальное количество входящих unidirectional потоков

	// --- FEC ---
	FECEnabled    bool    // Включить Forward Error Correction
	FECRedundancy float64 // Уровень избыточности FEC

	// --- PQC ---
	PQCEnabled   bool   // Включить Post-Quantum Cryptography (симуляция)
	PQCAlgorithm string // PQC алгоритм

	// --- Live dashboard ---
	Dashboard     bool   // Включить live HTTP/SSE дашборд с метриками congestion control
	DashboardAddr string // Адрес live-дашборда
}

// Validate требует положительных Connections/Streams/PacketSize/Rate, алгоритма
// из списка CongestionControl (или пустой строки) и неотрицательных QUIC-таймаутов и лимитов.
func (c TestConfig) Validate() error {
	validCC := map[string]bool{"": true, "cubic": true, "bbr": true, "bbrv2": true, "bbrv3": true, "reno": true}
	if c.Connections <= 0 || c.Streams <= 0 || c.PacketSize <= 0 || c.Rate <= 0 || !validCC[c.CongestionControl] ||
		c.MaxIdleTimeout < 0 || c.HandshakeTimeout < 0 || c.KeepAlive < 0 || c.MaxStreams < 0 ||
		c.MaxStreamData < 0 || c.MaxIncomingStreams < 0 || c.MaxIncomingUniStreams < 0 {
		return errors.New("некорректная конфигурация теста")
	}
	return nil
}