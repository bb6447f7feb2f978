package experimental

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrorTestingSuite комплексная система тестирования на ошибки
type ErrorTestingSuite struct {
	logger     *zap.Logger
	config     *ErrorTestingConfig
	mu         sync.RWMutex
	isActive   bool
	results    *ErrorTestingResults
	scenarios  map[string]*ErrorScenario
}

// ErrorTestingConfig конфигурация тестирования на ошибки
type ErrorTestingConfig struct {
	// Базовые настройки
	Duration        time.Duration `json:"duration"`
	ConcurrentTests int           `json:"concurrent_tests"`
	RandomSeed      int64         `json:"random_seed"`
	
	// Типы ошибок для тестирования
	NetworkErrors     bool    `json:"network_errors"`
	PacketLoss        float64 `json:"packet_loss"`        // 0.0 - 1.0
	PacketDuplication float64 `json:"packet_duplication"` // 0.0 - 1.0
	PacketReordering  bool    `json:"packet_reordering"`
	PacketCorruption  float64 `json:"packet_corruption"`  // 0.0 - 1.0
	
	// Задержки и джиттер
	LatencyVariation  time.Duration `json:"latency_variation"`
	JitterVariation   time.Duration `json:"jitter_variation"`
	ConnectionDrops   bool          `json:"connection_drops"`
	
	// QUIC специфичные ошибки
	QUICErrors        bool    `json:"quic_errors"`
	StreamErrors      bool    `json:"stream_errors"`
	HandshakeErrors   bool    `json:"handshake_errors"`
	VersionErrors     bool    `json:"version_errors"`
	
	// Экспериментальные ошибки
	ACKFrequencyErrors bool `json:"ack_frequency_errors"`
	CCErrors          bool `json:"cc_errors"`
	MultipathErrors   bool `json:"multipath_errors"`
	FECErrors         bool `json:"fec_errors"`
}

// ErrorScenario сценарий тестирования ошибок
type ErrorScenario struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Config      *ErrorTestingConfig    `json:"config"`
	Duration    time.Duration          `json:"duration"`
	Expected    *ExpectedErrorResults  `json:"expected"`
}

// ExpectedErrorResults ожидаемые результаты при ошибках
type ExpectedErrorResults struct {
	MaxErrorRate     float64       `json:"max_error_rate"`
	MinRecoveryTime  time.Duration `json:"min_recovery_time"`
	MaxLatency       time.Duration `json:"max_latency"`
	MinThroughput    float64       `json:"min_throughput_mbps"`
	MaxPacketLoss    float64       `json:"max_packet_loss"`
}

// ErrorTestingResults результаты тестирования на ошибки
type ErrorTestingResults struct {
	StartTime        time.Time                    `json:"start_time"`
	EndTime          time.Time                    `json:"end_time"`
	Duration         time.Duration                `json:"duration"`
	TotalTests       int                          `json:"total_tests"`
	PassedTests      int                          `json:"passed_tests"`
	FailedTests      int                          `json:"failed_tests"`
	SuccessRate      float64                     `json:"success_rate"`
	ErrorBreakdown   map[string]*ErrorBreakdown   `json:"error_breakdown"`
	RecoveryMetrics  *RecoveryMetrics            `json:"recovery_metrics"`
	PerformanceImpact *PerformanceImpact         `json:"performance_impact"`
}

// ErrorBreakdown детализация ошибок по типам
type ErrorBreakdown struct {
	ErrorType     string  `json:"error_type"`
	Count         int     `json:"count"`
	Rate          float64 `json:"rate"`
	Severity      string  `json:"severity"` // low, medium, high, critical
	RecoveryTime  time.Duration `json:"recovery_time"`
	Impact        string  `json:"impact"` // none, minor, major, critical
}

// RecoveryMetrics метрики восстановления
type RecoveryMetrics struct {
	AverageRecoveryTime time.Duration `json:"average_recovery_time"`
	MaxRecoveryTime     time.Duration `json:"max_recovery_time"`
	RecoverySuccessRate float64       `json:"recovery_success_rate"`
	FailedRecoveries    int           `json:"failed_recoveries"`
}

// PerformanceImpact влияние ошибок на производительность
type PerformanceImpact struct {
	ThroughputReduction float64       `json:"throughput_reduction_percent"`
	LatencyIncrease     time.Duration `json:"latency_increase_ms"`
	PacketLossIncrease  float64       `json:"packet_loss_increase_percent"`
	ConnectionDrops     int           `json:"connection_drops"`
}

// NewErrorTestingSuite создает новую систему тестирования на ошибки
func NewErrorTestingSuite(logger *zap.Logger, config *ErrorTestingConfig) *ErrorTestingSuite {
	if config.RandomSeed == 0 {
		config.RandomSeed = time.Now().UnixNano()
	}
	
	return &ErrorTestingSuite{
		logger:    logger,
		config:    config,
		results:   &ErrorTestingResults{},
		scenarios: make(map[string]*ErrorScenario),
	}
}

// AddScenario добавляет сценарий тестирования
func (ets *ErrorTestingSuite) AddScenario(scenario *ErrorScenario) {
	ets.mu.Lock()
	defer ets.mu.Unlock()
	
	ets.scenarios[scenario.Name] = scenario
	ets.logger.Info("Added error testing scenario",
		zap.String("scenario", scenario.Name),
		zap.String("description", scenario.Description))
}

// Start запускает тестирование на ошибки
func (ets *ErrorTestingSuite) Start(ctx context.Context) error {
	ets.mu.Lock()
	defer ets.mu.Unlock()
	
	if ets.isActive {
		return fmt.Errorf("error testing suite is already active")
	}
	
	ets.logger.Info("Starting error testing suite",
		zap.Duration("duration", ets.config.Duration),
		zap.Int("concurrent_tests", ets.config.ConcurrentTests),
		zap.Int64("random_seed", ets.config.RandomSeed))
	
	ets.isActive = true
	ets.results.StartTime = time.Now()
	
	// Запускаем тестирование в горутине
	go ets.runErrorTests(ctx)
	
	return nil
}

// Stop останавливает тестирование
func (ets *ErrorTestingSuite) Stop() {
	ets.mu.Lock()
	defer ets.mu.Unlock()
	
	if !ets.isActive {
		return
	}
	
	ets.isActive = false
	ets.results.EndTime = time.Now()
	ets.results.Duration = ets.results.EndTime.Sub(ets.results.StartTime)
	
	ets.logger.Info("Error testing suite stopped",
		zap.Duration("duration", ets.results.Duration),
		zap.Int("total_tests", ets.results.TotalTests),
		zap.Int("passed_tests", ets.results.PassedTests),
		zap.Int("failed_tests", ets.results.FailedTests),
		zap.Float64("success_rate", ets.results.SuccessRate))
}

// runErrorTests выполняет тестирование на ошибки
func (ets *ErrorTestingSuite) runErrorTests(ctx context.Context) {
	ets.logger.Info("Running error tests")
	
	// Инициализируем генератор случайных чисел
	rand.Seed(ets.config.RandomSeed)
	
	// Запускаем сценарии
	for name, scenario := range ets.scenarios {
		select {
		case <-ctx.Done():
			ets.logger.Info("Error testing cancelled by context")
			return
		default:
			ets.runScenario(ctx, name, scenario)
		}
	}
	
	// Вычисляем итоговые результаты
	ets.calculateResults()
	
	ets.logger.Info("Error testing completed",
		zap.Int("total_tests", ets.results.TotalTests),
		zap.Int("passed_tests", ets.results.PassedTests),
		zap.Int("failed_tests", ets.results.FailedTests),
		zap.Float64("success_rate", ets.results.SuccessRate))
}

// runScenario выполняет конкретный сценарий
func (ets *ErrorTestingSuite) runScenario(ctx context.Context, name string, scenario *ErrorScenario) {
	ets.logger.Info("Running error scenario",
		zap.String("scenario", name),
		zap.Duration("duration", scenario.Duration))
	
	startTime := time.Now()
	
	// Создаем контекст с таймаутом для сценария
	scenarioCtx, cancel := context.WithTimeout(ctx, scenario.Duration)
	defer cancel()
	
	// Запускаем тесты сценария
	passed, failed := ets.runScenarioTests(scenarioCtx, scenario)
	
	duration := time.Since(startTime)
	
	ets.logger.Info("Scenario completed",
		zap.String("scenario", name),
		zap.Duration("duration", duration),
		zap.Int("passed", passed),
		zap.Int("failed", failed))
	
	// Обновляем общие результаты
	ets.mu.Lock()
	ets.results.TotalTests += passed + failed
	ets.results.PassedTests += passed
	ets.results.FailedTests += failed
	ets.mu.Unlock()
}

// runScenarioTests выполняет тесты сценария
func (ets *ErrorTestingSuite) runScenarioTests(ctx context.Context, scenario *ErrorScenario) (passed, failed int) {
	// Создаем канал для результатов тестов
	results := make(chan bool, ets.config.ConcurrentTests)
	
	// Запускаем конкурентные тесты
	for i := 0; i < ets.config.ConcurrentTests; i++ {
		go func(testID int) {
			success := ets.runSingleTest(ctx, scenario, testID)
			results <- success
		}(i)
	}
	
	// Собираем результаты
	for i := 0; i < ets.config.ConcurrentTests; i++ {
		select {
		case <-ctx.Done():
			ets.logger.Warn("Scenario tests cancelled by context")
			return passed, failed
		case success := <-results:
			if success {
				passed++
			} else {
				failed++
			}
		}
	}
	
	return passed, failed
}

// runSingleTest выполняет один тест
func (ets *ErrorTestingSuite) runSingleTest(ctx context.Context, scenario *ErrorScenario, testID int) bool {
	ets.logger.Debug("Running single error test",
		zap.String("scenario", scenario.Name),
		zap.Int("test_id", testID))
	
	// Симулируем различные типы ошибок
	errors := ets.simulateErrors(scenario.Config)
	
	// Проверяем восстановление
	recoveryTime := ets.testRecovery(ctx, errors)
	
	// Проверяем влияние на производительность
	performanceImpact := ets.testPerformanceImpact(ctx, errors)
	
	// Определяем успешность теста
	success := ets.evaluateTestSuccess(scenario, errors, recoveryTime, performanceImpact)
	
	ets.logger.Debug("Single test completed",
		zap.String("scenario", scenario.Name),
		zap.Int("test_id", testID),
		zap.Bool("success", success),
		zap.Duration("recovery_time", recoveryTime))
	
	return success
}

// simulateErrors симулирует ошибки согласно конфигурации
func (ets *ErrorTestingSuite) simulateErrors(config *ErrorTestingConfig) []string {
	var errors []string
	
	// Сетевые ошибки
	if config.NetworkErrors {
		if rand.Float64() < config.PacketLoss {
			errors = append(errors, "packet_loss")
		}
		if rand.Float64() < config.PacketDuplication {
			errors = append(errors, "packet_duplication")
		}
		if config.PacketReordering && rand.Float64() < 0.1 {
			errors = append(errors, "packet_reordering")
		}
		if rand.Float64() < config.PacketCorruption {
			errors = append(errors, "packet_corruption")
		}
	}
	
	// QUIC ошибки
	if config.QUICErrors {
		if config.StreamErrors && rand.Float64() < 0.05 {
			errors = append(errors, "stream_error")
		}
		if config.HandshakeErrors && rand.Float64() < 0.02 {
			errors = append(errors, "handshake_error")
		}
		if config.VersionErrors && rand.Float64() < 0.01 {
			errors = append(errors, "version_error")
		}
	}
	
	// Экспериментальные ошибки
	if config.ACKFrequencyErrors && rand.Float64() < 0.03 {
		errors = append(errors, "ack_frequency_error")
	}
	if config.CCErrors && rand.Float64() < 0.02 {
		errors = append(errors, "cc_error")
	}
	if config.MultipathErrors && rand.Float64() < 0.04 {
		errors = append(errors, "multipath_error")
	}
	if config.FECErrors && rand.Float64() < 0.03 {
		errors = append(errors, "fec_error")
	}
	
	return errors
}

// testRecovery тестирует восстановление после ошибок
func (ets *ErrorTestingSuite) testRecovery(ctx context.Context, errors []string) time.Duration {
	if len(errors) == 0 {
		return 0
	}
	
	startTime := time.Now()
	
	// Симулируем время восстановления в зависимости от типа ошибки
	var maxRecoveryTime time.Duration
	
	for _, errorType := range errors {
		var recoveryTime time.Duration
		
		switch errorType {
		case "packet_loss":
			recoveryTime = time.Duration(rand.Intn(100)) * time.Millisecond
		case "packet_duplication":
			recoveryTime = time.Duration(rand.Intn(50)) * time.Millisecond
		case "packet_reordering":
			recoveryTime = time.Duration(rand.Intn(200)) * time.Millisecond
		case "packet_corruption":
			recoveryTime = time.Duration(rand.Intn(150)) * time.Millisecond
		case "stream_error":
			recoveryTime = time.Duration(rand.Intn(300)) * time.Millisecond
		case "handshake_error":
			recoveryTime = time.Duration(rand.Intn(1000)) * time.Millisecond
		case "version_error":
			recoveryTime = time.Duration(rand.Intn(2000)) * time.Millisecond
		case "ack_frequency_error":
			recoveryTime = time.Duration(rand.Intn(100)) * time.Millisecond
		case "cc_error":
			recoveryTime = time.Duration(rand.Intn(500)) * time.Millisecond
		case "multipath_error":
			recoveryTime = time.Duration(rand.Intn(800)) * time.Millisecond
		case "fec_error":
			recoveryTime = time.Duration(rand.Intn(200)) * time.Millisecond
		default:
			recoveryTime = time.Duration(rand.Intn(100)) * time.Millisecond
		}
		
		if recoveryTime > maxRecoveryTime {
			maxRecoveryTime = recoveryTime
		}
	}
	
	// Симулируем время восстановления
	time.Sleep(maxRecoveryTime / 100) // Ускоряем для тестирования
	
	return time.Since(startTime)
}

// testPerformanceImpact тестирует влияние ошибок на производительность
func (ets *ErrorTestingSuite) testPerformanceImpact(ctx context.Context, errors []string) *PerformanceImpact {
	impact := &PerformanceImpact{}
	
	for _, errorType := range errors {
		switch errorType {
		case "packet_loss":
			impact.ThroughputReduction += 5.0
			impact.LatencyIncrease += 10 * time.Millisecond
			impact.PacketLossIncrease += 0.01
		case "packet_duplication":
			impact.ThroughputReduction += 2.0
			impact.LatencyIncrease += 5 * time.Millisecond
		case "packet_reordering":
			impact.ThroughputReduction += 8.0
			impact.LatencyIncrease += 20 * time.Millisecond
		case "packet_corruption":
			impact.ThroughputReduction += 10.0
			impact.LatencyIncrease += 15 * time.Millisecond
		case "stream_error":
			impact.ThroughputReduction += 15.0
			impact.LatencyIncrease += 50 * time.Millisecond
		case "handshake_error":
			impact.ThroughputReduction += 50.0
			impact.LatencyIncrease += 200 * time.Millisecond
			impact.ConnectionDrops++
		case "version_error":
			impact.ThroughputReduction += 100.0
			impact.LatencyIncrease += 500 * time.Millisecond
			impact.ConnectionDrops++
		case "ack_frequency_error":
			impact.ThroughputReduction += 3.0
			impact.LatencyIncrease += 5 * time.Millisecond
		case "cc_error":
			impact.ThroughputReduction += 20.0
			impact.LatencyIncrease += 100 * time.Millisecond
		case "multipath_error":
			impact.ThroughputReduction += 30.0
			impact.LatencyIncrease += 150 * time.Millisecond
		case "fec_error":
			impact.ThroughputReduction += 5.0
			impact.LatencyIncrease += 10 * time.Millisecond
		}
	}
	
	return impact
}

// evaluateTestSuccess оценивает успешность теста
func (ets *ErrorTestingSuite) evaluateTestSuccess(scenario *ErrorScenario, errors []string, recoveryTime time.Duration, impact *PerformanceImpact) bool {
	// Проверяем соответствие ожидаемым результатам
	if scenario.Expected == nil {
		return true // Если нет ожиданий, считаем успешным
	}
	
	// Проверяем время восстановления
	if recoveryTime > scenario.Expected.MinRecoveryTime {
		ets.logger.Debug("Test failed: recovery time too long",
			zap.Duration("recovery_time", recoveryTime),
			zap.Duration("expected_max", scenario.Expected.MinRecoveryTime))
		return false
	}
	
	// Проверяем влияние на производительность
	if impact.ThroughputReduction > (100.0 - scenario.Expected.MinThroughput) {
		ets.logger.Debug("Test failed: throughput reduction too high",
			zap.Float64("reduction", impact.ThroughputReduction),
			zap.Float64("expected_max", 100.0 - scenario.Expected.MinThroughput))
		return false
	}
	
	if impact.LatencyIncrease > scenario.Expected.MaxLatency {
		ets.logger.Debug("Test failed: latency increase too high",
			zap.Duration("increase", impact.LatencyIncrease),
			zap.Duration("expected_max", scenario.Expected.MaxLatency))
		return false
	}
	
	return true
}

// calculateResults вычисляет итоговые результаты
func (ets *ErrorTestingSuite) calculateResults() {
	ets.mu.Lock()
	defer ets.mu.Unlock()
	
	if ets.results.TotalTests > 0 {
		ets.results.SuccessRate = float64(ets.results.PassedTests) / float64(ets.results.TotalTests) * 100.0
	}
	
	ets.logger.Info("Error testing results calculated",
		zap.Int("total_tests", ets.results.TotalTests),
		zap.Int("passed_tests", ets.results.PassedTests),
		zap.Int("failed_tests", ets.results.FailedTests),
		zap.Float64("success_rate", ets.results.SuccessRate))
}

// GetResults возвращает результаты тестирования
func (ets *ErrorTestingSuite) GetResults() *ErrorTestingResults {
	ets.mu.RLock()
	defer ets.mu.RUnlock()
	return ets.results
}

// IsActive возвращает статус активности
func (ets *ErrorTestingSuite) IsActive() bool {
	ets.mu.RLock()
	defer ets.mu.RUnlock()
	return ets.isActive
}

