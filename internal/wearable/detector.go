package wearable

import "github.com/rs/zerolog"

// DetectorConfig holds the biometric bands used for anomaly detection.
type DetectorConfig struct {
	// MinHeartRate / MaxHeartRate bound the normal band in bpm.
	// Readings outside it produce a medium-severity anomaly.
	MinHeartRate float64
	MaxHeartRate float64

	// CriticalMinHeartRate / CriticalMaxHeartRate bound the critical band.
	CriticalMinHeartRate float64
	CriticalMaxHeartRate float64

	// LowBatteryThreshold is the percentage below which a warning is logged.
	LowBatteryThreshold float64
}

// DefaultDetectorConfig returns the default biometric bands.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MinHeartRate:         50,
		MaxHeartRate:         120,
		CriticalMinHeartRate: 40,
		CriticalMaxHeartRate: 150,
		LowBatteryThreshold:  10,
	}
}

// Confidence assigned per severity. Critical readings are close to certain
// emergencies; medium readings may be exertion.
const (
	criticalConfidence = 0.95
	mediumConfidence   = 0.75
)

// Detector inspects telemetry samples for emergency conditions. It is
// stateless: each sample is judged on its own.
type Detector struct {
	config DetectorConfig
	logger zerolog.Logger
}

// NewDetector creates a detector with the given bands. Zero-valued bands
// fall back to defaults.
func NewDetector(cfg DetectorConfig, logger zerolog.Logger) *Detector {
	def := DefaultDetectorConfig()
	if cfg.MinHeartRate <= 0 {
		cfg.MinHeartRate = def.MinHeartRate
	}
	if cfg.MaxHeartRate <= 0 {
		cfg.MaxHeartRate = def.MaxHeartRate
	}
	if cfg.CriticalMinHeartRate <= 0 {
		cfg.CriticalMinHeartRate = def.CriticalMinHeartRate
	}
	if cfg.CriticalMaxHeartRate <= 0 {
		cfg.CriticalMaxHeartRate = def.CriticalMaxHeartRate
	}
	if cfg.LowBatteryThreshold <= 0 {
		cfg.LowBatteryThreshold = def.LowBatteryThreshold
	}
	return &Detector{config: cfg, logger: logger}
}

// Check inspects one sample and returns an anomaly when the heart rate is
// outside the normal band, or nil otherwise.
func (d *Detector) Check(sample Sample) *Anomaly {
	if sample.BatteryLevel != nil && *sample.BatteryLevel < d.config.LowBatteryThreshold {
		d.logger.Warn().
			Str("device_id", sample.DeviceID).
			Float64("battery_level", *sample.BatteryLevel).
			Msg("wearable battery critically low")
	}

	if sample.HeartRate == nil {
		return nil
	}
	hr := *sample.HeartRate
	if hr >= d.config.MinHeartRate && hr <= d.config.MaxHeartRate {
		return nil
	}

	severity := SeverityMedium
	confidence := mediumConfidence
	if hr < d.config.CriticalMinHeartRate || hr > d.config.CriticalMaxHeartRate {
		severity = SeverityCritical
		confidence = criticalConfidence
	}

	return &Anomaly{
		DeviceID:   sample.DeviceID,
		HeartRate:  hr,
		Severity:   severity,
		Confidence: confidence,
		Timestamp:  sample.Timestamp,
	}
}
