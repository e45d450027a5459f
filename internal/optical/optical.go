package optical

type Level string

const (
	LevelNormal   Level = "normal"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Classify grades an RX level in dBm; thresholds are inclusive.
func Classify(dbm, warning, critical float64) Level {
	switch {
	case dbm <= critical:
		return LevelCritical
	case dbm <= warning:
		return LevelWarning
	default:
		return LevelNormal
	}
}
