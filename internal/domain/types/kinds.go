package types

import "strings"

// KindOf infers the metric kind from its name. Angle and rotation metrics
// are measured in degrees; everything else is treated as normalized.
func KindOf(metric string) MetricKind {
	m := strings.ToLower(metric)
	if strings.Contains(m, "angle") || strings.Contains(m, "rotation") {
		return KindAngular
	}
	return KindNormalized
}
