package observability

// Snapshot returns the current counter totals keyed by metric name, summed
// across label values. Used for the end-of-run summary log.
func (m *HarvestMetrics) Snapshot() map[string]float64 {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return nil
	}

	out := make(map[string]float64, len(families))
	for _, family := range families {
		var sum float64
		for _, metric := range family.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				sum += c.GetValue()
			}
		}
		out[family.GetName()] = sum
	}
	return out
}
