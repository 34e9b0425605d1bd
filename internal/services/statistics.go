package services

import (
	"fmt"
	"sort"

	"github.com/epeers/holdings/internal/models"
	log "github.com/sirupsen/logrus"
)

// StatisticsTotalThreshold is the lowest acceptable total across all buckets
const StatisticsTotalThreshold = 0.98

// StatisticsBy groups an instrument's weights by a holding attribute
// (country, sector, industry, currency, exchange or type) and returns the
// buckets sorted by summed weight, largest first. Empty attribute values are
// grouped under models.UnknownAttribute.
func StatisticsBy(inst models.Instrument, attribute string) ([]models.StatBucket, error) {
	var buckets []models.StatBucket
	positions := make(map[string]int)
	var total float64

	for _, wh := range inst.Holdings() {
		value, ok := wh.Holding.Attribute(attribute)
		if !ok {
			return nil, fmt.Errorf("unknown statistics attribute %q", attribute)
		}
		if value == "" {
			value = models.UnknownAttribute
		}

		i, seen := positions[value]
		if !seen {
			i = len(buckets)
			positions[value] = i
			buckets = append(buckets, models.StatBucket{Key: value})
		}
		buckets[i].Weight += wh.Weight
		total += wh.Weight
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Weight > buckets[j].Weight
	})

	if total <= StatisticsTotalThreshold {
		return nil, fmt.Errorf("%s by %s: total %.4f: %w", inst.Name(), attribute, total, models.ErrStatisticsTotal)
	}

	for i := range buckets {
		buckets[i].Percentage = buckets[i].Weight * 100
	}
	return buckets, nil
}

// LogStatistics writes a statistics report to the log
func LogStatistics(name, attribute string, buckets []models.StatBucket) {
	log.Infof("Statistics %s for %s", attribute, name)
	for _, b := range buckets {
		log.Infof("\t%s: %.2f%%", b.Key, b.Percentage)
	}
}
