package analytics

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/GriffinCanCode/PostPilot/internal/storage"
)

// DefaultTopHashtags is the number of hashtags reported by Summarize
const DefaultTopHashtags = 5

// HashtagCount is a hashtag and how many analyses used it
type HashtagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Summary aggregates a user's analyses
type Summary struct {
	Count                 int            `json:"count"`
	EngagementMean        float64        `json:"engagement_mean"`
	EngagementMedian      float64        `json:"engagement_median"`
	EngagementStdDev      float64        `json:"engagement_stddev"`
	SentimentMean         float64        `json:"sentiment_mean"`
	EngagementCorrelation float64        `json:"engagement_sentiment_correlation"`
	TopHashtags           []HashtagCount `json:"top_hashtags"`
}

// Summarize computes engagement and sentiment statistics. Statistics that
// need more samples than are available are reported as 0.
func Summarize(analyses []storage.Analysis, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTopHashtags
	}

	s := Summary{
		Count:       len(analyses),
		TopHashtags: topHashtags(analyses, topN),
	}
	if len(analyses) == 0 {
		return s
	}

	engagement := make([]float64, len(analyses))
	sentiment := make([]float64, len(analyses))
	for i, a := range analyses {
		engagement[i] = a.EngagementScore
		sentiment[i] = a.Sentiment.Score
	}

	s.EngagementMean = stat.Mean(engagement, nil)
	s.SentimentMean = stat.Mean(sentiment, nil)

	sorted := make([]float64, len(engagement))
	copy(sorted, engagement)
	sort.Float64s(sorted)
	s.EngagementMedian = stat.Quantile(0.5, stat.Empirical, sorted, nil)

	if len(analyses) >= 2 {
		s.EngagementStdDev = finite(stat.StdDev(engagement, nil))
		s.EngagementCorrelation = finite(stat.Correlation(engagement, sentiment, nil))
	}

	return s
}

func topHashtags(analyses []storage.Analysis, n int) []HashtagCount {
	counts := make(map[string]int)
	for _, a := range analyses {
		seen := make(map[string]struct{}, len(a.Hashtags))
		for _, tag := range a.Hashtags {
			key := strings.ToLower(tag)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			counts[key]++
		}
	}

	out := make([]HashtagCount, 0, len(counts))
	for tag, c := range counts {
		out = append(out, HashtagCount{Tag: tag, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// finite maps NaN and infinities (constant series) to 0
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
