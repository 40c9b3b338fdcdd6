package pipeline

import (
	"sort"
	"strconv"
	"strings"

	"github.com/msanchezgrice/futurenews-sub000/internal/model"
)

const (
	maxClusterCandidates = 60
	maxTopicsPerSection  = 24
	briefMaxLines        = 4
	briefLineMaxChars    = 220

	// Empirically chosen merge thresholds; tune here, not in the algorithm.
	ClusterSimilarityMin       = 0.36
	ClusterEntitySimilarityMin = 0.18
)

type cluster struct {
	label    string
	members  []model.Signal
	tokens   map[string]struct{}
	entities map[string]struct{}
	score    float64
}

// ClusterDay builds the day's topics per section from its news and research
// signals. Market and econ signals are summarized elsewhere, never clustered.
func ClusterDay(day string, signals []model.Signal) []model.Topic {
	bySection := make(map[string][]model.Signal)
	for _, s := range signals {
		if s.Type == model.SignalMarket || s.Type == model.SignalEcon {
			continue
		}
		bySection[s.Section] = append(bySection[s.Section], s)
	}

	usedSlugs := make(map[string]int)
	var topics []model.Topic
	for _, section := range model.OrdinarySections {
		topics = append(topics, clusterSection(day, section, bySection[section], usedSlugs)...)
	}
	return topics
}

// clusterSection greedily assigns each signal, in score order, to the first
// sufficiently similar open cluster. Order matters and the result is not
// transitive; that is the accepted trade-off for a fast deterministic pass.
func clusterSection(day, section string, signals []model.Signal, usedSlugs map[string]int) []model.Topic {
	if len(signals) == 0 {
		return nil
	}

	sort.SliceStable(signals, func(a, b int) bool {
		if signals[a].Score != signals[b].Score {
			return signals[a].Score > signals[b].Score
		}
		return signals[a].Title < signals[b].Title
	})
	if len(signals) > maxClusterCandidates {
		signals = signals[:maxClusterCandidates]
	}

	var clusters []*cluster
	for _, sig := range signals {
		tokens := signalTokens(sig)
		entities := make(map[string]struct{}, len(sig.Entities))
		for _, e := range sig.Entities {
			entities[strings.ToLower(e)] = struct{}{}
		}

		best, bestSim := -1, 0.0
		for i, c := range clusters {
			sim := jaccard(tokens, c.tokens)
			if sim > bestSim {
				best, bestSim = i, sim
			}
		}

		merge := false
		if best >= 0 {
			if bestSim >= ClusterSimilarityMin {
				merge = true
			} else if bestSim >= ClusterEntitySimilarityMin && sharesEntity(entities, clusters[best].entities) {
				merge = true
			}
		}
		// Once the section is at capacity every remaining signal joins a
		// cluster, the nearest when one exists and a stable-hash pick when
		// nothing is similar at all, so no considered signal is dropped.
		if !merge && len(clusters) >= maxTopicsPerSection {
			if best < 0 {
				best = hashPick(day+"|"+sig.Title, len(clusters))
			}
			merge = true
		}

		if merge {
			c := clusters[best]
			c.members = append(c.members, sig)
			for tok := range tokens {
				c.tokens[tok] = struct{}{}
			}
			for e := range entities {
				c.entities[e] = struct{}{}
			}
			if sig.Score > c.score {
				c.score = sig.Score
			}
			continue
		}

		clusters = append(clusters, &cluster{
			label:    sig.Title,
			members:  []model.Signal{sig},
			tokens:   tokens,
			entities: entities,
			score:    sig.Score,
		})
	}

	topics := make([]model.Topic, 0, len(clusters))
	for _, c := range clusters {
		topics = append(topics, buildTopic(day, section, c, usedSlugs))
	}
	return topics
}

func buildTopic(day, section string, c *cluster, usedSlugs map[string]int) model.Topic {
	slug := slugify(c.label)
	if n := usedSlugs[slug]; n > 0 {
		usedSlugs[slug] = n + 1
		slug = slug + "-" + strconv.Itoa(n+1)
	} else {
		usedSlugs[slug] = 1
	}

	var lines []string
	for _, m := range c.members {
		if len(lines) >= briefMaxLines {
			break
		}
		line := m.Summary
		if line == "" {
			line = m.Title
		}
		lines = append(lines, "- "+truncate(line, briefLineMaxChars))
	}

	keywords := make([]string, 0, len(c.tokens))
	for tok := range c.tokens {
		keywords = append(keywords, tok)
	}
	sort.Strings(keywords)
	if len(keywords) > 24 {
		keywords = keywords[:24]
	}

	ids := make([]int64, 0, len(c.members))
	horizons := make([]string, 0, len(c.members))
	for _, m := range c.members {
		ids = append(ids, m.ID)
		horizons = append(horizons, m.Horizon)
	}

	return model.Topic{
		Day:     day,
		Section: section,
		Slug:    slug,
		Label:   c.label,
		Brief:   strings.Join(lines, "\n"),
		// Stable-hash pick over member horizons, not a majority vote, so
		// rebuilds of the same day agree.
		Horizon:   horizons[hashPick(day+"|"+c.label, len(horizons))],
		Score:     c.score,
		Keywords:  keywords,
		SignalIDs: ids,
	}
}

func signalTokens(sig model.Signal) map[string]struct{} {
	set := tokenSet(sig.Title)
	for _, kw := range sig.Keywords {
		set[kw] = struct{}{}
	}
	return set
}

func sharesEntity(a, b map[string]struct{}) bool {
	for e := range a {
		if _, ok := b[e]; ok {
			return true
		}
	}
	return false
}
