package match

import (
	"sort"
	"strings"

	"github.com/qpaper/qmapper/internal/syllabus"
)

// Signal weights for the keyword scorer.
const (
	weightNameToken    = 2 // per subject-name token found in the question
	weightCodeHit      = 2 // subject code appears verbatim
	weightTopicPhrase  = 5 // whole topic phrase appears verbatim
	weightTopicToken   = 1 // per topic token otherwise
	weightOutcomeToken = 1 // per course-outcome token
)

// Confidence for the fallback path saturates below 1.0 so heuristic results
// never look as certain as AI-sourced ones. The constants are carried over
// from the source heuristics unchanged.
const (
	confidenceBase     = 0.10
	confidencePerPoint = 0.05
	confidenceCeiling  = 0.95
)

// Heuristic scores a question against every subject in the catalog and
// returns the best attribution, or the Not Found sentinel result when no
// subject scores above zero.
func Heuristic(text string, catalog syllabus.Catalog) Result {
	qlow := strings.ToLower(text)

	maxScore := 0
	best := notFoundResult(text, SourceHeuristic)
	for _, subj := range catalog {
		score, topicScores := scoreSubject(qlow, subj)
		if score <= maxScore {
			continue
		}
		maxScore = score
		best.SubjectName = orNotFound(subj.Name)
		best.SubjectCode = orNotFound(subj.Code)
		best.Year = orNotFound(subj.Year)
		best.Semester = orNotFound(subj.Semester)
		best.ProbableTopic = probableTopic(subj.Topics, topicScores)
		best.CourseOutcome = NotFound
		if len(subj.CourseOutcomes) > 0 {
			best.CourseOutcome = subj.CourseOutcomes[0]
		}
	}

	if maxScore > 0 {
		best.Confidence = confidence(maxScore)
	}
	return best
}

// scoreSubject sums the weighted signal hits of one subject against the
// lowercased question text, and returns the per-topic scores alongside.
func scoreSubject(qlow string, subj syllabus.Subject) (int, []int) {
	score := 0
	for _, tok := range strings.Fields(strings.ToLower(subj.Name)) {
		if strings.Contains(qlow, tok) {
			score += weightNameToken
		}
	}
	if code := strings.ToLower(subj.Code); code != "" && strings.Contains(qlow, code) {
		score += weightCodeHit
	}

	topicScores := make([]int, len(subj.Topics))
	for i, t := range subj.Topics {
		tlow := strings.ToLower(t)
		if strings.Contains(qlow, tlow) {
			topicScores[i] = weightTopicPhrase
		} else {
			for _, w := range strings.Fields(tlow) {
				if strings.Contains(qlow, w) {
					topicScores[i] += weightTopicToken
				}
			}
		}
		score += topicScores[i]
	}

	for _, co := range subj.CourseOutcomes {
		for _, w := range strings.Fields(strings.ToLower(co)) {
			if strings.Contains(qlow, w) {
				score += weightOutcomeToken
			}
		}
	}
	return score, topicScores
}

// probableTopic picks the winning subject's topics by their own score, top
// two joined. When no topic scored, the first two topics stand in; a subject
// without topics yields the sentinel.
func probableTopic(topics []string, scores []int) string {
	if len(topics) == 0 {
		return NotFound
	}

	order := make([]int, len(topics))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	var picked []string
	for _, i := range order {
		if scores[i] <= 0 || len(picked) == 2 {
			break
		}
		picked = append(picked, topics[i])
	}
	if len(picked) == 0 {
		if len(topics) >= 2 {
			return topics[0] + ", " + topics[1]
		}
		return topics[0]
	}
	return strings.Join(picked, ", ")
}

func confidence(score int) float64 {
	c := confidenceBase + confidencePerPoint*float64(score)
	if c > confidenceCeiling {
		return confidenceCeiling
	}
	return c
}

func orNotFound(s string) string {
	if s == "" {
		return NotFound
	}
	return s
}
