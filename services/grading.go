package services

import "sort"

// QuestionKey is the answer key of one question
type QuestionKey struct {
	QuestionID uint
	Points     int
	Correct    []uint
}

// QuestionResult is the graded outcome of one question
type QuestionResult struct {
	QuestionID    uint   `json:"question_id"`
	Selected      []uint `json:"selected_option_ids"`
	Correct       bool   `json:"correct"`
	PointsAwarded int    `json:"points_awarded"`
	Points        int    `json:"points"`
}

// GradeResult is the graded outcome of a submission
type GradeResult struct {
	Score      int              `json:"score"`
	MaxScore   int              `json:"max_score"`
	Percentage float64          `json:"percentage"`
	Passed     bool             `json:"passed"`
	Questions  []QuestionResult `json:"questions"`
}

// GradeQuiz scores answers against the key. A question earns its points only
// when the selected options are exactly its correct options.
func GradeQuiz(keys []QuestionKey, answers map[uint][]uint, passingScore int) GradeResult {
	result := GradeResult{Questions: make([]QuestionResult, 0, len(keys))}

	for _, key := range keys {
		points := key.Points
		if points <= 0 {
			points = 1
		}
		selected := uniqueSorted(answers[key.QuestionID])
		correct := len(key.Correct) > 0 && sameSet(selected, uniqueSorted(key.Correct))

		qr := QuestionResult{
			QuestionID: key.QuestionID,
			Selected:   selected,
			Correct:    correct,
			Points:     points,
		}
		if correct {
			qr.PointsAwarded = points
			result.Score += points
		}
		result.MaxScore += points
		result.Questions = append(result.Questions, qr)
	}

	if result.MaxScore > 0 {
		result.Percentage = Round2(float64(result.Score) / float64(result.MaxScore) * 100)
	}
	result.Passed = result.MaxScore > 0 && result.Percentage >= float64(passingScore)
	return result
}

func uniqueSorted(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sameSet(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
