package spaced_repetition

// QualityResponse represents the quality of response in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// Latency thresholds for a correct answer, in milliseconds.
const (
	FastRecallMs     = 3000
	ModerateRecallMs = 8000
)

// IsLapse reports whether q counts as a failed recall.
func (q QualityResponse) IsLapse() bool {
	return q < QualityCorrectDifficult
}

// clamp keeps q inside the 0..5 scale.
func (q QualityResponse) clamp() QualityResponse {
	if q < QualityBlackout {
		return QualityBlackout
	}
	if q > QualityPerfect {
		return QualityPerfect
	}
	return q
}

// MapQuality converts answer telemetry into an SM-2 grade.
//
// A wrong answer never grades above QualityIncorrectFamiliar and drops by one
// for every extra attempt spent on the word this session. A correct answer is
// graded by latency (FastRecallMs, ModerateRecallMs) and loses one grade per
// earlier miss, bottoming out at QualityCorrectDifficult. Negative latency is
// treated as zero and attempts below one as one.
func MapQuality(isCorrect bool, responseTimeMs int64, attemptsThisSession int) QualityResponse {
	if responseTimeMs < 0 {
		responseTimeMs = 0
	}
	if attemptsThisSession < 1 {
		attemptsThisSession = 1
	}
	misses := attemptsThisSession - 1

	if !isCorrect {
		q := QualityIncorrectFamiliar - QualityResponse(misses)
		if q < QualityBlackout {
			q = QualityBlackout
		}
		return q
	}

	var q QualityResponse
	switch {
	case responseTimeMs <= FastRecallMs:
		q = QualityPerfect
	case responseTimeMs <= ModerateRecallMs:
		q = QualityCorrectHesitation
	default:
		q = QualityCorrectDifficult
	}

	q -= QualityResponse(misses)
	if q < QualityCorrectDifficult {
		q = QualityCorrectDifficult
	}
	return q
}
