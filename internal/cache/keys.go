package cache

// Cache key builders live in one place so key layouts never drift between
// the read paths that populate them and the mutation paths that clear them.
//
// Layouts:
//
//	questions:<companyId>:<roundId>
//	questions:<companyId>:<roundId>:<language>
//	questions:<companyId>:<roundId>:difficulty:<difficulty>
//	questions:<companyId>:<roundId>:<language>:<difficulty>
//	rounds:<companyId>
//	explanation:<questionId>

func QuestionsKey(companyID, roundID string) string {
	return "questions:" + companyID + ":" + roundID
}

func QuestionsByLanguageKey(companyID, roundID, language string) string {
	return QuestionsKey(companyID, roundID) + ":" + language
}

func QuestionsByDifficultyKey(companyID, roundID, difficulty string) string {
	return QuestionsKey(companyID, roundID) + ":difficulty:" + difficulty
}

func QuestionsByLanguageAndDifficultyKey(companyID, roundID, language, difficulty string) string {
	return QuestionsKey(companyID, roundID) + ":" + language + ":" + difficulty
}

func RoundsKey(companyID string) string {
	return "rounds:" + companyID
}

func ExplanationKey(questionID string) string {
	return "explanation:" + questionID
}

// QuestionsReadKey picks the key variant a filtered read caches under.
func QuestionsReadKey(companyID, roundID, language, difficulty string) string {
	switch {
	case language != "" && difficulty != "":
		return QuestionsByLanguageAndDifficultyKey(companyID, roundID, language, difficulty)
	case language != "":
		return QuestionsByLanguageKey(companyID, roundID, language)
	case difficulty != "":
		return QuestionsByDifficultyKey(companyID, roundID, difficulty)
	default:
		return QuestionsKey(companyID, roundID)
	}
}

// QuestionKeyVariants enumerates every cached key a question mutation under
// (companyID, roundID) can have gone stale: the unfiltered key plus the full
// cartesian set of variants derivable from the dimension values at hand.
// Filter dimensions are unbounded, so variants for values not involved in
// the mutation expire by TTL instead.
func QuestionKeyVariants(companyID, roundID, language, difficulty string) []string {
	keys := []string{QuestionsKey(companyID, roundID)}
	if language != "" {
		keys = append(keys, QuestionsByLanguageKey(companyID, roundID, language))
	}
	if difficulty != "" {
		keys = append(keys, QuestionsByDifficultyKey(companyID, roundID, difficulty))
	}
	if language != "" && difficulty != "" {
		keys = append(keys, QuestionsByLanguageAndDifficultyKey(companyID, roundID, language, difficulty))
	}
	return keys
}
