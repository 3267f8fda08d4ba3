package survey

type SubmitResponseDTO struct {
	QuestionID  string  `json:"questionId" validate:"required,uuid"`
	AnswerText  *string `json:"answerText"`
	AnswerValue *int    `json:"answerValue"`
}

type QuestionGroupDTO struct {
	Category  string      `json:"category"`
	Questions []*Question `json:"questions"`
}

// groupByCategory keeps categories in first-seen order of the ordered catalog.
func groupByCategory(questions []*Question) []QuestionGroupDTO {
	var groups []QuestionGroupDTO
	index := make(map[string]int)
	for _, q := range questions {
		i, ok := index[q.Category]
		if !ok {
			i = len(groups)
			index[q.Category] = i
			groups = append(groups, QuestionGroupDTO{Category: q.Category})
		}
		groups[i].Questions = append(groups[i].Questions, q)
	}
	return groups
}
