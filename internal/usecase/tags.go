package usecase

import "strings"

const (
	tagGeneralKnowledge = "[GENERAL_KNOWLEDGE]"
	tagUsedContext      = "[USED_CONTEXT]"
)

// parseAnswerTags strips the source-attribution tag from a model answer
// and reports whether the model declared it answered from general
// knowledge rather than the supplied context. An untagged answer is
// treated as context-based.
func parseAnswerTags(answer string) (cleaned string, generalKnowledge bool) {
	if strings.Contains(answer, tagGeneralKnowledge) {
		return strings.TrimSpace(strings.ReplaceAll(answer, tagGeneralKnowledge, "")), true
	}
	if strings.Contains(answer, tagUsedContext) {
		return strings.TrimSpace(strings.ReplaceAll(answer, tagUsedContext, "")), false
	}
	return strings.TrimSpace(answer), false
}
