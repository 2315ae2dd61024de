package domain

// GenerationRequest is what the dispatcher sends to the generation service.
// MetadataSubType is set only for metadata requests.
type GenerationRequest struct {
	Prompt          string
	TaskType        TaskTag
	MetadataSubType *MetadataSubType
}

// SubTypeLabel returns the sub type as a plain string, empty when absent.
func (r GenerationRequest) SubTypeLabel() string {
	if r.MetadataSubType == nil {
		return ""
	}
	return string(*r.MetadataSubType)
}

// GenerationOutcome is a successful service answer.
type GenerationOutcome struct {
	Payload   ResultPayload
	CoinsLeft int
	RequestID string
}
