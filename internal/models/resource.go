package models

// ResourceType represents valid teacher resource types
type ResourceType string

const (
	ResourceTypeVideo      ResourceType = "video"
	ResourceTypeGame       ResourceType = "game"
	ResourceTypePDF        ResourceType = "pdf"
	ResourceTypeLessonPlan ResourceType = "lessonPlan"
	ResourceTypeOther      ResourceType = "other"
)

// TeacherResource is one external teaching aid attached to a unit
// (embedded video, game, downloadable lesson plan)
type TeacherResource struct {
	ID           int          `json:"id,omitempty"`
	BookID       string       `json:"bookId"`
	UnitID       string       `json:"unitId"`
	Title        string       `json:"title"`
	ResourceType ResourceType `json:"resourceType"`
	Provider     string       `json:"provider,omitempty"`
	SourceURL    string       `json:"sourceUrl,omitempty"`
	EmbedCode    string       `json:"embedCode,omitempty"`
	Order        int          `json:"order"`
}

// ReplaceResourcesRequest is the body of a resource replacement request
type ReplaceResourcesRequest struct {
	Resources []TeacherResource `json:"resources"`
}
