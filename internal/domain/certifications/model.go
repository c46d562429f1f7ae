package certifications

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Certification: documento que el prestador sube para poder publicar servicios.
type Certification struct {
	ID       int64  `json:"id"`
	Provider int64  `json:"provider"`
	Title    string `json:"title"`
	Document string `json:"document"`
	Status   Status `json:"status"`
}

func (c Certification) Approved() bool { return c.Status == StatusApproved }

type CreateInput struct {
	Title    string `json:"title"`
	Document string `json:"document"` // URL ya subida al host de media
}
