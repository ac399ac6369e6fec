package dto

// CanvasTerm is the enrollment term embedded in a course when include[]=term is requested.
type CanvasTerm struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CanvasCourse mirrors the fields of GET /api/v1/courses used by the aggregator.
// Name is a pointer because Canvas omits it for courses the user cannot fully read.
type CanvasCourse struct {
	ID         int64       `json:"id"`
	Name       *string     `json:"name"`
	CourseCode string      `json:"course_code"`
	Term       *CanvasTerm `json:"term"`
}

// CanvasAssignment mirrors the fields of GET /api/v1/courses/:id/assignments.
type CanvasAssignment struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	DueAt *string `json:"due_at"`
}

// CanvasUser is the profile returned by GET /api/v1/users/self.
type CanvasUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
